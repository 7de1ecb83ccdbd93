package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"commute-service/internal/middleware"
	"commute-service/internal/observability"
	"commute-service/internal/repositories"
	"commute-service/internal/stations"
)

// TripHandler manages the trip lifecycle endpoints.
type TripHandler struct {
	trips repositories.TripRepository
}

// NewTripHandler builds a TripHandler.
func NewTripHandler(trips repositories.TripRepository) *TripHandler {
	return &TripHandler{trips: trips}
}

// Start begins a trip. A user with an active trip must end it first.
func (h *TripHandler) Start(c *gin.Context) {
	var req struct {
		FromStation string `json:"from_station" binding:"required"`
		ToStation   string `json:"to_station" binding:"required"`
		Line        string `json:"line" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "validation", err.Error())
		return
	}
	if !stations.ValidLine(req.Line) {
		fail(c, http.StatusBadRequest, "validation", "unknown line")
		return
	}
	line := stations.Line(req.Line)
	if !stations.OnLine(line, req.FromStation) || !stations.OnLine(line, req.ToStation) {
		fail(c, http.StatusBadRequest, "validation", "station not on the selected line")
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	trip, err := h.trips.Start(c.Request.Context(), userID, req.FromStation, req.ToStation, req.Line)
	if err != nil {
		failErr(c, err)
		return
	}

	observability.IncTripEvent("started")
	c.JSON(http.StatusCreated, trip)
}

// Update ends an active trip or records its current station. Ended trips
// are immutable.
func (h *TripHandler) Update(c *gin.Context) {
	tripID := c.Param("id")
	userID := c.GetString(middleware.UserIDKey)

	var req struct {
		Active         *bool   `json:"active"`
		CurrentStation *string `json:"current_station"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	switch {
	case req.Active != nil && !*req.Active:
		trip, err := h.trips.End(c.Request.Context(), tripID, userID)
		if err != nil {
			failErr(c, err)
			return
		}
		observability.IncTripEvent("ended")
		c.JSON(http.StatusOK, trip)
	case req.CurrentStation != nil:
		if !stations.StationExists(*req.CurrentStation) {
			fail(c, http.StatusBadRequest, "validation", "unknown station")
			return
		}
		trip, err := h.trips.UpdateCurrentStation(c.Request.Context(), tripID, userID, *req.CurrentStation)
		if err != nil {
			failErr(c, err)
			return
		}
		c.JSON(http.StatusOK, trip)
	default:
		fail(c, http.StatusBadRequest, "validation", "nothing to update")
	}
}

// List returns the caller's trip history, most recent first.
func (h *TripHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	trips, err := h.trips.ListForUser(c.Request.Context(), userID)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}
