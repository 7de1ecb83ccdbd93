package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"commute-service/internal/discovery"
	"commute-service/internal/middleware"
	"commute-service/internal/stations"
)

// DiscoverHandler exposes the discovery query.
type DiscoverHandler struct {
	engine *discovery.Engine
}

// NewDiscoverHandler builds a DiscoverHandler.
func NewDiscoverHandler(engine *discovery.Engine) *DiscoverHandler {
	return &DiscoverHandler{engine: engine}
}

// Discover returns the ordered candidate list for the caller under the
// requested filters.
func (h *DiscoverHandler) Discover(c *gin.Context) {
	viewerID := c.GetString(middleware.UserIDKey)

	filters := discovery.Filters{
		SameOrganization: queryBool(c, "same_organization"),
		SameDestination:  queryBool(c, "same_destination"),
		TravelingNow:     queryBool(c, "traveling_now"),
		Line:             c.Query("line"),
	}
	if filters.Line != "" && !stations.ValidLine(filters.Line) {
		fail(c, http.StatusBadRequest, "validation", "unknown line")
		return
	}

	cards, err := h.engine.Discover(c.Request.Context(), viewerID, filters)
	if err != nil {
		failErr(c, err)
		return
	}
	if cards == nil {
		cards = []discovery.CandidateCard{}
	}
	c.JSON(http.StatusOK, gin.H{"candidates": cards})
}

func queryBool(c *gin.Context, key string) bool {
	val, err := strconv.ParseBool(c.Query(key))
	return err == nil && val
}
