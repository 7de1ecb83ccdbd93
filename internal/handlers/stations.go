package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"commute-service/internal/stations"
)

// StationHandler serves the static network data.
type StationHandler struct{}

// NewStationHandler builds a StationHandler.
func NewStationHandler() *StationHandler {
	return &StationHandler{}
}

// List returns every line with its ordered station list.
func (h *StationHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"lines": stations.AllLines()})
}
