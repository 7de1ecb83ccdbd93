package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"commute-service/internal/stations"
	"commute-service/internal/telemetry"
	"commute-service/internal/ws"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, hub *ws.Hub, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/debug/ws-clients", func(c *gin.Context) {
		if hub == nil {
			c.JSON(http.StatusOK, gin.H{"clients": 0})
			return
		}
		c.JSON(http.StatusOK, gin.H{"clients": hub.ClientCount()})
	})

	router.GET("/debug/network", func(c *gin.Context) {
		counts := map[string]int{}
		for line, list := range stations.AllLines() {
			counts[string(line)] = len(list)
		}
		c.JSON(http.StatusOK, gin.H{"lines": counts})
	})
}
