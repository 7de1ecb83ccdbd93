package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"commute-service/internal/discovery"
	"commute-service/internal/middleware"
	"commute-service/internal/models"
	"commute-service/internal/observability"
	"commute-service/internal/repositories"
	"commute-service/internal/ws"
)

// WaveHandler manages the wave endpoints.
type WaveHandler struct {
	engine *discovery.Engine
	waves  repositories.WaveRepository
	hub    *ws.Hub
}

// NewWaveHandler builds a WaveHandler.
func NewWaveHandler(engine *discovery.Engine, waves repositories.WaveRepository, hub *ws.Hub) *WaveHandler {
	return &WaveHandler{engine: engine, waves: waves, hub: hub}
}

// Send records a wave. Repeat waves inside the cooldown are stored but do
// not raise a fresh notification.
func (h *WaveHandler) Send(c *gin.Context) {
	var req struct {
		ToUserID string `json:"to_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	fromUserID := c.GetString(middleware.UserIDKey)
	wave, repeat, err := h.engine.SendWave(c.Request.Context(), fromUserID, req.ToUserID)
	if err != nil {
		failErr(c, err)
		return
	}

	observability.IncWaveSent(repeat)
	if !repeat {
		if h.hub != nil {
			h.hub.Notify(wave.ToUserID, models.NotificationEvent{Type: models.EventWaveReceived, Wave: &wave})
		}
		_ = observability.PublishEvent(c.Request.Context(), "waves.sent", observability.EventEnvelope{
			EventType: "domain",
			EventName: "wave.sent",
			Payload:   wave,
		}, observability.BuildHeaders(requestIDFromContext(c), ""))
	}

	c.JSON(http.StatusCreated, gin.H{"wave": wave, "repeat": repeat})
}

type waveEntry struct {
	Signal  models.WaveSignal       `json:"signal"`
	Profile *models.RedactedProfile `json:"profile,omitempty"`
}

// List returns waves received by the caller, one collapsed signal per
// sender, newest first.
func (h *WaveHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	signals, err := h.waves.ListSignalsFor(c.Request.Context(), userID)
	if err != nil {
		failErr(c, err)
		return
	}

	entries := make([]waveEntry, 0, len(signals))
	for _, signal := range signals {
		entry := waveEntry{Signal: signal}
		if view, err := h.engine.ViewProfile(c.Request.Context(), userID, signal.FromUserID); err == nil {
			entry.Profile = &view
		}
		entries = append(entries, entry)
	}
	c.JSON(http.StatusOK, gin.H{"waves": entries})
}
