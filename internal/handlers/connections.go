package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"commute-service/internal/discovery"
	"commute-service/internal/middleware"
	"commute-service/internal/models"
	"commute-service/internal/observability"
	"commute-service/internal/repositories"
	"commute-service/internal/telemetry"
	"commute-service/internal/ws"
)

// ConnectionHandler manages the connection request lifecycle.
type ConnectionHandler struct {
	connections          repositories.ConnectionRepository
	engine               *discovery.Engine
	hub                  *ws.Hub
	emitter              *telemetry.AuditEmitter
	rerequestAfterReject bool
}

// NewConnectionHandler builds a ConnectionHandler.
func NewConnectionHandler(
	connections repositories.ConnectionRepository,
	engine *discovery.Engine,
	hub *ws.Hub,
	emitter *telemetry.AuditEmitter,
	rerequestAfterReject bool,
) *ConnectionHandler {
	return &ConnectionHandler{
		connections:          connections,
		engine:               engine,
		hub:                  hub,
		emitter:              emitter,
		rerequestAfterReject: rerequestAfterReject,
	}
}

// Request creates a pending connection toward another commuter.
func (h *ConnectionHandler) Request(c *gin.Context) {
	var req struct {
		ConnectedUserID string `json:"connected_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	if userID == req.ConnectedUserID {
		failErr(c, discovery.ErrSelfTarget)
		return
	}
	if err := h.engine.CheckVisible(c.Request.Context(), userID, req.ConnectedUserID); err != nil {
		failErr(c, err)
		return
	}

	conn, err := h.connections.Request(c.Request.Context(), userID, req.ConnectedUserID, h.rerequestAfterReject)
	if err != nil {
		failErr(c, err)
		return
	}

	observability.IncConnectionTransition("requested")
	if h.hub != nil {
		h.hub.Notify(conn.RecipientID, models.NotificationEvent{Type: models.EventConnectionRequest, Connection: &conn})
	}
	_ = observability.PublishEvent(c.Request.Context(), "connections.requested", observability.EventEnvelope{
		EventType: "domain",
		EventName: "connection.requested",
		Payload:   conn,
	}, observability.BuildHeaders(requestIDFromContext(c), ""))

	c.JSON(http.StatusCreated, conn)
}

// Respond accepts or rejects a pending request. Only the recipient may call.
func (h *ConnectionHandler) Respond(c *gin.Context) {
	connectionID := c.Param("id")

	var req struct {
		Accept *bool `json:"accept" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	conn, err := h.connections.Respond(c.Request.Context(), connectionID, userID, *req.Accept)
	if err != nil {
		failErr(c, err)
		return
	}

	if conn.Status == models.ConnectionAccepted {
		observability.IncConnectionTransition("accepted")
		if h.hub != nil {
			h.hub.Notify(conn.RequesterID, models.NotificationEvent{Type: models.EventConnectionAccepted, Connection: &conn})
		}
		_ = observability.PublishEvent(c.Request.Context(), "connections.accepted", observability.EventEnvelope{
			EventType: "domain",
			EventName: "connection.accepted",
			Payload:   conn,
		}, observability.BuildHeaders(requestIDFromContext(c), ""))
	} else {
		observability.IncConnectionTransition("rejected")
	}
	h.emitter.Emit(c.Request.Context(), "INFO", "connection "+string(conn.Status), requestIDFromContext(c), &userID)

	c.JSON(http.StatusOK, conn)
}

type connectionEntry struct {
	Connection models.Connection       `json:"connection"`
	Profile    *models.RedactedProfile `json:"profile,omitempty"`
}

// ListAccepted returns the caller's accepted connections with the
// counterpart's redacted profile.
func (h *ConnectionHandler) ListAccepted(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	conns, err := h.connections.ListAccepted(c.Request.Context(), userID)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": h.enrich(c, userID, conns)})
}

// ListPending returns requests awaiting the caller's response.
func (h *ConnectionHandler) ListPending(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	conns, err := h.connections.ListPendingForRecipient(c.Request.Context(), userID)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": h.enrich(c, userID, conns)})
}

func (h *ConnectionHandler) enrich(c *gin.Context, userID string, conns []models.Connection) []connectionEntry {
	entries := make([]connectionEntry, 0, len(conns))
	for _, conn := range conns {
		entry := connectionEntry{Connection: conn}
		if view, err := h.engine.ViewProfile(c.Request.Context(), userID, conn.Counterpart(userID)); err == nil {
			entry.Profile = &view
		}
		entries = append(entries, entry)
	}
	return entries
}
