package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"commute-service/internal/middleware"
	"commute-service/internal/observability"
	"commute-service/internal/repositories"
)

// NotificationSocketHandler upgrades an authenticated connection into a
// per-user notification stream. The stream is advisory: clients that never
// connect see the same data through polling.
type NotificationSocketHandler struct {
	hub   *Hub
	users repositories.UserRepository
}

// NewNotificationSocketHandler constructs a NotificationSocketHandler.
func NewNotificationSocketHandler(hub *Hub, users repositories.UserRepository) *NotificationSocketHandler {
	return &NotificationSocketHandler{hub: hub, users: users}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the client.
func (h *NotificationSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("commute-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := middleware.SessionToken(c)
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error_kind": "unauthorized", "message": "not authenticated"})
		return
	}

	session, err := h.users.GetSession(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error_kind": "unauthorized", "message": "invalid or expired session"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      session.UserID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(session.UserID, conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	_ = observability.PublishEvent(ctx, "ws_events.notifications", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload: map[string]interface{}{
			"conn_id": info.ConnID,
			"user_id": info.UserID,
			"ip":      info.IP,
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))

	// drain the socket until the client hangs up, then clean up
	go func() {
		defer func() {
			h.hub.RemoveClient(session.UserID, conn)
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			_ = observability.PublishEvent(ctx, "ws_events.notifications", observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload: map[string]interface{}{
					"conn_id":     info.ConnID,
					"user_id":     info.UserID,
					"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				},
			}, observability.BuildHeaders(info.RequestID, info.TraceID))
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
				}
				return
			}
		}
	}()
}
