package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"commute-service/internal/discovery"
	"commute-service/internal/middleware"
	"commute-service/internal/models"
	"commute-service/internal/observability"
	"commute-service/internal/repositories"
	"commute-service/internal/ws"
)

// MessageHandler manages messaging between connected users.
type MessageHandler struct {
	messages    repositories.MessageRepository
	connections repositories.ConnectionRepository
	engine      *discovery.Engine
	hub         *ws.Hub
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messages repositories.MessageRepository, connections repositories.ConnectionRepository, engine *discovery.Engine, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{messages: messages, connections: connections, engine: engine, hub: hub}
}

// Send delivers a message to an accepted connection. Pairs without an
// accepted connection cannot message at all.
func (h *MessageHandler) Send(c *gin.Context) {
	var req struct {
		ToUserID string `json:"to_user_id" binding:"required"`
		Content  string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "validation", err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		fail(c, http.StatusBadRequest, "validation", "content must not be empty")
		return
	}

	fromUserID := c.GetString(middleware.UserIDKey)
	if fromUserID == req.ToUserID {
		failErr(c, discovery.ErrSelfTarget)
		return
	}

	ok, err := h.connections.AcceptedExists(c.Request.Context(), fromUserID, req.ToUserID)
	if err != nil {
		failErr(c, err)
		return
	}
	if !ok {
		fail(c, http.StatusForbidden, "forbidden", "no accepted connection with this user")
		return
	}

	msg, err := h.messages.Create(c.Request.Context(), fromUserID, req.ToUserID, req.Content)
	if err != nil {
		failErr(c, err)
		return
	}

	observability.IncMessageSent()
	if h.hub != nil {
		h.hub.Notify(msg.ToUserID, models.NotificationEvent{Type: models.EventMessageReceived, Message: &msg})
	}
	_ = observability.PublishEvent(c.Request.Context(), "messages.sent", observability.EventEnvelope{
		EventType: "domain",
		EventName: "message.sent",
		Payload:   msg,
	}, observability.BuildHeaders(requestIDFromContext(c), ""))

	c.JSON(http.StatusCreated, msg)
}

// Thread returns the conversation with one counterpart, oldest first, and
// marks the caller's side read. The response reflects the pre-read state.
// Only messages actually returned become read; anything beyond the newest
// window keeps its unread flag.
func (h *MessageHandler) Thread(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	counterpartID := c.Param("userId")

	msgs, err := h.messages.ListConversation(c.Request.Context(), userID, counterpartID)
	if err != nil {
		failErr(c, err)
		return
	}
	if len(msgs) > 0 {
		if _, err := h.messages.MarkRead(c.Request.Context(), userID, counterpartID, msgs[len(msgs)-1].Seq); err != nil {
			failErr(c, err)
			return
		}
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type conversationEntry struct {
	models.ConversationSummary
	Profile *models.RedactedProfile `json:"profile,omitempty"`
}

// Summaries lists the caller's conversations, most recently active first.
func (h *MessageHandler) Summaries(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	summaries, err := h.messages.ListConversations(c.Request.Context(), userID)
	if err != nil {
		failErr(c, err)
		return
	}

	entries := make([]conversationEntry, 0, len(summaries))
	for _, summary := range summaries {
		entry := conversationEntry{ConversationSummary: summary}
		if view, err := h.engine.ViewProfile(c.Request.Context(), userID, summary.CounterpartID); err == nil {
			entry.Profile = &view
		}
		entries = append(entries, entry)
	}
	c.JSON(http.StatusOK, gin.H{"conversations": entries})
}
