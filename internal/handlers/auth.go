package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"commute-service/internal/identity"
	"commute-service/internal/middleware"
	"commute-service/internal/models"
	"commute-service/internal/repositories"
	"commute-service/internal/telemetry"
)

// DefaultSessionTTL matches the provider's 7-day session window.
const DefaultSessionTTL = 7 * 24 * time.Hour

// AuthHandler manages the session endpoints.
type AuthHandler struct {
	users      repositories.UserRepository
	provider   identity.Provider
	sessionTTL time.Duration
	emitter    *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler. A zero TTL selects the default.
func NewAuthHandler(users repositories.UserRepository, provider identity.Provider, sessionTTL time.Duration, emitter *telemetry.AuditEmitter) *AuthHandler {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &AuthHandler{users: users, provider: provider, sessionTTL: sessionTTL, emitter: emitter}
}

// CreateSession exchanges the provider's one-time session id for a local
// session. Provider failures of any kind reject the login.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		fail(c, http.StatusBadRequest, "validation", "X-Session-ID header required")
		return
	}

	data, err := h.provider.ExchangeSession(c.Request.Context(), sessionID)
	if err != nil {
		fail(c, http.StatusUnauthorized, "unauthorized", "session could not be verified")
		return
	}

	user, err := h.users.UpsertUser(c.Request.Context(), models.User{
		ID:      data.ID,
		Email:   data.Email,
		Name:    data.Name,
		Picture: data.Picture,
	})
	if err != nil {
		failErr(c, err)
		return
	}

	expiresAt := time.Now().Add(h.sessionTTL)
	if err := h.users.CreateSession(c.Request.Context(), data.SessionToken, user.ID, expiresAt); err != nil {
		failErr(c, err)
		return
	}

	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.SessionCookie, data.SessionToken, int(h.sessionTTL.Seconds()), "/", "", true, true)

	h.emitter.Emit(c.Request.Context(), "INFO", "session created", requestIDFromContext(c), &user.ID)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout deletes the session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.SessionToken(c); token != "" {
		if err := h.users.DeleteSession(c.Request.Context(), token); err != nil {
			failErr(c, err)
			return
		}
	}

	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
