package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"commute-service/internal/repositories"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "session_token"

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "userID"

// SessionToken extracts the token from the cookie or the Authorization
// header, cookie first (web clients are cookie-based).
func SessionToken(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// AuthMiddleware resolves the session credential to a user id or rejects
// with 401.
func AuthMiddleware(users repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_kind": "unauthorized", "message": "not authenticated"})
			return
		}

		session, err := users.GetSession(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_kind": "unauthorized", "message": "invalid or expired session"})
			return
		}

		c.Set(UserIDKey, session.UserID)
		c.Next()
	}
}
