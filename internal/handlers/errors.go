package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"commute-service/internal/discovery"
	"commute-service/internal/identity"
	"commute-service/internal/privacy"
	"commute-service/internal/repositories"
)

// fail writes the structured error body every endpoint uses.
func fail(c *gin.Context, status int, kind, message string) {
	c.JSON(status, gin.H{"error_kind": kind, "message": message})
}

// failErr maps a domain error to its HTTP shape. Unknown errors become 500s
// without leaking detail.
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, discovery.ErrSelfTarget):
		fail(c, http.StatusBadRequest, "self_target", "operation cannot target yourself")
	case errors.Is(err, privacy.ErrNotVisible):
		// not_visible deliberately mirrors not_found so hidden profiles do
		// not leak their existence
		fail(c, http.StatusNotFound, "not_visible", "profile not available")
	case errors.Is(err, repositories.ErrProfileNotFound):
		fail(c, http.StatusNotFound, "not_found", "profile not found")
	case errors.Is(err, repositories.ErrUserNotFound):
		fail(c, http.StatusNotFound, "not_found", "user not found")
	case errors.Is(err, repositories.ErrConnectionNotFound):
		fail(c, http.StatusNotFound, "not_found", "connection request not found")
	case errors.Is(err, repositories.ErrConnectionExists):
		fail(c, http.StatusConflict, "duplicate", "a connection already exists for this pair")
	case errors.Is(err, repositories.ErrConnectionNotPending):
		fail(c, http.StatusConflict, "conflict", "connection request already processed")
	case errors.Is(err, repositories.ErrNotResponder):
		fail(c, http.StatusForbidden, "forbidden", "only the request recipient may respond")
	case errors.Is(err, repositories.ErrActiveTripExists):
		fail(c, http.StatusConflict, "conflict", "an active trip already exists; end it first")
	case errors.Is(err, repositories.ErrTripNotFound):
		fail(c, http.StatusNotFound, "not_found", "trip not found")
	case errors.Is(err, repositories.ErrTripNotEditable):
		fail(c, http.StatusForbidden, "forbidden", "trip is not yours or already ended")
	case errors.Is(err, identity.ErrInvalidSession):
		fail(c, http.StatusUnauthorized, "unauthorized", "invalid session")
	default:
		fail(c, http.StatusInternalServerError, "internal", "internal error")
	}
}
