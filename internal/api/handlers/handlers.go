// Package handlers maps HTTP requests onto store/auth/player operations.
// Every guarded handler loads the authenticated user and checks the required
// capability before doing anything else.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kd5jp/ChurchBell/internal/auth"
	"github.com/kd5jp/ChurchBell/internal/models"
	"github.com/kd5jp/ChurchBell/internal/player"
	"github.com/kd5jp/ChurchBell/internal/store"
)

// currentUser resolves the user id the auth middleware stashed in the
// context. A stale token for a deleted user yields 401.
func currentUser(c *gin.Context, users *store.UserStore) (*models.Users, bool) {
	id, exists := c.Get("user_id")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Auth context missing"})
		return nil, false
	}
	uid, _ := id.(uint)
	user, err := users.Get(uid)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown account"})
		return nil, false
	}
	return user, true
}

// requireCapability loads the caller and rejects with 403 before the handler
// has any side effect.
func requireCapability(c *gin.Context, users *store.UserStore, cap string) (*models.Users, bool) {
	user, ok := currentUser(c, users)
	if !ok {
		return nil, false
	}
	if err := auth.Require(user, cap); err != nil {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return nil, false
	}
	return user, true
}

// respondError translates the error taxonomy into status codes.
func respondError(c *gin.Context, err error) {
	var ve *store.ValidationError
	var pe *player.PlaybackError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.Is(err, store.ErrNotFound), errors.Is(err, player.ErrSoundNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, auth.ErrSelfDelete),
		errors.Is(err, auth.ErrSelfRoleChange),
		errors.Is(err, auth.ErrAdminOnlyCreate),
		errors.Is(err, auth.ErrAdminOnlyRole),
		errors.Is(err, auth.ErrAdminOnlyDelete):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &pe):
		c.JSON(http.StatusBadGateway, gin.H{"error": pe.Error(), "detail": pe.Detail})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
