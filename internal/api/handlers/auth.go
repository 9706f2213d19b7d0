package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kd5jp/ChurchBell/internal/auth"
	"github.com/kd5jp/ChurchBell/internal/store"
)

type AuthHandler struct {
	users    *store.UserStore
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthHandler(users *store.UserStore, secret []byte, ttlHours int) *AuthHandler {
	return &AuthHandler{
		users:    users,
		secret:   secret,
		tokenTTL: time.Duration(ttlHours) * time.Hour,
	}
}

// Login verifies credentials and issues a JWT. The same generic 401 covers
// unknown usernames and wrong passwords.
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByUsername(input.Username)
	if err != nil || !auth.CheckPassword(user.PasswordHash, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(h.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":       signed,
		"username":    user.Username,
		"role":        user.Role,
		"permissions": auth.EffectivePermissions(user),
	})
}

// ChangePassword re-verifies the current credential before storing the new
// hash; a hijacked session alone cannot rotate the password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	var input struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.ChangePassword(user.ID, input.CurrentPassword, input.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
