package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kd5jp/ChurchBell/internal/auth"
	"github.com/kd5jp/ChurchBell/internal/models"
	"github.com/kd5jp/ChurchBell/internal/store"
)

type UserHandler struct {
	users *store.UserStore
}

func NewUserHandler(users *store.UserStore) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapUsers); !ok {
		return
	}

	users, err := h.users.List()
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, gin.H{
			"id":          users[i].ID,
			"username":    users[i].Username,
			"role":        users[i].Role,
			"permissions": auth.EffectivePermissions(&users[i]),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := requireCapability(c, h.users, auth.CapUsers)
	if !ok {
		return
	}

	var input struct {
		Username    string   `json:"username" binding:"required"`
		Password    string   `json:"password" binding:"required"`
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Role == "" {
		input.Role = models.RoleUser
	}

	user, err := h.users.Create(actor, input.Username, input.Password, input.Role, input.Permissions)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          user.ID,
		"username":    user.Username,
		"role":        user.Role,
		"permissions": auth.EffectivePermissions(user),
	})
}

func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := requireCapability(c, h.users, auth.CapUsers)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.users.Delete(actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted", "id": id})
}

func (h *UserHandler) SetRole(c *gin.Context) {
	actor, ok := requireCapability(c, h.users, auth.CapUsers)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var input struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.SetRole(actor, id, input.Role); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "role": input.Role})
}

func (h *UserHandler) SetPermissions(c *gin.Context) {
	actor, ok := requireCapability(c, h.users, auth.CapUsers)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var input struct {
		Permissions []string `json:"permissions"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.SetPermissions(actor, id, input.Permissions); err != nil {
		respondError(c, err)
		return
	}

	target, err := h.users.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "permissions": auth.EffectivePermissions(target)})
}
