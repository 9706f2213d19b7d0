package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kd5jp/ChurchBell/internal/store"
)

type StatsHandler struct {
	alarms *store.AlarmStore
	users  *store.UserStore
}

func NewStatsHandler(alarms *store.AlarmStore, users *store.UserStore) *StatsHandler {
	return &StatsHandler{alarms: alarms, users: users}
}

// GetStats returns the dashboard numbers. Any authenticated account may see
// them; they leak nothing capability-gated.
func (h *StatsHandler) GetStats(c *gin.Context) {
	if _, ok := currentUser(c, h.users); !ok {
		return
	}

	total, err := h.alarms.CountAll()
	if err != nil {
		respondError(c, err)
		return
	}
	enabled, err := h.alarms.CountEnabled()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alarm_count":   total,
		"enabled_count": enabled,
	})
}
