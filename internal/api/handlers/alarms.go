package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kd5jp/ChurchBell/internal/auth"
	"github.com/kd5jp/ChurchBell/internal/models"
	"github.com/kd5jp/ChurchBell/internal/scheduler"
	"github.com/kd5jp/ChurchBell/internal/store"
)

// SyncFunc re-projects alarms after a write. In cron mode it kicks the
// crontab synchronizer in the background; in loop mode it is a no-op because
// the loop re-reads the store on its next tick. The request never waits for
// it.
type SyncFunc func()

type AlarmHandler struct {
	alarms   *store.AlarmStore
	settings *store.SettingsStore
	users    *store.UserStore
	player   scheduler.SoundPlayer
	sync     SyncFunc
}

func NewAlarmHandler(alarms *store.AlarmStore, settings *store.SettingsStore, users *store.UserStore, player scheduler.SoundPlayer, sync SyncFunc) *AlarmHandler {
	return &AlarmHandler{
		alarms:   alarms,
		settings: settings,
		users:    users,
		player:   player,
		sync:     sync,
	}
}

type alarmInput struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required"`
	TimeStr   string `json:"time_str" binding:"required"`
	SoundPath string `json:"sound_path" binding:"required"`
	Enabled   *bool  `json:"enabled"`
}

func (in *alarmInput) toModel() models.Alarm {
	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}
	return models.Alarm{
		DayOfWeek: *in.DayOfWeek,
		TimeStr:   in.TimeStr,
		SoundPath: in.SoundPath,
		Enabled:   enabled,
	}
}

func (h *AlarmHandler) List(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBells); !ok {
		return
	}
	alarms, err := h.alarms.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alarms)
}

func (h *AlarmHandler) Create(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBells); !ok {
		return
	}

	var input alarmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alarm := input.toModel()
	if err := h.alarms.Create(&alarm); err != nil {
		respondError(c, err)
		return
	}

	h.sync()
	c.JSON(http.StatusCreated, alarm)
}

func (h *AlarmHandler) Update(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBells); !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var input alarmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alarm := input.toModel()
	if err := h.alarms.Update(id, &alarm); err != nil {
		respondError(c, err)
		return
	}

	h.sync()
	updated, err := h.alarms.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *AlarmHandler) Delete(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBells); !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.alarms.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	h.sync()
	c.JSON(http.StatusOK, gin.H{"message": "Alarm deleted", "id": id})
}

// Toggle flips enabled without the client having to resend the whole rule.
func (h *AlarmHandler) Toggle(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBells); !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	alarm, err := h.alarms.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.alarms.SetEnabled(id, !alarm.Enabled); err != nil {
		respondError(c, err)
		return
	}

	h.sync()
	c.JSON(http.StatusOK, gin.H{"id": id, "enabled": !alarm.Enabled})
}

// Test rings an alarm's sound right now at the stored volume.
func (h *AlarmHandler) Test(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBells); !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	alarm, err := h.alarms.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	volume, _ := h.settings.GetVolume()
	if err := h.player.Play(alarm.SoundPath, volume); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
