package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kd5jp/ChurchBell/internal/auth"
	"github.com/kd5jp/ChurchBell/internal/store"
)

// Mixer applies a volume to the hardware. Satisfied by *player.Player.
type Mixer interface {
	ApplyVolume(volume int)
}

type VolumeHandler struct {
	users    *store.UserStore
	settings *store.SettingsStore
	mixer    Mixer
}

func NewVolumeHandler(users *store.UserStore, settings *store.SettingsStore, mixer Mixer) *VolumeHandler {
	return &VolumeHandler{users: users, settings: settings, mixer: mixer}
}

func (h *VolumeHandler) Get(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBells); !ok {
		return
	}
	volume, err := h.settings.GetVolume()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"volume": volume})
}

// Set accepts the volume as a JSON number or string: out-of-range is
// clamped, garbage falls back to the default. Never a 4xx — the appliance UI
// sends whatever the slider had.
func (h *VolumeHandler) Set(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBells); !ok {
		return
	}

	var input struct {
		Volume json.RawMessage `json:"volume"`
	}
	_ = c.ShouldBindJSON(&input)

	volume := store.ParseVolume(strings.Trim(string(input.Volume), `"`))
	if err := h.settings.SetVolume(volume); err != nil {
		respondError(c, err)
		return
	}

	if h.mixer != nil {
		h.mixer.ApplyVolume(volume)
	}

	c.JSON(http.StatusOK, gin.H{"volume": volume})
}
