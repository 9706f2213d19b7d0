package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kd5jp/ChurchBell/internal/auth"
	"github.com/kd5jp/ChurchBell/internal/scheduler"
	"github.com/kd5jp/ChurchBell/internal/store"
)

// SoundHandler manages the bell sound asset directory. Only flat .wav files
// are accepted; tone generation itself happens elsewhere.
type SoundHandler struct {
	users     *store.UserStore
	settings  *store.SettingsStore
	player    scheduler.SoundPlayer
	soundsDir string
}

func NewSoundHandler(users *store.UserStore, settings *store.SettingsStore, player scheduler.SoundPlayer, soundsDir string) *SoundHandler {
	return &SoundHandler{
		users:     users,
		settings:  settings,
		player:    player,
		soundsDir: soundsDir,
	}
}

func (h *SoundHandler) List(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBells); !ok {
		return
	}

	entries, err := os.ReadDir(h.soundsDir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusOK, []string{})
			return
		}
		respondError(c, err)
		return
	}

	var sounds []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".wav") {
			sounds = append(sounds, e.Name())
		}
	}
	sort.Strings(sounds)
	c.JSON(http.StatusOK, sounds)
}

func (h *SoundHandler) Upload(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBells); !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	name := filepath.Base(fileHeader.Filename)
	if !strings.HasSuffix(strings.ToLower(name), ".wav") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .wav files are accepted"})
		return
	}

	if err := os.MkdirAll(h.soundsDir, 0755); err != nil {
		respondError(c, err)
		return
	}
	if err := c.SaveUploadedFile(fileHeader, filepath.Join(h.soundsDir, name)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"name": name})
}

func (h *SoundHandler) Delete(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBells); !ok {
		return
	}

	name := filepath.Base(c.Param("name"))
	path := filepath.Join(h.soundsDir, name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sound not found"})
			return
		}
		respondError(c, err)
		return
	}

	// Alarms referencing the deleted sound keep their dangling reference;
	// playback reports NotFound when they next fire.
	c.JSON(http.StatusOK, gin.H{"message": "Sound deleted", "name": name})
}

// Test plays a sound at the stored volume so the operator can audition it.
func (h *SoundHandler) Test(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBells); !ok {
		return
	}

	name := filepath.Base(c.Param("name"))
	volume, _ := h.settings.GetVolume()

	if err := h.player.Play(name, volume); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
