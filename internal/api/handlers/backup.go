package handlers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kd5jp/ChurchBell/internal/auth"
	"github.com/kd5jp/ChurchBell/internal/backup"
	"github.com/kd5jp/ChurchBell/internal/store"
)

type BackupHandler struct {
	users   *store.UserStore
	manager *backup.Manager
}

func NewBackupHandler(users *store.UserStore, manager *backup.Manager) *BackupHandler {
	return &BackupHandler{users: users, manager: manager}
}

// Export creates a new archive and reports its name. Capability check comes
// first: a rejected caller must leave no archive behind.
func (h *BackupHandler) Export(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBackup); !ok {
		return
	}

	path, err := h.manager.Export()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"archive": filepath.Base(path)})
}

// List names every known archive: the local backup directory merged with the
// offsite mirror, newest first.
func (h *BackupHandler) List(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBackup); !ok {
		return
	}

	seen := make(map[string]bool)
	archives := []string{}

	entries, err := os.ReadDir(h.manager.BackupDir)
	if err != nil && !os.IsNotExist(err) {
		respondError(c, err)
		return
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".zip") {
			seen[e.Name()] = true
			archives = append(archives, e.Name())
		}
	}

	offsite, err := h.manager.ListOffsite()
	if err != nil {
		log.Printf("⚠️ Offsite mirror listing failed: %v", err)
	}
	for _, name := range offsite {
		if strings.HasSuffix(name, ".zip") && !seen[name] {
			archives = append(archives, name)
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(archives))) // newest first
	c.JSON(http.StatusOK, archives)
}

// Restore replaces the alarm table and sound assets from a named archive,
// pulling it from the offsite mirror if it is not in the backup directory.
func (h *BackupHandler) Restore(c *gin.Context) {
	if _, ok := requireCapability(c, h.users, auth.CapBackup); !ok {
		return
	}

	var input struct {
		Archive string `json:"archive" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	path, err := h.manager.Fetch(filepath.Base(input.Archive))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.manager.Import(path); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Backup restored", "archive": filepath.Base(path)})
}
