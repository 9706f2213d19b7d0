package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kd5jp/ChurchBell/internal/backup"
	"github.com/kd5jp/ChurchBell/internal/models"
	"github.com/kd5jp/ChurchBell/internal/store"
)

type backupFixture struct {
	handler   *BackupHandler
	users     *store.UserStore
	admin     *models.Users
	backupDir string
}

func setupBackupHandler(t *testing.T) *backupFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Alarm{}, &models.Users{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	admin := models.Users{Username: "admin", PasswordHash: "x", Role: models.RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	users := store.NewUserStore(db)
	alarms := store.NewAlarmStore(db)
	if err := alarms.Create(&models.Alarm{DayOfWeek: 0, TimeStr: "08:00", SoundPath: "a.wav", Enabled: true}); err != nil {
		t.Fatalf("seed alarm: %v", err)
	}

	backupDir := filepath.Join(t.TempDir(), "backups")
	manager := backup.NewManager(alarms, t.TempDir(), backupDir, "test.service", backup.NopController{}, nil)

	return &backupFixture{
		handler:   NewBackupHandler(users, manager),
		users:     users,
		admin:     &admin,
		backupDir: backupDir,
	}
}

func authedContext(t *testing.T, userID uint) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/backups", nil)
	c.Set("user_id", userID)
	return c, w
}

// A caller holding bells but not backup must be turned away before any
// archive is written.
func TestExportRejectedWithoutBackupCapability(t *testing.T) {
	f := setupBackupHandler(t)

	ringer, err := f.users.Create(f.admin, "ringer", "secret", models.RoleUser, []string{"bells"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	c, w := authedContext(t, ringer.ID)
	f.handler.Export(c)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if entries, _ := os.ReadDir(f.backupDir); len(entries) != 0 {
		t.Errorf("rejected export left %d archive(s) behind", len(entries))
	}
}

func TestExportAllowedWithBackupCapability(t *testing.T) {
	f := setupBackupHandler(t)

	op, err := f.users.Create(f.admin, "operator", "secret", models.RoleUser, []string{"backup"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	c, w := authedContext(t, op.ID)
	f.handler.Export(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", w.Code, http.StatusCreated, w.Body.String())
	}
	entries, err := os.ReadDir(f.backupDir)
	if err != nil || len(entries) != 1 {
		t.Errorf("expected exactly one archive, got %d (err %v)", len(entries), err)
	}
}
