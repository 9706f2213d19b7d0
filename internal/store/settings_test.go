package store

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kd5jp/ChurchBell/internal/models"
)

func setupSettingsDB(t *testing.T) *SettingsStore {
	t.Helper()
	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := d.AutoMigrate(&models.Settings{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	d.Create(&models.Settings{ID: 1, Volume: 70})
	return NewSettingsStore(d)
}

func TestParseVolume(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"50", 50},
		{"0", 0},
		{"100", 100},
		{"150", 100}, // clamped
		{"-5", 0},    // clamped
		{"abc", 70},  // defaulted
		{"", 70},     // defaulted
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseVolume(tt.raw); got != tt.want {
				t.Errorf("ParseVolume(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSetVolumeClamps(t *testing.T) {
	s := setupSettingsDB(t)

	if err := s.SetVolume(150); err != nil {
		t.Fatalf("setVolume: %v", err)
	}
	if v, _ := s.GetVolume(); v != 100 {
		t.Errorf("volume = %d, want 100", v)
	}

	if err := s.SetVolume(-10); err != nil {
		t.Fatalf("setVolume: %v", err)
	}
	if v, _ := s.GetVolume(); v != 0 {
		t.Errorf("volume = %d, want 0", v)
	}
}
