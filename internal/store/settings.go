package store

import (
	"strconv"

	"gorm.io/gorm"

	"github.com/kd5jp/ChurchBell/internal/models"
)

const DefaultVolume = 70

// SettingsStore reads and writes the singleton settings row.
type SettingsStore struct {
	db *gorm.DB
}

func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) GetVolume() (int, error) {
	var settings models.Settings
	if err := s.db.First(&settings, 1).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return DefaultVolume, nil
		}
		return DefaultVolume, err
	}
	return ClampVolume(settings.Volume), nil
}

// SetVolume clamps to [0,100] before writing; out-of-range input is
// corrected, never rejected.
func (s *SettingsStore) SetVolume(v int) error {
	v = ClampVolume(v)
	return s.db.Model(&models.Settings{ID: 1}).Update("volume", v).Error
}

// ClampVolume forces v into [0,100].
func ClampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ParseVolume turns raw user input into a valid volume: unparsable text
// becomes the default, out-of-range numbers are clamped.
func ParseVolume(raw string) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultVolume
	}
	return ClampVolume(v)
}
