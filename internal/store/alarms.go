package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/kd5jp/ChurchBell/internal/models"
)

// AlarmStore owns the alarms table. Every method is one short-lived
// transaction; writes are durable when the call returns.
type AlarmStore struct {
	db *gorm.DB
}

func NewAlarmStore(db *gorm.DB) *AlarmStore {
	return &AlarmStore{db: db}
}

// List returns all alarms ordered by (day_of_week, time_str) ascending.
func (s *AlarmStore) List() ([]models.Alarm, error) {
	var alarms []models.Alarm
	err := s.db.Order("day_of_week ASC, time_str ASC").Find(&alarms).Error
	return alarms, err
}

// ListEnabled returns only alarms eligible for scheduling, same ordering.
func (s *AlarmStore) ListEnabled() ([]models.Alarm, error) {
	var alarms []models.Alarm
	err := s.db.Where("enabled = ?", true).
		Order("day_of_week ASC, time_str ASC").
		Find(&alarms).Error
	return alarms, err
}

// Due returns enabled alarms scheduled for exactly this weekday and minute.
func (s *AlarmStore) Due(weekday int, hhmm string) ([]models.Alarm, error) {
	var alarms []models.Alarm
	err := s.db.Where("enabled = ? AND day_of_week = ? AND time_str = ?", true, weekday, hhmm).
		Find(&alarms).Error
	return alarms, err
}

func (s *AlarmStore) Get(id uint) (*models.Alarm, error) {
	var alarm models.Alarm
	if err := s.db.First(&alarm, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &alarm, nil
}

func (s *AlarmStore) Create(alarm *models.Alarm) error {
	if err := validateAlarm(alarm); err != nil {
		return err
	}
	return s.db.Create(alarm).Error
}

// Update replaces the rule fields of an existing alarm. LastRunDate is left
// alone so an edit cannot re-arm an alarm that already rang today.
func (s *AlarmStore) Update(id uint, alarm *models.Alarm) error {
	if err := validateAlarm(alarm); err != nil {
		return err
	}
	existing, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Model(existing).Updates(map[string]interface{}{
		"day_of_week": alarm.DayOfWeek,
		"time_str":    alarm.TimeStr,
		"sound_path":  alarm.SoundPath,
		"enabled":     alarm.Enabled,
	}).Error
}

func (s *AlarmStore) Delete(id uint) error {
	result := s.db.Unscoped().Delete(&models.Alarm{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AlarmStore) SetEnabled(id uint, enabled bool) error {
	result := s.db.Model(&models.Alarm{}).Where("id = ?", id).Update("enabled", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFired stamps the alarm with the calendar date it rang on.
func (s *AlarmStore) MarkFired(id uint, date time.Time) error {
	result := s.db.Model(&models.Alarm{}).Where("id = ?", id).
		Update("last_run_date", date.Format("2006-01-02"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceAll deletes every alarm and inserts the given rules with fresh ids,
// in one transaction. Restore uses this so a firing check can never observe a
// half-replaced table.
func (s *AlarmStore) ReplaceAll(alarms []models.Alarm) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("1 = 1").Delete(&models.Alarm{}).Error; err != nil {
			return err
		}
		for i := range alarms {
			alarm := alarms[i]
			alarm.ID = 0 // let autoincrement assign
			if err := validateAlarm(&alarm); err != nil {
				return err
			}
			if err := tx.Create(&alarm).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *AlarmStore) CountAll() (int64, error) {
	var n int64
	err := s.db.Model(&models.Alarm{}).Count(&n).Error
	return n, err
}

func (s *AlarmStore) CountEnabled() (int64, error) {
	var n int64
	err := s.db.Model(&models.Alarm{}).Where("enabled = ?", true).Count(&n).Error
	return n, err
}

func validateAlarm(alarm *models.Alarm) error {
	if alarm.DayOfWeek < 0 || alarm.DayOfWeek > 6 {
		return &ValidationError{Field: "day_of_week", Reason: "must be 0 (Monday) through 6 (Sunday)"}
	}
	if _, err := time.Parse("15:04", alarm.TimeStr); err != nil {
		return &ValidationError{Field: "time_str", Reason: "must be HH:MM (24h)"}
	}
	return nil
}
