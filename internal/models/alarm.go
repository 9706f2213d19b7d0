package models

import "gorm.io/gorm"

// Alarm is one weekly bell rule: ring SoundPath at TimeStr on DayOfWeek.
type Alarm struct {
	gorm.Model
	DayOfWeek int    `json:"day_of_week"` // 0=Monday .. 6=Sunday
	TimeStr   string `json:"time_str"`    // HH:MM (24h format, tower-local)
	SoundPath string `json:"sound_path"`  // Relative to the sounds directory; may dangle
	Enabled   bool   `json:"enabled"`

	// LastRunDate ("2006-01-02") guards the polling scheduler against firing the
	// same alarm twice in one calendar day. The cron projection ignores it.
	LastRunDate string `json:"last_run_date"`
}
