package models

import "time"

// Settings is a singleton row (ID = 1). It always exists after first boot and
// is never deleted.
type Settings struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Volume    int       `gorm:"not null;default:70" json:"volume"` // 0..100
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
