package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Users struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"not null" json:"-"` // Hidden from JSON
	Role         string         `gorm:"type:varchar(20);default:'user'" json:"role"`
	Permissions  string         `json:"permissions"` // Comma-separated: "bells,backup"
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *Users) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PermissionList splits the stored comma-separated set, trimming blanks.
func (u *Users) PermissionList() []string {
	var caps []string
	for _, p := range strings.Split(u.Permissions, ",") {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			caps = append(caps, trimmed)
		}
	}
	return caps
}
