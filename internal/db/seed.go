package database

import (
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kd5jp/ChurchBell/internal/auth"
	"github.com/kd5jp/ChurchBell/internal/config"
	"github.com/kd5jp/ChurchBell/internal/models"
)

// SeedSettings guarantees the singleton settings row (ID=1, volume 70) exists.
func SeedSettings(db *gorm.DB) {
	db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Settings{ID: 1, Volume: 70})
}

// SeedAdminUser creates the default admin on first boot, but only if the users
// table is completely empty — an appliance reset, not a backdoor.
func SeedAdminUser(db *gorm.DB, cfg *config.Config) {
	var count int64
	db.Model(&models.Users{}).Count(&count)
	if count > 0 {
		return
	}

	hash, err := auth.HashPassword(cfg.Auth.AdminPass)
	if err != nil {
		log.Fatalf("❌ Failed to hash default admin password: %v", err)
	}

	admin := models.Users{
		Username:     cfg.Auth.AdminUser,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("❌ Failed to seed admin user: %v", err)
	}
	log.Printf("🌱 Seeded default admin user %q (change the password!)", cfg.Auth.AdminUser)
}
