package main

import (
	"log"

	"github.com/kd5jp/ChurchBell/internal/config"
	"github.com/kd5jp/ChurchBell/internal/cron"
	database "github.com/kd5jp/ChurchBell/internal/db"
	"github.com/kd5jp/ChurchBell/internal/store"
)

// One-shot crontab re-projection. Useful after restoring a database by hand
// or from a recovery shell.
func main() {
	log.SetFlags(log.LstdFlags)

	cfg := config.Load()
	db := database.New(cfg)

	alarms, err := store.NewAlarmStore(db.DB).ListEnabled()
	if err != nil {
		log.Fatalf("❌ Could not list alarms: %v", err)
	}

	synchronizer := cron.NewSynchronizer(cron.ExecCrontab{}, cfg.Scheduler.Marker, cfg.Scheduler.PlayEntrypoint)
	synchronizer.Sync(alarms)

	log.Printf("✅ Crontab synchronized (%d enabled alarms)", len(alarms))
}
