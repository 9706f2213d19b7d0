package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apiserver "github.com/kd5jp/ChurchBell/internal/api/server"
	"github.com/kd5jp/ChurchBell/internal/backup"
	"github.com/kd5jp/ChurchBell/internal/config"
	"github.com/kd5jp/ChurchBell/internal/cron"
	database "github.com/kd5jp/ChurchBell/internal/db"
	"github.com/kd5jp/ChurchBell/internal/player"
	"github.com/kd5jp/ChurchBell/internal/scheduler"
	"github.com/kd5jp/ChurchBell/internal/storage"
	"github.com/kd5jp/ChurchBell/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting ChurchBell API Server...")

	// 1. Setup Configuration
	cfg := config.Load()

	// 2. Initialize Infrastructure
	db := database.New(cfg)
	db.AutoMigrate()
	database.SeedSettings(db.DB)
	database.SeedAdminUser(db.DB, cfg)

	if err := os.MkdirAll(cfg.Audio.SoundsDir, 0755); err != nil {
		log.Fatalf("❌ Cannot create sounds dir %s: %v", cfg.Audio.SoundsDir, err)
	}

	alarms := store.NewAlarmStore(db.DB)
	settings := store.NewSettingsStore(db.DB)

	snd := player.New(
		cfg.Audio.SoundsDir,
		cfg.Audio.PlayerBin,
		cfg.Audio.MixerBin,
		cfg.Audio.MixerControl,
		cfg.Audio.TimeoutSeconds,
	)

	// 3. Scheduler wiring. Exactly one mechanism fires bells: cron projection
	// or the in-process loop. Running both would ring everything twice.
	sync := func() {}

	// Restore pauses the scheduler-side unit named by backup.service_unit,
	// never this server's own unit.
	var svc backup.ServiceController = backup.SystemdController{}

	switch cfg.Scheduler.Mode {
	case "cron":
		synchronizer := cron.NewSynchronizer(cron.ExecCrontab{}, cfg.Scheduler.Marker, cfg.Scheduler.PlayEntrypoint)
		sync = func() {
			// Fire-and-forget: the CRUD request never waits for the crontab.
			go func() {
				enabled, err := alarms.ListEnabled()
				if err != nil {
					log.Printf("⚠️ Cron sync: could not list alarms: %v", err)
					return
				}
				synchronizer.Sync(enabled)
			}()
		}
		log.Println("🕑 Scheduler mode: cron projection")
	case "loop":
		loop := scheduler.NewLoop(alarms, settings, snd, cfg.Scheduler.PollingInterval)
		go loop.Run(context.Background())
		// Loop shares this process; restore pauses nothing at the unit level.
		svc = backup.NopController{}
		log.Println("🕑 Scheduler mode: in-process loop")
	}

	// 4. Backup manager (+ optional offsite mirror)
	offsite := storage.New(cfg)
	backups := backup.NewManager(alarms, cfg.Audio.SoundsDir, cfg.Backup.Dir, cfg.Backup.ServiceUnit, svc, offsite)

	// 5. Setup Metrics
	go func() {
		http.Handle("/_metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/_metrics", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(cfg.Server.MetricsPort, nil); err != nil {
			log.Printf("⚠️ Metrics server error: %v", err)
		}
	}()

	// 6. Project the current alarm set once at boot so the crontab matches
	// the store even after edits made while the server was down.
	sync()

	// 7. Start Server
	srv := apiserver.New(cfg, db, snd, backups, sync)
	log.Printf("🚀 API Server starting on %s", cfg.Server.Port)
	if err := srv.Start(cfg.Server.Port); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}
