package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kd5jp/ChurchBell/internal/config"
	database "github.com/kd5jp/ChurchBell/internal/db"
	"github.com/kd5jp/ChurchBell/internal/player"
	"github.com/kd5jp/ChurchBell/internal/scheduler"
	"github.com/kd5jp/ChurchBell/internal/store"
)

// Standalone loop-mode daemon: polls the store and rings due bells without
// the API server. Deployments using cron projection do not run this.
func main() {
	interval := flag.Int("interval", 0, "Override polling interval in seconds")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("🚀 Starting ChurchBell Scheduler (loop mode)...")

	cfg := config.Load()
	if *interval > 0 {
		cfg.Scheduler.PollingInterval = *interval
	}

	db := database.New(cfg)
	db.AutoMigrate()
	database.SeedSettings(db.DB)

	alarms := store.NewAlarmStore(db.DB)
	settings := store.NewSettingsStore(db.DB)

	snd := player.New(
		cfg.Audio.SoundsDir,
		cfg.Audio.PlayerBin,
		cfg.Audio.MixerBin,
		cfg.Audio.MixerControl,
		cfg.Audio.TimeoutSeconds,
	)

	go func() {
		http.Handle("/_metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.Server.MetricsPort, nil); err != nil {
			log.Printf("⚠️ Metrics server error: %v", err)
		}
	}()

	loop := scheduler.NewLoop(alarms, settings, snd, cfg.Scheduler.PollingInterval)
	loop.Run(context.Background())
}
