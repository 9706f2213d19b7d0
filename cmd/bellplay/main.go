package main

import (
	"log"
	"os"

	"github.com/kd5jp/ChurchBell/internal/config"
	database "github.com/kd5jp/ChurchBell/internal/db"
	"github.com/kd5jp/ChurchBell/internal/player"
	"github.com/kd5jp/ChurchBell/internal/store"
)

// bellplay is the playback entrypoint the generated cron lines invoke:
//
//	{minute} {hour} * * {dow} /usr/local/bin/bellplay {sound}
//
// It reads the stored volume and plays the given sound once.
func main() {
	log.SetFlags(log.LstdFlags)

	if len(os.Args) < 2 {
		log.Fatal("usage: bellplay <sound_path>")
	}
	soundRef := os.Args[1]

	cfg := config.Load()
	db := database.New(cfg)

	volume, err := store.NewSettingsStore(db.DB).GetVolume()
	if err != nil {
		log.Printf("⚠️ Could not read volume, using default: %v", err)
	}

	snd := player.New(
		cfg.Audio.SoundsDir,
		cfg.Audio.PlayerBin,
		cfg.Audio.MixerBin,
		cfg.Audio.MixerControl,
		cfg.Audio.TimeoutSeconds,
	)

	if err := snd.Play(soundRef, volume); err != nil {
		log.Fatalf("❌ %v", err)
	}
}
