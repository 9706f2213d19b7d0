package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kd5jp/ChurchBell/internal/store"
)

var (
	alarmsFired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "churchbell_alarms_fired_total",
			Help: "Alarms fired by the polling scheduler",
		})
	tickErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "churchbell_scheduler_tick_errors_total",
			Help: "Scheduler ticks that hit an error (loop keeps running)",
		})
	playbackFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "churchbell_playback_failures_total",
			Help: "Scheduled firings whose playback backend failed",
		})
)

func init() {
	prometheus.MustRegister(alarmsFired, tickErrors, playbackFailures)
}

// SoundPlayer is what a firing needs from the audio layer.
type SoundPlayer interface {
	Play(soundRef string, volume int) error
}

// Loop is the in-process fallback scheduler: it polls the store every
// Interval and fires due alarms directly. A deployment runs either this or
// the cron projection, never both, or bells ring twice.
type Loop struct {
	Alarms   *store.AlarmStore
	Settings *store.SettingsStore
	Player   SoundPlayer
	Clock    Clock
	Interval time.Duration
}

func NewLoop(alarms *store.AlarmStore, settings *store.SettingsStore, player SoundPlayer, intervalSeconds int) *Loop {
	return &Loop{
		Alarms:   alarms,
		Settings: settings,
		Player:   player,
		Clock:    RealClock{},
		Interval: time.Duration(intervalSeconds) * time.Second,
	}
}

// Run ticks until the context is cancelled. A failing tick is logged and the
// loop sleeps until the next period; nothing short of cancellation stops it.
func (l *Loop) Run(ctx context.Context) {
	log.Printf("⏰ Scheduler loop started (every %s)", l.Interval)
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏰ Scheduler loop stopped")
			return
		case <-ticker.C:
			l.safeTick()
		}
	}
}

func (l *Loop) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Scheduler tick panicked: %v", r)
			tickErrors.Inc()
		}
	}()
	if err := l.Tick(); err != nil {
		log.Printf("⚠️ Scheduler tick failed: %v", err)
		tickErrors.Inc()
	}
}

// Tick fires every enabled alarm matching the current weekday and minute
// that has not already run today. Firing marks the alarm before the next
// tick can see it, so a 30s poll inside the same minute cannot ring twice.
// A minute missed entirely (process down) stays missed; there is no catch-up.
func (l *Loop) Tick() error {
	now := l.Clock.Now()
	weekday := StoreWeekday(now)
	hhmm := now.Format("15:04")
	today := now.Format("2006-01-02")

	due, err := l.Alarms.Due(weekday, hhmm)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	volume, err := l.Settings.GetVolume()
	if err != nil {
		log.Printf("⚠️ Could not read volume, using default: %v", err)
	}

	for _, alarm := range due {
		if alarm.LastRunDate == today {
			continue // already rang today
		}

		if err := l.Player.Play(alarm.SoundPath, volume); err != nil {
			log.Printf("⚠️ Alarm %d playback failed: %v", alarm.ID, err)
			playbackFailures.Inc()
			// Mark anyway: at most one attempt per day, same as cron's
			// once-per-minute firing.
		}
		if err := l.Alarms.MarkFired(alarm.ID, now); err != nil {
			log.Printf("⚠️ Alarm %d could not be marked fired: %v", alarm.ID, err)
			continue
		}
		alarmsFired.Inc()
		log.Printf("🔔 Alarm %d fired (%s %s, sound %s)", alarm.ID, hhmm, today, alarm.SoundPath)
	}
	return nil
}
