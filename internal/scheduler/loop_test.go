package scheduler

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kd5jp/ChurchBell/internal/models"
	"github.com/kd5jp/ChurchBell/internal/store"
)

type fakePlayer struct {
	played []string
}

func (f *fakePlayer) Play(soundRef string, volume int) error {
	f.played = append(f.played, soundRef)
	return nil
}

func setupLoop(t *testing.T, now time.Time) (*Loop, *store.AlarmStore, *fakePlayer) {
	t.Helper()
	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := d.AutoMigrate(&models.Alarm{}, &models.Settings{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	d.Create(&models.Settings{ID: 1, Volume: 70})

	alarms := store.NewAlarmStore(d)
	settings := store.NewSettingsStore(d)
	fake := &fakePlayer{}

	loop := NewLoop(alarms, settings, fake, 30)
	loop.Clock = MockClock{MockTime: now}
	return loop, alarms, fake
}

// Monday 2026-03-02 08:00 local time
var monday0800 = time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)

func TestStoreWeekday(t *testing.T) {
	tests := []struct {
		day  time.Time
		want int
	}{
		{time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 0},  // Monday
		{time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), 2},  // Wednesday
		{time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), 5},  // Saturday
		{time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), 6},  // Sunday
	}
	for _, tt := range tests {
		if got := StoreWeekday(tt.day); got != tt.want {
			t.Errorf("StoreWeekday(%s) = %d, want %d", tt.day.Weekday(), got, tt.want)
		}
	}
}

func TestTickFiresOncePerDay(t *testing.T) {
	loop, alarms, fake := setupLoop(t, monday0800)

	alarm := models.Alarm{DayOfWeek: 0, TimeStr: "08:00", SoundPath: "chime1", Enabled: true}
	if err := alarms.Create(&alarm); err != nil {
		t.Fatalf("create: %v", err)
	}

	// First tick at Monday 08:00 fires and stamps today
	if err := loop.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(fake.played) != 1 || fake.played[0] != "chime1" {
		t.Fatalf("played = %v, want [chime1]", fake.played)
	}

	got, _ := alarms.Get(alarm.ID)
	if got.LastRunDate != "2026-03-02" {
		t.Errorf("LastRunDate = %q, want 2026-03-02", got.LastRunDate)
	}

	// Second tick in the same minute: no second ring
	if err := loop.Tick(); err != nil {
		t.Fatalf("tick 2: %v", err)
	}
	if len(fake.played) != 1 {
		t.Errorf("alarm fired %d times in one day, want 1", len(fake.played))
	}

	// Next week, same slot: fires again
	loop.Clock = MockClock{MockTime: monday0800.AddDate(0, 0, 7)}
	if err := loop.Tick(); err != nil {
		t.Fatalf("tick 3: %v", err)
	}
	if len(fake.played) != 2 {
		t.Errorf("alarm did not fire the following week, played=%v", fake.played)
	}
}

func TestTickIgnoresWrongSlot(t *testing.T) {
	loop, alarms, fake := setupLoop(t, monday0800)

	for _, a := range []models.Alarm{
		{DayOfWeek: 1, TimeStr: "08:00", SoundPath: "tuesday", Enabled: true},
		{DayOfWeek: 0, TimeStr: "08:01", SoundPath: "later", Enabled: true},
		{DayOfWeek: 0, TimeStr: "08:00", SoundPath: "disabled", Enabled: false},
	} {
		alarm := a
		if err := alarms.Create(&alarm); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	if err := loop.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(fake.played) != 0 {
		t.Errorf("played = %v, want nothing", fake.played)
	}
}

func TestTickFiresAllMatchingAlarms(t *testing.T) {
	loop, alarms, fake := setupLoop(t, monday0800)

	// Duplicate (day,time) pairs all fire independently
	for _, sound := range []string{"north-tower", "south-tower"} {
		alarm := models.Alarm{DayOfWeek: 0, TimeStr: "08:00", SoundPath: sound, Enabled: true}
		if err := alarms.Create(&alarm); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	if err := loop.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(fake.played) != 2 {
		t.Errorf("played = %v, want both towers", fake.played)
	}
}

func TestLoopSurvivesPanickingPlayer(t *testing.T) {
	loop, alarms, _ := setupLoop(t, monday0800)

	alarm := models.Alarm{DayOfWeek: 0, TimeStr: "08:00", SoundPath: "chime1", Enabled: true}
	if err := alarms.Create(&alarm); err != nil {
		t.Fatalf("create: %v", err)
	}

	loop.Player = panickingPlayer{}
	loop.safeTick() // must not propagate the panic
}

type panickingPlayer struct{}

func (panickingPlayer) Play(string, int) error {
	panic("audio backend exploded")
}
