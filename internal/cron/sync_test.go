package cron

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kd5jp/ChurchBell/internal/models"
)

const (
	testMarker = "# ChurchBell Alarm ID"
	testPlay   = "/usr/local/bin/bellplay"
)

type fakeCrontab struct {
	text     string
	readErr  error
	writeErr error
	writes   int
}

func (f *fakeCrontab) Read() (string, error) {
	return f.text, f.readErr
}

func (f *fakeCrontab) Write(text string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.text = text
	f.writes++
	return nil
}

func alarmWithID(id uint, dow int, hhmm, sound string) models.Alarm {
	a := models.Alarm{DayOfWeek: dow, TimeStr: hhmm, SoundPath: sound, Enabled: true}
	a.ID = id
	return a
}

func TestJobLineDayOfWeekMapping(t *testing.T) {
	s := NewSynchronizer(&fakeCrontab{}, testMarker, testPlay)

	// Store weekdays 0..6 (Mon..Sun) map onto cron 1..7
	for dow := 0; dow <= 6; dow++ {
		line, err := s.JobLine(alarmWithID(1, dow, "08:05", "chime.wav"))
		if err != nil {
			t.Fatalf("jobLine dow=%d: %v", dow, err)
		}
		want := fmt.Sprintf("5 8 * * %d %s chime.wav", dow+1, testPlay)
		if line != want {
			t.Errorf("dow %d: got %q, want %q", dow, line, want)
		}
	}
}

func TestJobLineStripsLeadingZeros(t *testing.T) {
	s := NewSynchronizer(&fakeCrontab{}, testMarker, testPlay)

	line, err := s.JobLine(alarmWithID(7, 6, "00:07", "bell.wav"))
	if err != nil {
		t.Fatalf("jobLine: %v", err)
	}
	if !strings.HasPrefix(line, "7 0 * * 7 ") {
		t.Errorf("got %q, want minute 7 hour 0 dow 7", line)
	}
}

func TestStripOwnedPreservesForeignLines(t *testing.T) {
	existing := strings.Join([]string{
		"MAILTO=ops@example.org",
		"0 3 * * * /usr/bin/certbot renew",
		testMarker + " 4",
		"0 9 * * 2 " + testPlay + " old.wav",
		"# a comment someone left",
		"*/5 * * * * /usr/local/bin/heartbeat",
	}, "\n") + "\n"

	got := StripOwned(existing, testMarker)

	want := strings.Join([]string{
		"MAILTO=ops@example.org",
		"0 3 * * * /usr/bin/certbot renew",
		"# a comment someone left",
		"*/5 * * * * /usr/local/bin/heartbeat",
	}, "\n") + "\n"

	if got != want {
		t.Errorf("StripOwned:\ngot  %q\nwant %q", got, want)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	crontab := &fakeCrontab{text: "0 3 * * * /usr/bin/certbot renew\n"}
	s := NewSynchronizer(crontab, testMarker, testPlay)

	alarms := []models.Alarm{
		alarmWithID(1, 0, "08:00", "chime.wav"),
		alarmWithID(2, 6, "18:30", "big.wav"),
	}

	s.Sync(alarms)
	first := crontab.text

	s.Sync(alarms)
	second := crontab.text

	if first != second {
		t.Errorf("second sync changed the table:\nfirst  %q\nsecond %q", first, second)
	}

	// Foreign line survives, both pairs present
	if !strings.Contains(second, "certbot renew") {
		t.Error("foreign cron line lost")
	}
	if !strings.Contains(second, testMarker+" 1\n0 8 * * 1 "+testPlay+" chime.wav") {
		t.Errorf("alarm 1 pair missing from %q", second)
	}
	if !strings.Contains(second, testMarker+" 2\n30 18 * * 7 "+testPlay+" big.wav") {
		t.Errorf("alarm 2 pair missing from %q", second)
	}
}

func TestSyncSkipsDisabledAlarms(t *testing.T) {
	crontab := &fakeCrontab{}
	s := NewSynchronizer(crontab, testMarker, testPlay)

	disabled := alarmWithID(3, 2, "12:00", "quiet.wav")
	disabled.Enabled = false

	s.Sync([]models.Alarm{disabled})

	if strings.Contains(crontab.text, "quiet.wav") {
		t.Errorf("disabled alarm projected: %q", crontab.text)
	}
}

func TestSyncSwallowsReadFailure(t *testing.T) {
	crontab := &fakeCrontab{readErr: errors.New("no tty")}
	s := NewSynchronizer(crontab, testMarker, testPlay)

	// Must not panic and must not write a partial table
	s.Sync([]models.Alarm{alarmWithID(1, 0, "08:00", "chime.wav")})

	if crontab.writes != 0 {
		t.Errorf("sync wrote despite failed read")
	}
}
