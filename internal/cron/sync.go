// Package cron projects enabled alarms into the user crontab. Each generated
// job is preceded by a marker comment so re-projection can strip exactly the
// lines it owns and nothing else.
package cron

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/kd5jp/ChurchBell/internal/models"
)

// Crontab abstracts the OS job table so tests can run against a string.
type Crontab interface {
	Read() (string, error)
	Write(text string) error
}

type Synchronizer struct {
	crontab        Crontab
	marker         string // e.g. "# ChurchBell Alarm ID"
	playEntrypoint string // absolute path of the command cron invokes
}

func NewSynchronizer(crontab Crontab, marker, playEntrypoint string) *Synchronizer {
	return &Synchronizer{
		crontab:        crontab,
		marker:         marker,
		playEntrypoint: playEntrypoint,
	}
}

// Sync rebuilds the owned block of the crontab from the given enabled alarms.
// It is best-effort: any failure is logged and swallowed so a CRUD operation
// is never blocked by a crontab hiccup. Running it twice on an unchanged
// alarm set leaves the table byte-identical.
func (s *Synchronizer) Sync(alarms []models.Alarm) {
	existing, err := s.crontab.Read()
	if err != nil {
		log.Printf("⚠️ Cron sync: failed to read crontab: %v", err)
		syncFailures.Inc()
		return
	}

	kept := StripOwned(existing, s.marker)
	block := s.BuildBlock(alarms)

	newText := kept
	if block != "" {
		newText += block
	}

	if err := s.crontab.Write(newText); err != nil {
		log.Printf("⚠️ Cron sync: failed to write crontab: %v", err)
		syncFailures.Inc()
		return
	}
	syncRuns.Inc()
}

// StripOwned removes every marker line and the single job line following it,
// preserving all other lines verbatim including their order. The result ends
// with exactly one trailing newline.
func StripOwned(crontabText, marker string) string {
	lines := strings.Split(crontabText, "\n")
	var kept []string
	skipNext := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), marker) {
			skipNext = true
			continue
		}
		if skipNext {
			skipNext = false
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n")) + "\n"
}

// BuildBlock renders the marker+job pair for every enabled alarm, skipping
// rules whose time cannot be parsed (they never reach the store, but a
// garbage row must not corrupt the whole table).
func (s *Synchronizer) BuildBlock(alarms []models.Alarm) string {
	var b strings.Builder
	for _, alarm := range alarms {
		if !alarm.Enabled {
			continue
		}
		line, err := s.JobLine(alarm)
		if err != nil {
			log.Printf("⚠️ Cron sync: skipping alarm %d: %v", alarm.ID, err)
			continue
		}
		fmt.Fprintf(&b, "%s %d\n%s\n", s.marker, alarm.ID, line)
	}
	return b.String()
}

// JobLine encodes one alarm as a crontab entry:
//
//	{minute} {hour} * * {dow+1} {play_entrypoint} {sound_path}
//
// Cron numbers weekdays 1=Monday..7=Sunday while the store uses 0..6, hence
// the +1 shift. Minute and hour are emitted as bare integers.
func (s *Synchronizer) JobLine(alarm models.Alarm) (string, error) {
	hour, minute, err := splitTime(alarm.TimeStr)
	if err != nil {
		return "", err
	}
	cronDOW := alarm.DayOfWeek + 1
	return fmt.Sprintf("%d %d * * %d %s %s", minute, hour, cronDOW, s.playEntrypoint, alarm.SoundPath), nil
}

func splitTime(hhmm string) (hour, minute int, err error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed time %q", hhmm)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed hour in %q", hhmm)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed minute in %q", hhmm)
	}
	return hour, minute, nil
}
