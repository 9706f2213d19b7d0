// Package backup serializes the alarm table and sound assets to a single zip
// archive and restores them, pausing the dependent scheduler around restore.
package backup

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kd5jp/ChurchBell/internal/models"
	"github.com/kd5jp/ChurchBell/internal/storage"
	"github.com/kd5jp/ChurchBell/internal/store"
)

const (
	alarmsDocument = "alarms.json"
	soundsPrefix   = "sounds/"
)

// AlarmRecord is the wire form of one alarm inside alarms.json. The id is
// exported for reference but never reused on import.
type AlarmRecord struct {
	ID          uint    `json:"id"`
	DayOfWeek   int     `json:"day_of_week"`
	TimeStr     string  `json:"time_str"`
	SoundPath   string  `json:"sound_path"`
	Enabled     bool    `json:"enabled"`
	LastRunDate *string `json:"last_run_date"`
}

type Manager struct {
	Alarms    *store.AlarmStore
	SoundsDir string
	BackupDir string
	Unit      string
	Service   ServiceController
	Offsite   *storage.Client // nil when no mirror is configured
}

func NewManager(alarms *store.AlarmStore, soundsDir, backupDir, unit string, service ServiceController, offsite *storage.Client) *Manager {
	return &Manager{
		Alarms:    alarms,
		SoundsDir: soundsDir,
		BackupDir: backupDir,
		Unit:      unit,
		Service:   service,
		Offsite:   offsite,
	}
}

// Export writes a timestamped archive with alarms.json and every file under
// the sounds directory, and returns its path. The archive is mirrored
// offsite best-effort when a provider is configured.
func (m *Manager) Export() (string, error) {
	alarms, err := m.Alarms.List()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(m.BackupDir, 0755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("churchbell-backup-%s.zip", time.Now().Format("20060102-150405"))
	path := filepath.Join(m.BackupDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	doc, err := zw.Create(alarmsDocument)
	if err != nil {
		return "", err
	}
	if err := json.NewEncoder(doc).Encode(toRecords(alarms)); err != nil {
		return "", err
	}

	if err := m.addSounds(zw); err != nil {
		return "", err
	}

	if err := zw.Close(); err != nil {
		return "", err
	}

	m.mirror(path, name)

	log.Printf("💾 Backup written: %s", path)
	return path, nil
}

func (m *Manager) addSounds(zw *zip.Writer) error {
	return filepath.Walk(m.SoundsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil // no sounds dir yet, nothing to package
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(m.SoundsDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(soundsPrefix + filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
}

// ListOffsite names the archives held by the offsite mirror. A nil client
// means no mirror and no names.
func (m *Manager) ListOffsite() ([]string, error) {
	if m.Offsite == nil {
		return nil, nil
	}
	return m.Offsite.ListArchives()
}

// Fetch resolves an archive name to a local path, pulling the file from the
// offsite mirror when it is not in the backup directory.
func (m *Manager) Fetch(name string) (string, error) {
	path := filepath.Join(m.BackupDir, name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if m.Offsite == nil {
		return "", fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}

	obj, err := m.Offsite.DownloadArchive(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	defer obj.Body.Close()

	if err := os.MkdirAll(m.BackupDir, 0755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, obj.Body); err != nil {
		return "", err
	}

	log.Printf("☁️ Backup fetched from offsite mirror: %s", name)
	return path, nil
}

func (m *Manager) mirror(path, name string) {
	if m.Offsite == nil {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		log.Printf("⚠️ Offsite mirror: cannot reopen archive: %v", err)
		return
	}
	defer f.Close()
	if err := m.Offsite.UploadArchive(name, f); err != nil {
		log.Printf("⚠️ Offsite mirror failed: %v", err)
		return
	}
	log.Printf("☁️ Backup mirrored offsite: %s", name)
}

// Import restores an archive: the alarm table is replaced wholesale (fresh
// ids) when the archive carries alarms.json, and every packaged sound asset
// is extracted over the sounds directory. The dependent service is stopped
// first and restarted unconditionally, even when the restore fails partway.
func (m *Manager) Import(archivePath string) (err error) {
	if _, statErr := os.Stat(archivePath); statErr != nil {
		return fmt.Errorf("%w: %s", store.ErrNotFound, archivePath)
	}

	if stopErr := m.Service.Stop(m.Unit); stopErr != nil {
		log.Printf("⚠️ Could not pause %s before restore: %v", m.Unit, stopErr)
	}
	defer func() {
		if startErr := m.Service.Start(m.Unit); startErr != nil {
			log.Printf("⚠️ Could not resume %s after restore: %v", m.Unit, startErr)
			if err == nil {
				err = startErr
			}
		}
	}()

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, entry := range r.File {
		switch {
		case entry.Name == alarmsDocument:
			if err := m.restoreAlarms(entry); err != nil {
				return err
			}
		case strings.HasPrefix(entry.Name, soundsPrefix):
			if err := m.extractSound(entry); err != nil {
				return err
			}
		}
	}

	log.Printf("💾 Backup restored from %s", archivePath)
	return nil
}

func (m *Manager) restoreAlarms(entry *zip.File) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	var records []AlarmRecord
	if err := json.NewDecoder(rc).Decode(&records); err != nil {
		return fmt.Errorf("malformed %s: %w", alarmsDocument, err)
	}

	alarms := make([]models.Alarm, 0, len(records))
	for _, rec := range records {
		alarm := models.Alarm{
			DayOfWeek: rec.DayOfWeek,
			TimeStr:   rec.TimeStr,
			SoundPath: rec.SoundPath,
			Enabled:   rec.Enabled,
		}
		if rec.LastRunDate != nil {
			alarm.LastRunDate = *rec.LastRunDate
		}
		alarms = append(alarms, alarm)
	}

	return m.Alarms.ReplaceAll(alarms)
}

func (m *Manager) extractSound(entry *zip.File) error {
	if entry.FileInfo().IsDir() {
		return nil
	}
	rel := strings.TrimPrefix(entry.Name, soundsPrefix)
	// zip entries are attacker-controlled paths; keep them inside the dir
	if rel == "" || strings.Contains(rel, "..") {
		return fmt.Errorf("refusing archive entry %q", entry.Name)
	}

	dest := filepath.Join(m.SoundsDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.Create(dest) // overwrite on name collision
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, rc)
	return err
}

func toRecords(alarms []models.Alarm) []AlarmRecord {
	records := make([]AlarmRecord, 0, len(alarms))
	for _, a := range alarms {
		rec := AlarmRecord{
			ID:        a.ID,
			DayOfWeek: a.DayOfWeek,
			TimeStr:   a.TimeStr,
			SoundPath: a.SoundPath,
			Enabled:   a.Enabled,
		}
		if a.LastRunDate != "" {
			d := a.LastRunDate
			rec.LastRunDate = &d
		}
		records = append(records, rec)
	}
	return records
}
