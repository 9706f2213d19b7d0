package player

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupPlayer(t *testing.T, script string) *Player {
	t.Helper()
	dir := t.TempDir()

	// Stand-in for pw-play so tests need no audio stack
	bin := filepath.Join(dir, "fake-play")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"+script+"\n"), 0755); err != nil {
		t.Fatalf("write fake player: %v", err)
	}

	sounds := filepath.Join(dir, "sounds")
	os.MkdirAll(sounds, 0755)
	os.WriteFile(filepath.Join(sounds, "chime.wav"), []byte("RIFF"), 0644)

	p := New(sounds, bin, "", "Master", 10)
	return p
}

func TestResolveNotFound(t *testing.T) {
	p := setupPlayer(t, "exit 0")

	_, err := p.Resolve("missing.wav")
	if !errors.Is(err, ErrSoundNotFound) {
		t.Errorf("Resolve(missing) = %v, want ErrSoundNotFound", err)
	}
}

func TestResolveStripsSoundsPrefix(t *testing.T) {
	p := setupPlayer(t, "exit 0")

	// Stored references carry the legacy "sounds/" prefix
	got, err := p.Resolve("sounds/chime.wav")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if filepath.Base(got) != "chime.wav" {
		t.Errorf("resolved %q", got)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	p := setupPlayer(t, "exit 0")

	if path, err := p.Resolve("../fake-play"); err == nil {
		t.Errorf("traversal resolved to %q", path)
	}
}

func TestPlaySuccess(t *testing.T) {
	p := setupPlayer(t, "exit 0")

	if err := p.Play("chime.wav", 70); err != nil {
		t.Errorf("play = %v, want nil", err)
	}
}

func TestPlayFailureCarriesDiagnostics(t *testing.T) {
	p := setupPlayer(t, `echo "no audio device" 1>&2; exit 2`)

	err := p.Play("chime.wav", 70)

	var pe *PlaybackError
	if !errors.As(err, &pe) {
		t.Fatalf("play = %v, want PlaybackError", err)
	}
	if !strings.Contains(pe.Detail, "no audio device") {
		t.Errorf("detail %q lacks backend stderr", pe.Detail)
	}
}

func TestPlayTimeout(t *testing.T) {
	p := setupPlayer(t, "sleep 5")
	p.Timeout = 200 * time.Millisecond

	err := p.Play("chime.wav", 70)

	var pe *PlaybackError
	if !errors.As(err, &pe) {
		t.Fatalf("play = %v, want PlaybackError", err)
	}
	if !strings.Contains(pe.Detail, "timed out") {
		t.Errorf("detail %q, want timeout", pe.Detail)
	}
}
