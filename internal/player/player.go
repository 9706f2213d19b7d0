// Package player shells out to the PipeWire playback binary. aplay (ALSA) is
// not supported on the Pi 3 builds this targets.
package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strings"
	"time"
)

var ErrSoundNotFound = errors.New("sound file not found")

// PlaybackError carries the backend's diagnostic output. Playback failures
// are surfaced as values, never panics — a bad speaker cable must not kill
// the scheduler.
type PlaybackError struct {
	Command string
	Detail  string
	Err     error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback failed (%s): %s", e.Command, e.Detail)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

type Player struct {
	SoundsDir    string
	PlayerBin    string // pw-play
	MixerBin     string // amixer
	MixerControl string // Master
	Timeout      time.Duration
}

func New(soundsDir, playerBin, mixerBin, mixerControl string, timeoutSeconds int) *Player {
	return &Player{
		SoundsDir:    soundsDir,
		PlayerBin:    playerBin,
		MixerBin:     mixerBin,
		MixerControl: mixerControl,
		Timeout:      time.Duration(timeoutSeconds) * time.Second,
	}
}

// Resolve maps a sound reference to an absolute path under the sounds
// directory, rejecting traversal outside it.
func (p *Player) Resolve(soundRef string) (string, error) {
	name := filepath.Clean("/" + strings.TrimPrefix(soundRef, "sounds/"))
	full := filepath.Join(p.SoundsDir, name)
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("%w: %s", ErrSoundNotFound, abs)
	}
	return abs, nil
}

// Play resolves the reference, applies the volume, and runs the playback
// backend with a bounded timeout. The subprocess gets an explicit audio
// session environment because the caller may be a system service running
// under a different identity than the desktop session that owns PipeWire.
func (p *Player) Play(soundRef string, volume int) error {
	full, err := p.Resolve(soundRef)
	if err != nil {
		return err
	}

	p.ApplyVolume(volume)

	ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.PlayerBin, full)
	cmd.Env = sessionEnv()

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	cmdLine := p.PlayerBin + " " + full

	if ctx.Err() == context.DeadlineExceeded {
		return &PlaybackError{
			Command: cmdLine,
			Detail:  fmt.Sprintf("timed out after %s", p.Timeout),
			Err:     ctx.Err(),
		}
	}
	if err != nil {
		return &PlaybackError{
			Command: cmdLine,
			Detail:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}

	log.Printf("🔔 Sound played: %s", full)
	return nil
}

// ApplyVolume sets the master mixer level. Best-effort: a missing mixer must
// not stop the bell from ringing.
func (p *Player) ApplyVolume(volume int) {
	if p.MixerBin == "" {
		return
	}
	cmd := exec.Command(p.MixerBin, "sset", p.MixerControl, fmt.Sprintf("%d%%", volume))
	if err := cmd.Run(); err != nil {
		log.Printf("⚠️ Mixer volume set failed: %v", err)
	}
}

// sessionEnv builds the environment pw-play needs to find the user's
// PipeWire session: runtime dir, home and identity, supplied explicitly
// rather than inherited.
func sessionEnv() []string {
	env := os.Environ()
	uid := os.Getuid()
	env = append(env, fmt.Sprintf("XDG_RUNTIME_DIR=/run/user/%d", uid))
	if u, err := user.Current(); err == nil {
		env = append(env, "HOME="+u.HomeDir, "USER="+u.Username)
	}
	return env
}
