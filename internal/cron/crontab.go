package cron

import (
	"bytes"
	"os/exec"
	"strings"
)

// ExecCrontab talks to the real user crontab via the crontab binary, the same
// line protocol `crontab -l` / `crontab -` speak.
type ExecCrontab struct{}

func (ExecCrontab) Read() (string, error) {
	out, err := exec.Command("crontab", "-l").Output()
	if err != nil {
		// `crontab -l` exits non-zero when no crontab exists yet; treat that
		// as an empty table rather than a failure.
		if _, ok := err.(*exec.ExitError); ok {
			return "", nil
		}
		return "", err
	}
	return string(out), nil
}

func (ExecCrontab) Write(text string) error {
	cmd := exec.Command("crontab", "-")
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return &WriteError{Detail: strings.TrimSpace(stderr.String()), Err: err}
		}
		return err
	}
	return nil
}

type WriteError struct {
	Detail string
	Err    error
}

func (e *WriteError) Error() string {
	return "crontab rejected input: " + e.Detail
}

func (e *WriteError) Unwrap() error { return e.Err }
