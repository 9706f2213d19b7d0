package backup

import (
	"fmt"
	"os/exec"
	"strings"
)

// ServiceController pauses and resumes the process that fires alarms, so a
// restore is never observed half-applied by a firing check.
type ServiceController interface {
	Stop(unit string) error
	Start(unit string) error
}

// SystemdController drives systemctl. The appliance runs the scheduler as a
// user-level unit.
type SystemdController struct{}

func (SystemdController) Stop(unit string) error {
	return runSystemctl("stop", unit)
}

func (SystemdController) Start(unit string) error {
	return runSystemctl("start", unit)
}

func runSystemctl(verb, unit string) error {
	out, err := exec.Command("systemctl", verb, unit).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s %s: %v (%s)", verb, unit, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// NopController is used when no dependent service is configured (loop mode
// running in the same process pauses nothing at the unit level).
type NopController struct{}

func (NopController) Stop(string) error  { return nil }
func (NopController) Start(string) error { return nil }
