package simctl

import (
	"errors"
	"fmt"
)

// ErrDeviceNotFound is returned when a UDID does not appear in the control
// tool's listing.
var ErrDeviceNotFound = errors.New("simctl: device not found")

// CommandError is returned when the control tool exits non-zero.
//
// The tool's combined output is carried verbatim so callers see the same
// failure detail an operator would see running the command by hand.
type CommandError struct {
	// Op is the operation that failed (e.g. "boot", "screenshot").
	Op string

	// UDID is the target device, if the operation had one.
	UDID string

	// ExitCode is the tool's exit code.
	ExitCode int

	// Output is the tool's combined stdout/stderr, trimmed.
	Output string
}

func (e *CommandError) Error() string {
	if e.UDID != "" {
		return fmt.Sprintf("simctl %s %s: exit %d: %s", e.Op, e.UDID, e.ExitCode, e.Output)
	}
	return fmt.Sprintf("simctl %s: exit %d: %s", e.Op, e.ExitCode, e.Output)
}
