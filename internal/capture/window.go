package capture

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/nerrad567/simfleet-core/internal/simctl"
)

// CaptureWindow records the device window for a fixed duration with a single
// blocking recorder invocation. Unlike streaming sessions there is no frame
// loop and no in-flight tolerance: the recorder either produces the file or
// the call fails.
func (m *Manager) CaptureWindow(ctx context.Context, udid, dest string, duration time.Duration) error {
	if m.cfg.WindowBinary == "" {
		return fmt.Errorf("window capture binary not configured")
	}

	seconds := int(duration.Seconds())
	if seconds <= 0 {
		seconds = 1
	}

	m.logger.Info("window capture starting",
		"udid", udid, "dest", dest, "duration", duration)

	cmd := exec.CommandContext(ctx, m.cfg.WindowBinary, //nolint:gosec // Binary path comes from validated config
		udid, dest, strconv.Itoa(seconds))
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &simctl.CommandError{
				Op:       "window-capture",
				UDID:     udid,
				ExitCode: exitErr.ExitCode(),
				Output:   string(output),
			}
		}
		return fmt.Errorf("window capture: %w", err)
	}

	m.logger.Info("window capture finished", "udid", udid, "dest", dest)
	return nil
}
