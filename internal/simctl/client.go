package simctl

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Client is the device control surface consumed by the lifecycle and capture
// packages. All operations block until the underlying external call returns.
//
// Implementations must be safe for concurrent use; serialization per device
// is the caller's responsibility.
type Client interface {
	// List returns a snapshot of every known device.
	List(ctx context.Context) ([]Device, error)

	// Boot starts the device. Booting an already-booted device is an error
	// at this layer; idempotency lives in the lifecycle actor.
	Boot(ctx context.Context, udid string) error

	// Shutdown stops the device.
	Shutdown(ctx context.Context, udid string) error

	// Install installs an app bundle from path onto the device.
	Install(ctx context.Context, udid, path string) error

	// Launch starts an installed app by bundle identifier.
	Launch(ctx context.Context, udid, bundleID string, args []string) error

	// Screenshot writes a still image of the device screen to path.
	Screenshot(ctx context.Context, udid, path string) error

	// Tap simulates a touch at screen coordinates (x, y).
	Tap(ctx context.Context, udid string, x, y int) error

	// TypeText types text into the focused element on the device.
	TypeText(ctx context.Context, udid, text string) error
}

// Logger is the logging interface used by the CLI client.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// listColumns is the number of pipe-separated columns in a listing line:
// identity | name | state | kind | platformVersion
const listColumns = 5

// CLI is the Client implementation backed by the external control binary.
type CLI struct {
	binary  string
	timeout time.Duration
	logger  Logger
}

// NewCLI creates a CLI client for the given control binary.
// A zero timeout disables per-command timeouts.
func NewCLI(binary string, timeout time.Duration) *CLI {
	return &CLI{
		binary:  binary,
		timeout: timeout,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the client.
func (c *CLI) SetLogger(logger Logger) {
	c.logger = logger
}

// run executes one control command and returns its combined output.
// A non-zero exit becomes a *CommandError carrying the output verbatim.
func (c *CLI) run(ctx context.Context, op, udid string, args ...string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, c.binary, args...)
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))

	c.logger.Debug("control command finished",
		"op", op,
		"udid", udid,
		"duration", time.Since(start),
	)

	if err == nil {
		return output, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", &CommandError{
			Op:       op,
			UDID:     udid,
			ExitCode: exitErr.ExitCode(),
			Output:   output,
		}
	}

	// Binary missing, context cancelled, and similar non-exit failures.
	return "", fmt.Errorf("simctl %s: %w", op, err)
}

// List returns all devices reported by the control tool.
//
// The tool emits one device per line:
//
//	identity | name | state | kind | platformVersion
//
// Malformed lines are skipped with a warning rather than failing the whole
// listing; a partially-readable listing is more useful than none.
func (c *CLI) List(ctx context.Context) ([]Device, error) {
	out, err := c.run(ctx, "list", "", "list")
	if err != nil {
		return nil, err
	}

	var devices []Device
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		dev, ok := parseListLine(line)
		if !ok {
			c.logger.Warn("skipping malformed listing line", "line", line)
			continue
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

// parseListLine parses one pipe-separated listing line into a Device.
func parseListLine(line string) (Device, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != listColumns {
		return Device{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if parts[0] == "" {
		return Device{}, false
	}
	return Device{
		UDID:       parts[0],
		Name:       parts[1],
		State:      ParseDeviceState(parts[2]),
		DeviceType: parts[3],
		Runtime:    parts[4],
	}, true
}

// Find returns the listing entry for one UDID, or ErrDeviceNotFound.
func (c *CLI) Find(ctx context.Context, udid string) (Device, error) {
	devices, err := c.List(ctx)
	if err != nil {
		return Device{}, err
	}
	for _, d := range devices {
		if d.UDID == udid {
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, udid)
}

// Boot starts the device.
func (c *CLI) Boot(ctx context.Context, udid string) error {
	_, err := c.run(ctx, "boot", udid, "boot", udid)
	return err
}

// Shutdown stops the device.
func (c *CLI) Shutdown(ctx context.Context, udid string) error {
	_, err := c.run(ctx, "shutdown", udid, "shutdown", udid)
	return err
}

// Install installs an app bundle onto the device.
func (c *CLI) Install(ctx context.Context, udid, path string) error {
	_, err := c.run(ctx, "install", udid, "install", udid, path)
	return err
}

// Launch starts an installed app by bundle identifier.
func (c *CLI) Launch(ctx context.Context, udid, bundleID string, args []string) error {
	cmdArgs := append([]string{"launch", udid, bundleID}, args...)
	_, err := c.run(ctx, "launch", udid, cmdArgs...)
	return err
}

// Screenshot writes a still image of the device screen to path.
func (c *CLI) Screenshot(ctx context.Context, udid, path string) error {
	_, err := c.run(ctx, "screenshot", udid, "screenshot", udid, path)
	return err
}

// Tap simulates a touch at screen coordinates.
func (c *CLI) Tap(ctx context.Context, udid string, x, y int) error {
	_, err := c.run(ctx, "tap", udid, "tap", udid, fmt.Sprintf("%d", x), fmt.Sprintf("%d", y))
	return err
}

// TypeText types text into the focused element on the device.
func (c *CLI) TypeText(ctx context.Context, udid, text string) error {
	_, err := c.run(ctx, "type", udid, "type", udid, text)
	return err
}
