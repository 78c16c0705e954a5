package capture

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FrameSource produces device screenshots. The lifecycle supervisor
// implements it; every capture goes through the device's actor queue like
// any other operation.
type FrameSource interface {
	Screenshot(ctx context.Context, udid, path string) error
}

// encoder abstracts the encoder subprocess. Satisfied by process.Manager.
type encoder interface {
	Start(ctx context.Context) error
	Stdin() io.WriteCloser
	Stop() error
	Done() <-chan struct{}
	Err() error
}

// Logger defines the logging interface for the capture pipeline.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Metrics receives per-frame timing. Wired to the telemetry store when one
// is configured.
type Metrics interface {
	FrameCaptured(udid string, latency time.Duration, dropped bool)
}

// NoopMetrics discards all measurements.
type NoopMetrics struct{}

func (NoopMetrics) FrameCaptured(string, time.Duration, bool) {}

// SessionInfo is a point-in-time snapshot of a capture session.
type SessionInfo struct {
	ID        string    `json:"id"`
	UDID      string    `json:"udid"`
	Dest      string    `json:"dest"`
	FPS       int       `json:"fps"`
	StartedAt time.Time `json:"started_at"`
	Frames    int       `json:"frames"`
	Dropped   int       `json:"dropped"`
	Active    bool      `json:"active"`
	Error     string    `json:"error,omitempty"`
}

// Session is one running capture: an encoder subprocess plus the frame loop
// feeding it.
type Session struct {
	id          string
	udid        string
	dest        string
	fps         int
	maxDuration time.Duration
	startedAt   time.Time

	source   FrameSource
	enc      encoder
	frameDir string
	logger   Logger
	metrics  Metrics

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	frames  int
	dropped int
	err     error
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// UDID returns the identity of the captured device.
func (s *Session) UDID() string { return s.udid }

// Done returns a channel closed when the frame loop has finished.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the error that ended the session, or nil for a clean stop.
// Frame failures are never recorded here; only encoder death is.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Info returns a snapshot of the session for status surfaces.
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := SessionInfo{
		ID:        s.id,
		UDID:      s.udid,
		Dest:      s.dest,
		FPS:       s.fps,
		StartedAt: s.startedAt,
		Frames:    s.frames,
		Dropped:   s.dropped,
	}
	select {
	case <-s.done:
	default:
		info.Active = true
	}
	if s.err != nil {
		info.Error = s.err.Error()
	}
	return info
}

// Stop ends the frame loop and kills the encoder subprocess. It blocks until
// both are finished and returns the session error, if any. Safe to call more
// than once.
func (s *Session) Stop() error {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.done
		if err := s.enc.Stop(); err != nil {
			s.logger.Warn("stopping encoder", "session", s.id, "error", err)
		}
	})
	return s.Err()
}

// run is the frame loop. It owns the session until the context is cancelled,
// the configured duration elapses, or the encoder exits.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	interval := time.Second / time.Duration(s.fps)

	var deadline <-chan time.Time
	if s.maxDuration > 0 {
		timer := time.NewTimer(s.maxDuration)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.enc.Done():
			s.setErr(fmt.Errorf("%w: %v", ErrEncoderExited, s.enc.Err()))
			s.logger.Warn("encoder exited, ending session",
				"session", s.id, "udid", s.udid, "error", s.enc.Err())
			return
		case <-deadline:
			s.logger.Info("capture duration reached",
				"session", s.id, "udid", s.udid, "duration", s.maxDuration)
			return
		default:
		}

		start := time.Now()
		err := s.captureFrame(ctx)
		elapsed := time.Since(start)

		s.mu.Lock()
		if err != nil {
			s.dropped++
		} else {
			s.frames++
		}
		s.mu.Unlock()
		s.metrics.FrameCaptured(s.udid, elapsed, err != nil)

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("frame failed",
				"session", s.id, "udid", s.udid, "error", err)
		}

		if sleep := interval - elapsed; sleep > 0 {
			select {
			case <-ctx.Done():
				return
			case <-s.enc.Done():
				s.setErr(fmt.Errorf("%w: %v", ErrEncoderExited, s.enc.Err()))
				return
			case <-deadline:
				return
			case <-time.After(sleep):
			}
		}
	}
}

// captureFrame takes one screenshot, feeds it to the encoder and removes the
// transient file. A screenshot that cannot be read back is left on disk.
func (s *Session) captureFrame(ctx context.Context) error {
	framePath := filepath.Join(s.frameDir, uuid.New().String()+".png")

	if err := s.source.Screenshot(ctx, s.udid, framePath); err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}

	data, err := os.ReadFile(framePath) //nolint:gosec // Path built from config dir and a fresh UUID
	if err != nil {
		return fmt.Errorf("reading frame: %w", err)
	}

	stdin := s.enc.Stdin()
	if stdin == nil {
		return fmt.Errorf("encoder stdin unavailable")
	}
	_, writeErr := stdin.Write(data)

	if err := os.Remove(framePath); err != nil {
		s.logger.Warn("removing frame file", "path", framePath, "error", err)
	}

	if writeErr != nil {
		return fmt.Errorf("writing frame to encoder: %w", writeErr)
	}
	return nil
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}
