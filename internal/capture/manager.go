package capture

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/simfleet-core/internal/process"
)

// EventSink receives capture session notifications. Wired to MQTT and the
// WebSocket hub when those are configured.
type EventSink interface {
	CaptureStarted(info SessionInfo)
	CaptureStopped(info SessionInfo)
}

// NoopSink discards all events.
type NoopSink struct{}

func (NoopSink) CaptureStarted(SessionInfo) {}
func (NoopSink) CaptureStopped(SessionInfo) {}

// Config holds capture pipeline settings.
type Config struct {
	// EncoderBinary is the path to the encoder executable (ffmpeg).
	EncoderBinary string

	// WindowBinary is the external recorder used for window capture.
	WindowBinary string

	// FrameDir is the directory for transient frame files.
	FrameDir string

	// DefaultFPS is used when a session requests fps <= 0.
	DefaultFPS int

	// StopTimeout bounds graceful encoder shutdown before SIGKILL.
	StopTimeout time.Duration
}

// Manager owns the active capture sessions.
type Manager struct {
	cfg     Config
	source  FrameSource
	baseCtx context.Context
	logger  Logger
	metrics Metrics
	sink    EventSink

	// newEncoder is swappable in tests.
	newEncoder func(name, dest string, fps int) encoder

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a capture manager. Sessions derive their lifetime from
// ctx: cancelling it ends every session.
func NewManager(ctx context.Context, cfg Config, source FrameSource) *Manager {
	if cfg.DefaultFPS <= 0 {
		cfg.DefaultFPS = 30
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 5 * time.Second
	}
	m := &Manager{
		cfg:      cfg,
		source:   source,
		baseCtx:  ctx,
		logger:   noopLogger{},
		metrics:  NoopMetrics{},
		sink:     NoopSink{},
		sessions: make(map[string]*Session),
	}
	m.newEncoder = m.spawnEncoder
	return m
}

// SetLogger sets the logger for the manager and its sessions.
func (m *Manager) SetLogger(logger Logger) { m.logger = logger }

// SetMetrics sets the per-frame metrics receiver.
func (m *Manager) SetMetrics(metrics Metrics) { m.metrics = metrics }

// SetSink sets the session event sink.
func (m *Manager) SetSink(sink EventSink) { m.sink = sink }

func (m *Manager) spawnEncoder(name, dest string, fps int) encoder {
	enc := process.NewManager(process.Config{
		Name:   name,
		Binary: m.cfg.EncoderBinary,
		Args: []string{
			"-hide_banner", "-loglevel", "error", "-y",
			"-f", "image2pipe",
			"-framerate", strconv.Itoa(fps),
			"-i", "-",
			"-c:v", "libx264",
			"-preset", "veryfast",
			"-pix_fmt", "yuv420p",
			dest,
		},
		GracefulTimeout: m.cfg.StopTimeout,
		StdinPipe:       true,
	})
	enc.SetLogger(m.logger)
	return enc
}

// Start launches a capture session for the device: encoder subprocess first,
// then the frame loop. maxDuration of zero means run until stopped. fps <= 0
// falls back to the configured default.
func (m *Manager) Start(ctx context.Context, udid, dest string, fps int, maxDuration time.Duration) (*Session, error) {
	if fps <= 0 {
		fps = m.cfg.DefaultFPS
	}
	if err := os.MkdirAll(m.cfg.FrameDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating frame dir: %w", err)
	}

	id := uuid.New().String()
	enc := m.newEncoder("encoder-"+id[:8], dest, fps)

	sctx, cancel := context.WithCancel(m.baseCtx)
	if err := enc.Start(sctx); err != nil {
		cancel()
		return nil, fmt.Errorf("starting encoder: %w", err)
	}

	sess := &Session{
		id:          id,
		udid:        udid,
		dest:        dest,
		fps:         fps,
		maxDuration: maxDuration,
		startedAt:   time.Now(),
		source:      m.source,
		enc:         enc,
		frameDir:    m.cfg.FrameDir,
		logger:      m.logger,
		metrics:     m.metrics,
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	go sess.run(sctx)
	go m.reap(sess)

	m.logger.Info("capture session started",
		"session", id, "udid", udid, "dest", dest, "fps", fps)
	m.sink.CaptureStarted(sess.Info())

	return sess, nil
}

// reap waits for the session loop to finish, makes sure the encoder is dead,
// and removes the session from the active set.
func (m *Manager) reap(sess *Session) {
	<-sess.done
	//nolint:errcheck // Stop logs its own failures
	sess.Stop()
	m.remove(sess)

	info := sess.Info()
	m.logger.Info("capture session ended",
		"session", sess.id, "udid", sess.udid,
		"frames", info.Frames, "dropped", info.Dropped)
	m.sink.CaptureStopped(info)
}

func (m *Manager) remove(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[sess.id] == sess {
		delete(m.sessions, sess.id)
	}
}

// Get returns the active session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Stop ends the session with the given ID and waits for its encoder to die.
func (m *Manager) Stop(id string) error {
	sess, err := m.Get(id)
	if err != nil {
		return err
	}
	err = sess.Stop()
	m.remove(sess)
	return err
}

// StopAll ends every active session. Used during service shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	active := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		active = append(active, sess)
	}
	m.mu.Unlock()

	for _, sess := range active {
		if err := sess.Stop(); err != nil {
			m.logger.Warn("stopping session", "session", sess.id, "error", err)
		}
		m.remove(sess)
	}
}

// List returns snapshots of all active sessions.
func (m *Manager) List() []SessionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SessionInfo, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess.Info())
	}
	return out
}
