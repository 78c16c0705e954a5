package lifecycle

import (
	"time"

	"github.com/nerrad567/simfleet-core/internal/simctl"
)

// Transition sources recorded with each state change.
const (
	// SourceCommand marks a transition caused by a caller-issued operation.
	SourceCommand = "command"

	// SourceReconcile marks an externally-driven transition detected by the
	// reconciliation poll.
	SourceReconcile = "reconcile"
)

// ExitReason describes why an actor terminated.
type ExitReason string

const (
	// ExitGraceful: a caller-issued shutdown succeeded.
	ExitGraceful ExitReason = "graceful"

	// ExitVanished: the reconciliation poll found the device missing from
	// the external listing.
	ExitVanished ExitReason = "vanished"

	// ExitCrashed: the actor goroutine panicked.
	ExitCrashed ExitReason = "crashed"

	// ExitStopped: the actor's context was cancelled (supervisor stop or
	// process shutdown).
	ExitStopped ExitReason = "stopped"
)

// EventSink receives lifecycle events. Implementations must not block;
// they are called from actor goroutines between serialized operations.
type EventSink interface {
	// DeviceStateChanged fires on every cached-state transition, whether
	// command-driven or reconciliation-driven.
	DeviceStateChanged(udid string, from, to simctl.DeviceState, source string)

	// ActorExited fires once per actor after its registry entry is removed.
	ActorExited(udid string, reason ExitReason)

	// PollCompleted fires after each successful reconciliation poll with the
	// time the external listing took.
	PollCompleted(udid string, duration time.Duration)
}

// NoopSink is an EventSink that discards everything.
type NoopSink struct{}

func (NoopSink) DeviceStateChanged(string, simctl.DeviceState, simctl.DeviceState, string) {}
func (NoopSink) ActorExited(string, ExitReason)                                            {}
func (NoopSink) PollCompleted(string, time.Duration)                                       {}

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
