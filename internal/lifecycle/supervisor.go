package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/simfleet-core/internal/simctl"
)

// defaultPollInterval is used when the supervisor is configured with a zero
// poll interval.
const defaultPollInterval = time.Second

// Supervisor creates and destroys actors on demand and is the only component
// that mutates the Registry.
//
// Its restart policy is one-for-one and deliberately non-resurrecting: an
// actor that exited abnormally (vanish, crash) is unregistered, and callers
// must re-acquire through StartActor with a freshly-listed descriptor —
// cached state from a dead actor is never trusted.
type Supervisor struct {
	control      simctl.Client
	registry     *Registry
	pollInterval time.Duration
	logger       Logger
	sink         EventSink

	// baseCtx parents every actor's run context so process shutdown stops
	// all actors.
	baseCtx context.Context
}

// SupervisorConfig holds construction options for a Supervisor.
type SupervisorConfig struct {
	// Control is the device control client. Required.
	Control simctl.Client

	// PollInterval is each actor's reconciliation interval.
	// Default: 1 second.
	PollInterval time.Duration

	// Logger receives supervisor and actor logs. Optional.
	Logger Logger

	// Sink receives lifecycle events. Optional.
	Sink EventSink
}

// NewSupervisor creates a supervisor. The context parents every actor: when
// it is cancelled all actors stop.
func NewSupervisor(ctx context.Context, cfg SupervisorConfig) *Supervisor {
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	sink := cfg.Sink
	if sink == nil {
		sink = NoopSink{}
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Supervisor{
		control:      cfg.Control,
		registry:     NewRegistry(),
		pollInterval: interval,
		logger:       logger,
		sink:         sink,
		baseCtx:      ctx,
	}
}

// Registry exposes the identity map for read-side callers (API listing).
func (s *Supervisor) Registry() *Registry {
	return s.registry
}

// StartActor returns the live actor for the descriptor's identity, creating
// one if none exists. Start is idempotent: concurrent callers for the same
// identity all receive a handle to the single registered actor.
func (s *Supervisor) StartActor(desc simctl.Device) (*Actor, error) {
	if desc.UDID == "" {
		return nil, fmt.Errorf("lifecycle: descriptor has empty identity")
	}

	// Fast path: an actor already holds the identity.
	if existing, ok := s.registry.Lookup(desc.UDID); ok {
		return existing, nil
	}

	a := newActor(desc, s.control, s.pollInterval, s.logger, s.sink)

	if err := s.registry.Register(desc.UDID, a); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			// Lost the race; the winner's actor serves everyone.
			if existing, ok := s.registry.Lookup(desc.UDID); ok {
				return existing, nil
			}
			// Winner terminated between insert and lookup: retry from scratch.
			return s.StartActor(desc)
		}
		return nil, err
	}

	a.start(s.baseCtx)
	go s.reap(a)

	s.logger.Info("actor registered",
		"udid", desc.UDID,
		"name", desc.Name,
		"state", desc.State,
	)
	return a, nil
}

// Resolve returns the live actor for a UDID, creating one from a fresh
// listing if the identity is currently untracked. Returns ErrNotFound when
// the external listing has no such device.
func (s *Supervisor) Resolve(ctx context.Context, udid string) (*Actor, error) {
	if a, ok := s.registry.Lookup(udid); ok {
		return a, nil
	}

	devices, err := s.control.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.UDID == udid {
			return s.StartActor(d)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, udid)
}

// StopActor shuts the device down and terminates its actor. The registry
// entry is removed even when the device shutdown call fails — cleanup is not
// skippable by a failing external call; the shutdown error is still
// returned so the caller sees the external failure.
func (s *Supervisor) StopActor(ctx context.Context, udid string) error {
	a, ok := s.registry.Lookup(udid)
	if !ok {
		return ErrNotFound
	}

	defer s.registry.unregisterActor(udid, a)

	err := a.Shutdown(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		// The device refused to shut down; the actor stays correct but the
		// caller asked for it to be gone, so cancel its loop outright.
		a.kill()
		return err
	}
	return nil
}

// ListActive returns a snapshot of every live actor's state.
func (s *Supervisor) ListActive() []Snapshot {
	actors := s.registry.Actors()
	out := make([]Snapshot, 0, len(actors))
	for _, a := range actors {
		out = append(out, a.Snapshot())
	}
	return out
}

// Screenshot routes a capture frame request through the target actor's
// serialized queue. The capture package depends on this method; it must
// never bypass the actor.
func (s *Supervisor) Screenshot(ctx context.Context, udid, path string) error {
	a, ok := s.registry.Lookup(udid)
	if !ok {
		return ErrNotFound
	}
	return a.Screenshot(ctx, path)
}

// reap waits for an actor to terminate, removes its registry entry, and
// emits the exit event. This is the one-for-one supervision hook: nothing
// is respawned here.
func (s *Supervisor) reap(a *Actor) {
	<-a.Done()

	reason, _ := a.Exited()
	s.registry.unregisterActor(a.UDID(), a)

	s.logger.Info("actor removed from registry",
		"udid", a.UDID(),
		"reason", reason,
	)
	s.sink.ActorExited(a.UDID(), reason)
}
