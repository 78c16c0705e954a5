package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/simfleet-core/internal/simctl"
)

// requestQueueSize bounds the number of operations waiting on one actor.
// Senders block (with their own context) once the queue is full.
const requestQueueSize = 16

// Snapshot is a read-only copy of an actor's state, safe to hand to callers.
type Snapshot struct {
	UDID       string             `json:"udid"`
	Name       string             `json:"name"`
	DeviceType string             `json:"device_type"`
	Runtime    string             `json:"runtime"`
	State      simctl.DeviceState `json:"state"`
	StartedAt  time.Time          `json:"started_at"`
}

// request is one serialized unit of work. resp may be nil for fire-and-forget
// internal work (the reconciliation poll).
type request struct {
	fn   func(ctx context.Context) error
	resp chan error
}

// Actor is the exclusive serialized controller for one simulator device.
//
// All interaction with the device flows through the actor's request queue;
// the single run goroutine is the only writer of cached state. Create actors
// through the Supervisor, never directly, so the registry invariant holds.
type Actor struct {
	udid       string
	name       string
	deviceType string
	runtime    string

	control      simctl.Client
	pollInterval time.Duration
	logger       Logger
	sink         EventSink

	requests chan request
	done     chan struct{}
	cancel   context.CancelFunc

	mu         sync.RWMutex
	state      simctl.DeviceState
	startedAt  time.Time
	exitReason ExitReason
}

// newActor builds an actor from a freshly-listed descriptor. The actor is
// inert until start is called.
func newActor(desc simctl.Device, control simctl.Client, pollInterval time.Duration, logger Logger, sink EventSink) *Actor {
	if logger == nil {
		logger = noopLogger{}
	}
	if sink == nil {
		sink = NoopSink{}
	}
	return &Actor{
		udid:         desc.UDID,
		name:         desc.Name,
		deviceType:   desc.DeviceType,
		runtime:      desc.Runtime,
		control:      control,
		pollInterval: pollInterval,
		logger:       logger,
		sink:         sink,
		requests:     make(chan request, requestQueueSize),
		done:         make(chan struct{}),
		state:        desc.State,
	}
}

// start launches the run loop and the reconciliation poll.
func (a *Actor) start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.mu.Lock()
	a.startedAt = time.Now()
	a.mu.Unlock()

	go a.run(runCtx)
	go a.pollLoop(runCtx)
}

// kill cancels the actor's context. The run loop exits after the operation
// in flight (if any) completes; queued operations fail with ErrNotFound.
func (a *Actor) kill() {
	if a.cancel != nil {
		a.cancel()
	}
}

// run is the actor's single serialized execution loop.
func (a *Actor) run(ctx context.Context) {
	defer close(a.done)
	defer a.cancel()
	defer func() {
		if r := recover(); r != nil {
			a.setExit(ExitCrashed)
			a.logger.Error("actor panicked",
				"udid", a.udid,
				"panic", r,
			)
		}
	}()

	a.logger.Info("actor started",
		"udid", a.udid,
		"name", a.name,
		"state", a.State(),
	)

	for {
		select {
		case <-ctx.Done():
			a.setExit(ExitStopped)
			return
		case req := <-a.requests:
			err := req.fn(ctx)
			if req.resp != nil {
				req.resp <- err
			}
			if a.exiting() {
				return
			}
		}
	}
}

// pollLoop enqueues a reconciliation request every poll interval. The
// request goes through the regular queue so it respects serialization; if
// the queue is full the tick is skipped and the next one retries.
func (a *Actor) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.done:
			return
		case <-ticker.C:
			select {
			case a.requests <- request{fn: a.reconcile}:
			default:
				// Queue busy with foreground work; detection of external
				// changes is delayed until the next tick.
			}
		}
	}
}

// perform enqueues fn and waits for its result. The caller's context bounds
// only the wait for a queue slot: once dispatched, an operation runs to
// completion even if the caller goes away.
func (a *Actor) perform(ctx context.Context, fn func(ctx context.Context) error) error {
	req := request{fn: fn, resp: make(chan error, 1)}

	select {
	case a.requests <- req:
	case <-a.done:
		return ErrNotFound
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.resp:
		return err
	case <-a.done:
		// The final operation's response is buffered before done closes;
		// drain it if present, otherwise the request was never executed.
		select {
		case err := <-req.resp:
			return err
		default:
			return ErrNotFound
		}
	}
}

// UDID returns the actor's device identity.
func (a *Actor) UDID() string {
	return a.udid
}

// State returns the cached device state without touching the queue.
func (a *Actor) State() simctl.DeviceState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Snapshot returns a copy of the actor's state. It never blocks on an
// external call.
func (a *Actor) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Snapshot{
		UDID:       a.udid,
		Name:       a.name,
		DeviceType: a.deviceType,
		Runtime:    a.runtime,
		State:      a.state,
		StartedAt:  a.startedAt,
	}
}

// Done returns a channel closed when the actor has terminated.
func (a *Actor) Done() <-chan struct{} {
	return a.done
}

// Exited reports whether the actor has terminated, and why.
func (a *Actor) Exited() (ExitReason, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.exitReason, a.exitReason != ""
}

func (a *Actor) setState(s simctl.DeviceState) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

func (a *Actor) setExit(reason ExitReason) {
	a.mu.Lock()
	if a.exitReason == "" {
		a.exitReason = reason
	}
	a.mu.Unlock()
}

func (a *Actor) exiting() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.exitReason != ""
}

// Boot boots the device. Booting an already-booted device is a no-op
// success; a control failure is returned unchanged with state untouched.
func (a *Actor) Boot(ctx context.Context) error {
	return a.perform(ctx, func(ctx context.Context) error {
		from := a.State()
		if from == simctl.StateBooted {
			return nil
		}
		if err := a.control.Boot(ctx, a.udid); err != nil {
			return err
		}
		a.setState(simctl.StateBooted)
		a.sink.DeviceStateChanged(a.udid, from, simctl.StateBooted, SourceCommand)
		return nil
	})
}

// Shutdown shuts the device down. On success the actor terminates (graceful
// exit) and the caller still receives nil; on failure the actor stays alive
// and the control error is returned unchanged.
func (a *Actor) Shutdown(ctx context.Context) error {
	return a.perform(ctx, func(ctx context.Context) error {
		if err := a.control.Shutdown(ctx, a.udid); err != nil {
			return err
		}
		from := a.State()
		a.setState(simctl.StateShutdown)
		if from != simctl.StateShutdown {
			a.sink.DeviceStateChanged(a.udid, from, simctl.StateShutdown, SourceCommand)
		}
		a.setExit(ExitGraceful)
		a.logger.Info("actor exiting after shutdown", "udid", a.udid)
		return nil
	})
}

// Install installs an app bundle; the control result passes through verbatim.
func (a *Actor) Install(ctx context.Context, path string) error {
	return a.perform(ctx, func(ctx context.Context) error {
		return a.control.Install(ctx, a.udid, path)
	})
}

// Launch starts an installed app; the control result passes through verbatim.
func (a *Actor) Launch(ctx context.Context, bundleID string, args []string) error {
	return a.perform(ctx, func(ctx context.Context) error {
		return a.control.Launch(ctx, a.udid, bundleID, args)
	})
}

// Tap simulates a touch; the control result passes through verbatim.
func (a *Actor) Tap(ctx context.Context, x, y int) error {
	return a.perform(ctx, func(ctx context.Context) error {
		return a.control.Tap(ctx, a.udid, x, y)
	})
}

// TypeText types text; the control result passes through verbatim.
func (a *Actor) TypeText(ctx context.Context, text string) error {
	return a.perform(ctx, func(ctx context.Context) error {
		return a.control.TypeText(ctx, a.udid, text)
	})
}

// Screenshot captures the screen to path; the control result passes through
// verbatim. Capture sessions call this like any other operation, so frame
// cadence shares the queue with foreground work — that coupling is the
// serialization contract, not an accident.
func (a *Actor) Screenshot(ctx context.Context, path string) error {
	return a.perform(ctx, func(ctx context.Context) error {
		return a.control.Screenshot(ctx, a.udid, path)
	})
}

// reconcile re-queries the external listing and converges cached state.
// Runs inside the serialized loop like any other operation.
func (a *Actor) reconcile(ctx context.Context) error {
	start := time.Now()

	devices, err := a.control.List(ctx)
	if err != nil {
		// Transient listing failure: keep the cached state and let the next
		// tick retry.
		a.logger.Warn("reconcile listing failed", "udid", a.udid, "error", err)
		return nil
	}

	for _, d := range devices {
		if d.UDID != a.udid {
			continue
		}
		from := a.State()
		if d.State != from {
			a.setState(d.State)
			a.logger.Info("external state change detected",
				"udid", a.udid,
				"from", from,
				"to", d.State,
			)
			a.sink.DeviceStateChanged(a.udid, from, d.State, SourceReconcile)
		}
		a.sink.PollCompleted(a.udid, time.Since(start))
		return nil
	}

	// Device no longer exists externally: terminal "vanished" exit.
	a.setExit(ExitVanished)
	a.logger.Warn("device vanished from listing, terminating actor", "udid", a.udid)
	return nil
}
