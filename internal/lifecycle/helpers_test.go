package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/simfleet-core/internal/simctl"
)

// fakeControl is an in-memory simctl.Client. The device map is the "external
// ground truth" that tests mutate behind the actor's back.
type fakeControl struct {
	mu      sync.Mutex
	devices map[string]simctl.Device

	bootErr     error
	shutdownErr error
	opErr       error

	opDelay time.Duration

	// Concurrency tracking: active counts in-flight calls, maxActive records
	// the high-water mark. Serialization means maxActive never exceeds 1 for
	// a single identity.
	active    atomic.Int32
	maxActive atomic.Int32

	calls   []string
	callsMu sync.Mutex
}

func newFakeControl(devices ...simctl.Device) *fakeControl {
	m := make(map[string]simctl.Device, len(devices))
	for _, d := range devices {
		m[d.UDID] = d
	}
	return &fakeControl{devices: m}
}

func (f *fakeControl) setState(udid string, s simctl.DeviceState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.devices[udid]
	d.State = s
	f.devices[udid] = d
}

func (f *fakeControl) remove(udid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.devices, udid)
}

func (f *fakeControl) recordedCalls() []string {
	f.callsMu.Lock()
	defer f.callsMu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeControl) track(op string) func() {
	f.callsMu.Lock()
	f.calls = append(f.calls, op)
	f.callsMu.Unlock()

	n := f.active.Add(1)
	for {
		max := f.maxActive.Load()
		if n <= max || f.maxActive.CompareAndSwap(max, n) {
			break
		}
	}
	if f.opDelay > 0 {
		time.Sleep(f.opDelay)
	}
	return func() { f.active.Add(-1) }
}

func (f *fakeControl) List(_ context.Context) ([]simctl.Device, error) {
	defer f.track("list")()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]simctl.Device, 0, len(f.devices))
	for _, d := range f.devices {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeControl) Boot(_ context.Context, udid string) error {
	defer f.track("boot " + udid)()
	if f.bootErr != nil {
		return f.bootErr
	}
	f.setState(udid, simctl.StateBooted)
	return nil
}

func (f *fakeControl) Shutdown(_ context.Context, udid string) error {
	defer f.track("shutdown " + udid)()
	if f.shutdownErr != nil {
		return f.shutdownErr
	}
	f.setState(udid, simctl.StateShutdown)
	return nil
}

func (f *fakeControl) Install(_ context.Context, udid, _ string) error {
	defer f.track("install " + udid)()
	return f.opErr
}

func (f *fakeControl) Launch(_ context.Context, udid, _ string, _ []string) error {
	defer f.track("launch " + udid)()
	return f.opErr
}

func (f *fakeControl) Screenshot(_ context.Context, udid, _ string) error {
	defer f.track("screenshot " + udid)()
	return f.opErr
}

func (f *fakeControl) Tap(_ context.Context, udid string, _, _ int) error {
	defer f.track("tap " + udid)()
	return f.opErr
}

func (f *fakeControl) TypeText(_ context.Context, udid, _ string) error {
	defer f.track("type " + udid)()
	return f.opErr
}

// recordingSink captures lifecycle events for assertions.
type recordingSink struct {
	mu          sync.Mutex
	transitions []transition
	exits       []exit
	polls       int
}

type transition struct {
	udid   string
	from   simctl.DeviceState
	to     simctl.DeviceState
	source string
}

type exit struct {
	udid   string
	reason ExitReason
}

func (r *recordingSink) DeviceStateChanged(udid string, from, to simctl.DeviceState, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, transition{udid, from, to, source})
}

func (r *recordingSink) ActorExited(udid string, reason ExitReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exits = append(r.exits, exit{udid, reason})
}

func (r *recordingSink) PollCompleted(string, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls++
}

func (r *recordingSink) lastTransition() (transition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.transitions) == 0 {
		return transition{}, false
	}
	return r.transitions[len(r.transitions)-1], true
}

func (r *recordingSink) exitFor(udid string) (ExitReason, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.exits {
		if e.udid == udid {
			return e.reason, true
		}
	}
	return "", false
}

// waitFor polls cond until it returns true or the timeout elapses.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func shutdownDevice(udid string) simctl.Device {
	return simctl.Device{
		UDID:       udid,
		Name:       "iPhone 15",
		DeviceType: "iPhone15,2",
		Runtime:    "iOS 17.4",
		State:      simctl.StateShutdown,
	}
}
