package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nerrad567/simfleet-core/internal/capture"
	"github.com/nerrad567/simfleet-core/internal/history"
	"github.com/nerrad567/simfleet-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/simfleet-core/internal/lifecycle"
	"github.com/nerrad567/simfleet-core/internal/simctl"
)

// recordTimeout bounds the history write triggered by a state transition.
// Events fire from actor goroutines that must not block on a slow disk.
const recordTimeout = 5 * time.Second

// WebSocket broadcast channels.
const (
	ChannelDeviceState  = "device.state_changed"
	ChannelDeviceExited = "device.exited"
	ChannelDevicePoll   = "device.poll"
	ChannelCaptureStart = "capture.started"
	ChannelCaptureStop  = "capture.stopped"
)

// Publisher publishes messages to the MQTT broker.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Broadcaster pushes events to subscribed WebSocket clients.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// PollWriter records reconciliation poll timings.
type PollWriter interface {
	WritePollMetric(udid string, duration time.Duration)
}

// Logger is the logging interface used by the fanout.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Fanout distributes domain events to the attached destinations. It
// satisfies both the lifecycle and capture event sink interfaces. The zero
// value with no destinations attached discards everything.
type Fanout struct {
	publisher   Publisher
	broadcaster Broadcaster
	history     history.Repository
	polls       PollWriter
	logger      Logger
	topics      mqtt.Topics
	qos         byte
}

// NewFanout creates a fanout with no destinations attached.
func NewFanout() *Fanout {
	return &Fanout{logger: noopLogger{}}
}

// SetPublisher attaches the MQTT publisher.
func (f *Fanout) SetPublisher(p Publisher, qos byte) {
	f.publisher = p
	f.qos = qos
}

// SetBroadcaster attaches the WebSocket broadcaster.
func (f *Fanout) SetBroadcaster(b Broadcaster) { f.broadcaster = b }

// SetHistory attaches the transition history store.
func (f *Fanout) SetHistory(h history.Repository) { f.history = h }

// SetPollWriter attaches the poll metrics writer.
func (f *Fanout) SetPollWriter(p PollWriter) { f.polls = p }

// SetLogger replaces the default no-op logger.
func (f *Fanout) SetLogger(logger Logger) {
	if logger != nil {
		f.logger = logger
	}
}

// stateChangedEvent is the wire form of a device state transition.
type stateChangedEvent struct {
	UDID      string `json:"udid"`
	From      string `json:"from"`
	To        string `json:"to"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

// DeviceStateChanged records the transition in history, publishes the new
// state retained to MQTT and broadcasts it to WebSocket subscribers.
func (f *Fanout) DeviceStateChanged(udid string, from, to simctl.DeviceState, source string) {
	evt := stateChangedEvent{
		UDID:      udid,
		From:      string(from),
		To:        string(to),
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if f.history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := f.history.Record(ctx, udid, string(from), string(to), source); err != nil {
			f.logger.Warn("transition history write failed", "udid", udid, "error", err)
		}
		cancel()
	}

	f.publish(f.topics.DeviceState(udid), evt, true)
	f.broadcast(ChannelDeviceState, evt)
}

// exitedEvent is the wire form of an actor exit.
type exitedEvent struct {
	UDID      string `json:"udid"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

// ActorExited publishes the exit to the device event topic and broadcasts
// it to WebSocket subscribers.
func (f *Fanout) ActorExited(udid string, reason lifecycle.ExitReason) {
	evt := exitedEvent{
		UDID:      udid,
		Reason:    string(reason),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	f.publish(f.topics.DeviceEvent(udid, "exited"), evt, false)
	f.broadcast(ChannelDeviceExited, evt)
}

// pollEvent is the wire form of a completed reconciliation poll.
type pollEvent struct {
	UDID       string  `json:"udid"`
	DurationMS float64 `json:"duration_ms"`
}

// PollCompleted records the poll timing in the time-series database and
// broadcasts it. Polls are frequent, so there is no MQTT publication.
func (f *Fanout) PollCompleted(udid string, duration time.Duration) {
	if f.polls != nil {
		f.polls.WritePollMetric(udid, duration)
	}

	f.broadcast(ChannelDevicePoll, pollEvent{
		UDID:       udid,
		DurationMS: float64(duration.Microseconds()) / 1000.0,
	})
}

// CaptureStarted publishes the session start to MQTT and WebSocket clients.
func (f *Fanout) CaptureStarted(info capture.SessionInfo) {
	f.publish(f.topics.CaptureSession(info.ID, "started"), info, false)
	f.broadcast(ChannelCaptureStart, info)
}

// CaptureStopped publishes the session end with its final frame counters.
func (f *Fanout) CaptureStopped(info capture.SessionInfo) {
	f.publish(f.topics.CaptureSession(info.ID, "stopped"), info, false)
	f.broadcast(ChannelCaptureStop, info)
}

func (f *Fanout) publish(topic string, payload any, retained bool) {
	if f.publisher == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		f.logger.Warn("event marshal failed", "topic", topic, "error", err)
		return
	}
	if err := f.publisher.Publish(topic, data, f.qos, retained); err != nil {
		f.logger.Debug("event publish failed", "topic", topic, "error", err)
	}
}

func (f *Fanout) broadcast(channel string, payload any) {
	if f.broadcaster == nil {
		return
	}
	f.broadcaster.Broadcast(channel, payload)
}
