package mqtt

import "fmt"

// Topic prefixes for the SimFleet MQTT hierarchy.
const (
	// TopicPrefix is the base for all SimFleet topics.
	TopicPrefix = "simfleet"

	// TopicPrefixDevice is the base for per-device topics.
	TopicPrefixDevice = "simfleet/device"

	// TopicPrefixCapture is the base for capture session topics.
	TopicPrefixCapture = "simfleet/capture"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "simfleet/system"
)

// Topics provides builders for SimFleet MQTT topics. Using these helpers
// keeps topic naming consistent across publishers and subscribers.
type Topics struct{}

// DeviceState returns the retained state topic for a device.
//
// Example: simfleet/device/3A5C.../state
func (Topics) DeviceState(udid string) string {
	return fmt.Sprintf("%s/%s/state", TopicPrefixDevice, udid)
}

// DeviceEvent returns the event topic for a device.
//
// Example: simfleet/device/3A5C.../event/vanished
func (Topics) DeviceEvent(udid, eventType string) string {
	return fmt.Sprintf("%s/%s/event/%s", TopicPrefixDevice, udid, eventType)
}

// CaptureSession returns the topic for capture session events.
//
// Example: simfleet/capture/4fd1.../started
func (Topics) CaptureSession(sessionID, eventType string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixCapture, sessionID, eventType)
}

// SystemStatus returns the service availability topic used for the online,
// offline and LWT payloads.
//
// Example: simfleet/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllDeviceStates returns a pattern matching every device state topic.
//
// Pattern: simfleet/device/+/state
func (Topics) AllDeviceStates() string {
	return fmt.Sprintf("%s/+/state", TopicPrefixDevice)
}

// AllDeviceEvents returns a pattern matching every device event topic.
//
// Pattern: simfleet/device/+/event/+
func (Topics) AllDeviceEvents() string {
	return fmt.Sprintf("%s/+/event/+", TopicPrefixDevice)
}

// AllCaptureSessions returns a pattern matching every capture session topic.
//
// Pattern: simfleet/capture/+/+
func (Topics) AllCaptureSessions() string {
	return fmt.Sprintf("%s/+/+", TopicPrefixCapture)
}

// AllTopics returns a pattern matching all SimFleet topics.
//
// Pattern: simfleet/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
