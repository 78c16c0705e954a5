package simctl

// DeviceState is the externally-observed state of a simulator device.
type DeviceState string

const (
	StateShutdown     DeviceState = "Shutdown"
	StateBooting      DeviceState = "Booting"
	StateBooted       DeviceState = "Booted"
	StateShuttingDown DeviceState = "ShuttingDown"
	StateUnknown      DeviceState = "Unknown"
)

// ParseDeviceState maps the control tool's state column to a DeviceState.
// Unrecognised values map to StateUnknown rather than failing the listing.
func ParseDeviceState(s string) DeviceState {
	switch s {
	case "Shutdown":
		return StateShutdown
	case "Booting":
		return StateBooting
	case "Booted":
		return StateBooted
	case "ShuttingDown", "Shutting Down":
		return StateShuttingDown
	default:
		return StateUnknown
	}
}

// Device is an immutable snapshot of one simulator as reported by the
// control tool's listing. Snapshots are superseded by newer listings and
// never mutated in place.
type Device struct {
	// UDID is the unique device identifier. It is the sole key used by the
	// lifecycle registry.
	UDID string `json:"udid"`

	// Name is the human-readable device name (e.g. "iPhone 15").
	Name string `json:"name"`

	// DeviceType describes the hardware kind (e.g. "iPhone15,2").
	DeviceType string `json:"device_type"`

	// Runtime is the platform version the device runs (e.g. "iOS 17.4").
	Runtime string `json:"runtime"`

	// State is the observed state at listing time.
	State DeviceState `json:"state"`
}
