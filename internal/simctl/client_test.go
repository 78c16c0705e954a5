package simctl

import (
	"errors"
	"testing"
)

func TestParseListLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Device
		ok   bool
	}{
		{
			name: "valid booted device",
			line: "SIM-1 | iPhone 15 | Booted | iPhone15,2 | iOS 17.4",
			want: Device{
				UDID:       "SIM-1",
				Name:       "iPhone 15",
				State:      StateBooted,
				DeviceType: "iPhone15,2",
				Runtime:    "iOS 17.4",
			},
			ok: true,
		},
		{
			name: "shutdown device without extra spacing",
			line: "ABCD-1234|iPad Air|Shutdown|iPad13,1|iPadOS 17.0",
			want: Device{
				UDID:       "ABCD-1234",
				Name:       "iPad Air",
				State:      StateShutdown,
				DeviceType: "iPad13,1",
				Runtime:    "iPadOS 17.0",
			},
			ok: true,
		},
		{
			name: "unknown state maps to Unknown",
			line: "SIM-2 | iPhone SE | Creating | iPhone14,6 | iOS 16.1",
			want: Device{
				UDID:       "SIM-2",
				Name:       "iPhone SE",
				State:      StateUnknown,
				DeviceType: "iPhone14,6",
				Runtime:    "iOS 16.1",
			},
			ok: true,
		},
		{
			name: "too few columns",
			line: "SIM-3 | iPhone 15 | Booted",
			ok:   false,
		},
		{
			name: "empty identity",
			line: " | iPhone 15 | Booted | iPhone15,2 | iOS 17.4",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseListLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("parseListLine(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Errorf("parseListLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseDeviceState(t *testing.T) {
	tests := []struct {
		input string
		want  DeviceState
	}{
		{"Shutdown", StateShutdown},
		{"Booting", StateBooting},
		{"Booted", StateBooted},
		{"ShuttingDown", StateShuttingDown},
		{"Shutting Down", StateShuttingDown},
		{"garbage", StateUnknown},
		{"", StateUnknown},
	}

	for _, tt := range tests {
		if got := ParseDeviceState(tt.input); got != tt.want {
			t.Errorf("ParseDeviceState(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCommandError_Message(t *testing.T) {
	err := &CommandError{
		Op:       "boot",
		UDID:     "SIM-1",
		ExitCode: 164,
		Output:   "Unable to boot device in current state: Booted",
	}

	msg := err.Error()
	want := "simctl boot SIM-1: exit 164: Unable to boot device in current state: Booted"
	if msg != want {
		t.Errorf("Error() = %q, want %q", msg, want)
	}
}

func TestCommandError_WithoutUDID(t *testing.T) {
	err := &CommandError{Op: "list", ExitCode: 1, Output: "boom"}
	want := "simctl list: exit 1: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrDeviceNotFound_Is(t *testing.T) {
	wrapped := errors.Join(ErrDeviceNotFound)
	if !errors.Is(wrapped, ErrDeviceNotFound) {
		t.Error("errors.Is failed to match ErrDeviceNotFound")
	}
}
