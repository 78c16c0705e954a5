package capture

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for the given ID.
	ErrSessionNotFound = errors.New("capture: session not found")

	// ErrEncoderExited is recorded when the encoder subprocess exits while
	// the capture loop is still running.
	ErrEncoderExited = errors.New("capture: encoder exited")
)
