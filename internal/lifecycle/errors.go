package lifecycle

import "errors"

// Domain errors for the lifecycle package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, lifecycle.ErrNotFound) {
//	    // handle missing actor
//	}
var (
	// ErrNotFound is returned when no live actor exists for an identity.
	// Operations sent to a terminated actor also return ErrNotFound.
	ErrNotFound = errors.New("lifecycle: actor not found")

	// ErrAlreadyRegistered is returned by Registry.Register when another
	// actor already holds the identity.
	ErrAlreadyRegistered = errors.New("lifecycle: identity already registered")

	// ErrTerminating is returned when an operation arrives while the actor
	// is shutting down and can no longer accept work.
	ErrTerminating = errors.New("lifecycle: actor terminating")
)
