// Package lifecycle owns the supervised controllers for simulator devices.
//
// Each tracked device gets exactly one Actor: a goroutine that serializes
// every operation against that device and periodically reconciles its cached
// state with the control tool's listing. The Registry enforces the
// one-actor-per-identity invariant with an atomic check-and-insert, and the
// Supervisor is the only component that adds or removes registry entries.
//
// # Serialization
//
// An actor's request channel is the sole mutual-exclusion mechanism: no two
// operations for the same device ever run concurrently, and operations
// observe a strict total order equal to arrival order. Operations against
// different devices share nothing and run in parallel.
//
// # Reconciliation
//
// The reconciliation poll is queued as a regular operation, so a
// long-running foreground call (an install, say) delays detection of
// external changes. When the poll finds the device missing from the listing
// the actor terminates itself; subsequent operations on that identity return
// ErrNotFound and a fresh StartActor with a re-fetched descriptor is
// required.
//
// # Crash policy
//
// A crashed actor is never respawned with its stale cached state. The
// supervisor removes it from the registry and callers re-acquire.
package lifecycle
