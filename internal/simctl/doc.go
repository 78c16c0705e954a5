// Package simctl wraps the external device control tool used to manage
// simulator devices.
//
// Every operation shells out to the control binary and blocks until the
// external process exits. Exit code 0 is success; any other exit code is
// surfaced as a *CommandError carrying the tool's raw output verbatim.
//
// The package defines the Client interface consumed by the lifecycle and
// capture packages, plus the CLI-backed implementation. Callers that need
// serialization per device must provide it themselves — see the lifecycle
// package; this package performs no locking of its own.
package simctl
