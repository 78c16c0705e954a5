// Package process manages the lifecycle of external subprocesses.
//
// A Manager owns exactly one subprocess: it starts the process in its own
// process group, watches for exit, and stops it with SIGTERM escalating to
// SIGKILL after a graceful timeout. Stdout and stderr are drained to the
// logger; an optional stdin pipe lets callers stream data into the process
// (the capture pipeline feeds encoder frames this way).
//
// The manager never restarts anything. A process that exits — cleanly or
// not — stays exited, and the exit error is available from Err(); callers
// that want supervision build it on top of Done().
package process
