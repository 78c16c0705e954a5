// Package database wraps the SQLite connection used for persistence.
//
// It opens the database with WAL mode and a busy timeout, keeps the pool at
// a single connection to match SQLite's one-writer model, and applies
// embedded schema migrations at startup. Migration files follow the
// YYYYMMDD_HHMMSS_description.up.sql naming scheme with optional .down.sql
// counterparts.
package database
