package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// TransitionEntry is one recorded device state transition.
type TransitionEntry struct {
	ID        int64     `json:"id"`
	UDID      string    `json:"udid"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository stores and queries transition history.
type Repository interface {
	Record(ctx context.Context, udid, from, to, source string) error
	List(ctx context.Context, udid string, limit int) ([]TransitionEntry, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// SQLiteRepository implements Repository on the transition_history table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts one transition row.
func (r *SQLiteRepository) Record(ctx context.Context, udid, from, to, source string) error {
	if udid == "" {
		return fmt.Errorf("udid is required")
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO transition_history (udid, from_state, to_state, source) VALUES (?, ?, ?, ?)",
		udid, from, to, source,
	)
	if err != nil {
		return fmt.Errorf("inserting transition: %w", err)
	}
	return nil
}

// List returns recent transitions for a device, newest first.
// Limit defaults to 50 and is capped at 200.
func (r *SQLiteRepository) List(ctx context.Context, udid string, limit int) ([]TransitionEntry, error) {
	if udid == "" {
		return nil, fmt.Errorf("udid is required")
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, udid, from_state, to_state, source, created_at
		 FROM transition_history
		 WHERE udid = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		udid, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying transitions: %w", err)
	}
	defer rows.Close()

	entries := make([]TransitionEntry, 0, limit)
	for rows.Next() {
		var entry TransitionEntry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.UDID, &entry.From, &entry.To, &entry.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}
		timestamp, err := parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = timestamp
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transitions: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than the given duration and returns the number
// of rows removed.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM transition_history WHERE created_at < ?", cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting transitions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return rowsAffected, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("created_at is empty")
	}
	timestamp, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return timestamp, nil
	}
	fallback, fallbackErr := time.Parse("2006-01-02T15:04:05Z", value)
	if fallbackErr == nil {
		return fallback, nil
	}
	return time.Time{}, fmt.Errorf("parsing created_at: %w", err)
}
