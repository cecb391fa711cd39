// Package storage persists the crossing-event log and per-platform
// zone configuration in SQLite.
//
// The events table is the system of record for all reporting: an
// append-only, immutable log. Zone configuration rides on the cameras
// table, which richer camera metadata (name, stream URL) shares with
// the external administration surface; this package only reads and
// writes the zones column.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and
// ensures the schema exists. Failure here is fatal to startup: without
// the durable log there is no system of record.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// SQLite allows one writer; a single connection also keeps
	// in-memory databases coherent across goroutines.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			platform  TEXT NOT NULL,
			zone      TEXT NOT NULL,
			direction TEXT NOT NULL,
			qty       INTEGER NOT NULL DEFAULT 1,
			ts        INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
		CREATE INDEX IF NOT EXISTS idx_events_platform ON events(platform);
		CREATE TABLE IF NOT EXISTS cameras (
			platform  TEXT PRIMARY KEY,
			name      TEXT NOT NULL DEFAULT '',
			url       TEXT NOT NULL DEFAULT '',
			zones     TEXT NOT NULL DEFAULT '{}'
		);
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}
