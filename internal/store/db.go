// Package store implements the local persistent message cache: raw
// messages fetched from the chain, the decode-once content cache, the
// read and deletion overlays, and the contact/tag reference tables.
// All tables live in a single app-owned SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Error categories surfaced by store operations. Point-lookup misses are
// not errors: Get* methods return (nil, nil) for a missing row.
var (
	// ErrUnavailable means the database could not be opened or migrated.
	// Fatal for every dependent operation; never retried internally.
	ErrUnavailable = errors.New("store unavailable")

	// ErrWriteFailed means an individual write did not commit. The caller
	// decides whether to retry; every write here is idempotent, so
	// external retries are safe.
	ErrWriteFailed = errors.New("store write failed")
)

// DB wraps a SQLite database connection for the app-owned mailvault.db.
type DB struct {
	*sql.DB
}

// Open creates a new SQLite connection with WAL mode and recommended pragmas.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %w", ErrUnavailable, err)
	}
	// Verify connection.
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping db: %w", ErrUnavailable, err)
	}
	return &DB{db}, nil
}

// ResetLocalData wipes every table in a single transaction: raw messages,
// the decoded-content cache, both overlays, contacts and tags. Used only
// by the explicit "reset local data" action.
func (db *DB) ResetLocalData() error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin reset: %w", ErrWriteFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	tables := []string{
		"messages",
		"decoded_content",
		"read_markers",
		"deletion_markers",
		"contacts",
		"tags",
	}
	for _, table := range tables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("%w: clear %s: %w", ErrWriteFailed, table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit reset: %w", ErrWriteFailed, err)
	}
	return nil
}

func writeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrWriteFailed, op, err)
}
