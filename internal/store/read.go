package store

import (
	"database/sql"
	"fmt"
	"time"
)

// The read overlay: presence of a row in read_markers means "read",
// absence means "unread". Independent of the decode cache and the
// deletion overlay; a message can be marked read before it was ever
// decoded.

// MarkRead marks a single message as read. Idempotent: marking an
// already-read message keeps the original read_at.
func (db *DB) MarkRead(id string) error {
	if id == "" {
		return fmt.Errorf("mark read: empty message id")
	}
	_, err := db.Exec(`
		INSERT INTO read_markers (message_id, read_at) VALUES (?, ?)
		ON CONFLICT(message_id) DO NOTHING`,
		id, time.Now().UnixMilli())
	if err != nil {
		return writeErr("mark read", err)
	}
	return nil
}

// MarkManyRead marks a batch of messages as read in one transaction:
// either every id in the batch becomes marked or none do, so a failed
// bulk action never leaves a partial result visible.
func (db *DB) MarkManyRead(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return writeErr("begin mark many read", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("mark many read: empty message id")
		}
		if _, err := tx.Exec(`
			INSERT INTO read_markers (message_id, read_at) VALUES (?, ?)
			ON CONFLICT(message_id) DO NOTHING`, id, now); err != nil {
			return writeErr(fmt.Sprintf("mark read %q", id), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return writeErr("commit mark many read", err)
	}
	return nil
}

// IsRead reports whether the message carries a read marker.
func (db *DB) IsRead(id string) (bool, error) {
	var one int
	err := db.QueryRow(`SELECT 1 FROM read_markers WHERE message_id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AllReadIDs returns the set of message ids marked read.
func (db *DB) AllReadIDs() (map[string]bool, error) {
	rows, err := db.Query(`SELECT message_id FROM read_markers`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// ClearReadMarkers wipes the read overlay. Exists for data-reset parity;
// no normal flow calls it.
func (db *DB) ClearReadMarkers() error {
	if _, err := db.Exec(`DELETE FROM read_markers`); err != nil {
		return writeErr("clear read markers", err)
	}
	return nil
}
