package store

import (
	"database/sql"
	"fmt"
	"time"
)

// The deletion overlay: per-account tombstones over the immutable
// messages table. A (message_id, account_address) row means "archived
// for this account"; several accounts can archive a shared broadcast
// message without affecting each other's view. Removing the tombstone
// restores the message.

// MarkDeleted archives a message for one account. Idempotent: archiving
// twice keeps the original deleted_at.
func (db *DB) MarkDeleted(id, accountAddress string) error {
	if id == "" || accountAddress == "" {
		return fmt.Errorf("mark deleted: empty message id or account")
	}
	_, err := db.Exec(`
		INSERT INTO deletion_markers (message_id, account_address, deleted_at)
		VALUES (?, ?, ?)
		ON CONFLICT(message_id, account_address) DO NOTHING`,
		id, accountAddress, time.Now().UnixMilli())
	if err != nil {
		return writeErr("mark deleted", err)
	}
	return nil
}

// MarkManyDeleted archives a batch of (message, account) pairs in one
// transaction, all-or-nothing like MarkManyRead.
func (db *DB) MarkManyDeleted(pairs []DeletionMarker) error {
	if len(pairs) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return writeErr("begin mark many deleted", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, p := range pairs {
		if p.MsgID == "" || p.AccountAddress == "" {
			return fmt.Errorf("mark many deleted: empty message id or account")
		}
		if _, err := tx.Exec(`
			INSERT INTO deletion_markers (message_id, account_address, deleted_at)
			VALUES (?, ?, ?)
			ON CONFLICT(message_id, account_address) DO NOTHING`,
			p.MsgID, p.AccountAddress, now); err != nil {
			return writeErr(fmt.Sprintf("mark deleted %q", p.MsgID), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return writeErr("commit mark many deleted", err)
	}
	return nil
}

// Restore removes every tombstone carrying the id, across all accounts.
// Note the asymmetry: MarkDeleted is keyed by (id, account) but Restore
// by id alone, so one account restoring a shared broadcast message
// unarchives it for every account that had archived it. This mirrors the
// behavior of the protocol's reference client; see DESIGN.md before
// narrowing the key.
func (db *DB) Restore(id string) error {
	if _, err := db.Exec(`DELETE FROM deletion_markers WHERE message_id = ?`, id); err != nil {
		return writeErr("restore", err)
	}
	return nil
}

// IsDeleted reports whether any account holds a tombstone for the id.
func (db *DB) IsDeleted(id string) (bool, error) {
	var one int
	err := db.QueryRow(`SELECT 1 FROM deletion_markers WHERE message_id = ? LIMIT 1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AllDeletedIDs returns the set of message ids with at least one tombstone.
func (db *DB) AllDeletedIDs() (map[string]bool, error) {
	rows, err := db.Query(`SELECT DISTINCT message_id FROM deletion_markers`)
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

// ClearDeletionMarkers wipes the deletion overlay. Data-reset parity
// only.
func (db *DB) ClearDeletionMarkers() error {
	if _, err := db.Exec(`DELETE FROM deletion_markers`); err != nil {
		return writeErr("clear deletion markers", err)
	}
	return nil
}
