package store

import (
	"database/sql"
	"time"
)

const messageColumns = `id, created_at, sender_address, recipient_address,
	encrypted_key, content, content_corrupted, metadata, inserted_at`

// UpsertMessage inserts or replaces a message by ID (idempotent).
// Messages are immutable at the protocol level, so replaying the same
// record is a no-op in effect; last write wins on the primary key.
func (db *DB) UpsertMessage(m *Message) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO messages (id, created_at, sender_address, recipient_address, encrypted_key, content, content_corrupted, metadata, inserted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			sender_address = excluded.sender_address,
			recipient_address = excluded.recipient_address,
			encrypted_key = excluded.encrypted_key,
			content = excluded.content,
			content_corrupted = excluded.content_corrupted,
			metadata = excluded.metadata`,
		m.ID, m.CreatedAt, m.SenderAddress, m.RecipientAddress, m.EncryptedKey, m.Content, m.ContentCorrupted, m.Metadata, now)
	if err != nil {
		return writeErr("upsert message", err)
	}
	return nil
}

// GetMessage returns a message by ID, or (nil, nil) if not stored.
func (db *DB) GetMessage(id string) (*Message, error) {
	row := db.QueryRow(`SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ForEachMessageByTime streams all messages ascending by created_at,
// walking idx_messages_created_at rather than sorting in memory. fn
// returning an error stops the scan and propagates the error. The scan
// is restartable: each call opens a fresh cursor over the index.
func (db *DB) ForEachMessageByTime(fn func(*Message) error) error {
	rows, err := db.Query(`SELECT ` + messageColumns + ` FROM messages ORDER BY created_at ASC`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ListMessagesByTime returns up to limit messages strictly after the
// (afterTs, afterID) position, ascending by (created_at, id). Keyset
// pagination; the id tie-break keeps rows sharing a timestamp from
// being skipped at page boundaries. Pass the last returned row's
// CreatedAt and ID to continue, or (0, "") for the first page.
func (db *DB) ListMessagesByTime(afterTs int64, afterID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT `+messageColumns+`
		FROM messages
		WHERE created_at > ? OR (created_at = ? AND id > ?)
		ORDER BY created_at ASC, id ASC
		LIMIT ?`, afterTs, afterTs, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

// ClearMessages wipes the messages table. Only the explicit "reset local
// cache" path calls this; normal deletion is an overlay tombstone.
func (db *DB) ClearMessages() error {
	if _, err := db.Exec(`DELETE FROM messages`); err != nil {
		return writeErr("clear messages", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(r rowScanner) (*Message, error) {
	var m Message
	err := r.Scan(&m.ID, &m.CreatedAt, &m.SenderAddress, &m.RecipientAddress,
		&m.EncryptedKey, &m.Content, &m.ContentCorrupted, &m.Metadata, &m.InsertedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
