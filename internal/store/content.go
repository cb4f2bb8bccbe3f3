package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nkoval/mailvault/internal/richtext"
)

// The decoded_content table is a decode-once cache. Decoding is a pure
// function of the immutable ciphertext and key, so an entry, once
// written, is authoritative for the lifetime of the cache: PutDecoded
// never replaces an existing row, and callers are expected to check
// HasDecoded (or GetDecoded) before running a decode at all. The only
// way back to the empty state is ClearDecoded.

// HasDecoded reports whether a decode result (success or corrupted
// marker) is already cached for the id.
func (db *DB) HasDecoded(id string) (bool, error) {
	var one int
	err := db.QueryRow(`SELECT 1 FROM decoded_content WHERE message_id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetDecoded returns the cached decode result for the id, or (nil, nil)
// on a cache miss. Corrupted entries come back with Corrupted set and
// zero content fields.
func (db *DB) GetDecoded(id string) (*DecodedContent, error) {
	var (
		c           DecodedContent
		kind, data  string
		attachments string
	)
	err := db.QueryRow(`
		SELECT message_id, corrupted, subject, text_kind, text_data, attachments, decoded_at
		FROM decoded_content WHERE message_id = ?`, id).
		Scan(&c.MsgID, &c.Corrupted, &c.Subject, &kind, &data, &attachments, &c.DecodedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if c.Corrupted {
		return &DecodedContent{MsgID: c.MsgID, Corrupted: true, DecodedAt: c.DecodedAt}, nil
	}
	c.Text, err = decodeText(TextKind(kind), data)
	if err != nil {
		return nil, fmt.Errorf("decoded content %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(attachments), &c.Attachments); err != nil {
		return nil, fmt.Errorf("decoded content %q: attachments: %w", id, err)
	}
	return &c, nil
}

// PutDecoded caches a decode result, success or permanent corrupted
// marker. The first write for an id wins: ON CONFLICT DO NOTHING leaves
// an existing entry untouched, so a caller racing an already-completed
// decode cannot clobber the cache. Idempotent and safe to retry.
func (db *DB) PutDecoded(c *DecodedContent) error {
	now := time.Now().UnixMilli()

	if c.Corrupted {
		_, err := db.Exec(`
			INSERT INTO decoded_content (message_id, corrupted, decoded_at)
			VALUES (?, 1, ?)
			ON CONFLICT(message_id) DO NOTHING`,
			c.MsgID, now)
		if err != nil {
			return writeErr("put corrupted marker", err)
		}
		return nil
	}

	kind, data, err := encodeText(c.Text)
	if err != nil {
		return fmt.Errorf("put decoded %q: %w", c.MsgID, err)
	}
	attachments := c.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}
	attJSON, err := json.Marshal(attachments)
	if err != nil {
		return fmt.Errorf("put decoded %q: attachments: %w", c.MsgID, err)
	}

	_, err = db.Exec(`
		INSERT INTO decoded_content (message_id, corrupted, subject, text_kind, text_data, attachments, decoded_at)
		VALUES (?, 0, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO NOTHING`,
		c.MsgID, c.Subject, string(kind), data, string(attJSON), now)
	if err != nil {
		return writeErr("put decoded content", err)
	}
	return nil
}

// ClearDecoded wipes the decode cache, forcing a full redecode on next
// access. Safe: the cache is derived data, never a source of truth.
func (db *DB) ClearDecoded() error {
	if _, err := db.Exec(`DELETE FROM decoded_content`); err != nil {
		return writeErr("clear decoded content", err)
	}
	return nil
}

// encodeText flattens a TextData union into its persisted (kind, data)
// pair. Rich documents persist as their canonical serialized form, never
// as a dump of the in-memory struct, so the stored representation
// survives changes to the Document type.
func encodeText(t TextData) (TextKind, string, error) {
	switch t.Kind {
	case TextPlain:
		return TextPlain, t.Plain, nil
	case TextRich:
		s, err := richtext.Serialize(t.Rich)
		if err != nil {
			return "", "", err
		}
		return TextRich, s, nil
	default:
		return "", "", fmt.Errorf("unknown text kind %q", t.Kind)
	}
}

func decodeText(kind TextKind, data string) (TextData, error) {
	switch kind {
	case TextPlain:
		return TextData{Kind: TextPlain, Plain: data}, nil
	case TextRich:
		doc, err := richtext.Deserialize(data)
		if err != nil {
			return TextData{}, err
		}
		return TextData{Kind: TextRich, Rich: doc}, nil
	default:
		return TextData{}, fmt.Errorf("unknown text kind %q", kind)
	}
}
