package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// UpsertContact inserts or updates an address-book entry.
func (db *DB) UpsertContact(c *Contact) error {
	tagIDs := c.TagIDs
	if tagIDs == nil {
		tagIDs = []int64{}
	}
	tagJSON, err := json.Marshal(tagIDs)
	if err != nil {
		return fmt.Errorf("upsert contact %q: tag ids: %w", c.Address, err)
	}
	now := time.Now().UnixMilli()
	_, err = db.Exec(`
		INSERT INTO contacts (address, name, description, tag_ids, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			tag_ids = excluded.tag_ids,
			updated_at = excluded.updated_at`,
		c.Address, c.Name, c.Description, string(tagJSON), now)
	if err != nil {
		return writeErr("upsert contact", err)
	}
	return nil
}

// GetContact returns a contact by address, or (nil, nil) if unknown.
func (db *DB) GetContact(address string) (*Contact, error) {
	row := db.QueryRow(`
		SELECT address, name, description, tag_ids, updated_at
		FROM contacts WHERE address = ?`, address)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindContactsByName returns contacts with the exact name, via the name
// index.
func (db *DB) FindContactsByName(name string) ([]Contact, error) {
	rows, err := db.Query(`
		SELECT address, name, description, tag_ids, updated_at
		FROM contacts WHERE name = ?`, name)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

// ListContacts returns all contacts ordered by name.
func (db *DB) ListContacts() ([]Contact, error) {
	rows, err := db.Query(`
		SELECT address, name, description, tag_ids, updated_at
		FROM contacts ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

// DeleteContact removes a contact. Deleting an unknown address is a
// no-op.
func (db *DB) DeleteContact(address string) error {
	if _, err := db.Exec(`DELETE FROM contacts WHERE address = ?`, address); err != nil {
		return writeErr("delete contact", err)
	}
	return nil
}

// TagsForContact resolves a contact's tag ids against the tags table.
// Ids pointing at tags that no longer exist are skipped, not errors:
// there is no FK between contacts and tags, and dangling ids are an
// accepted consequence of non-cascading tag deletion.
func (db *DB) TagsForContact(address string) ([]Tag, error) {
	c, err := db.GetContact(address)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	var tags []Tag
	for _, id := range c.TagIDs {
		tag, err := db.GetTag(id)
		if err != nil {
			return nil, err
		}
		if tag == nil {
			continue
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

// ClearContacts wipes the contacts table.
func (db *DB) ClearContacts() error {
	if _, err := db.Exec(`DELETE FROM contacts`); err != nil {
		return writeErr("clear contacts", err)
	}
	return nil
}

func scanContact(r rowScanner) (*Contact, error) {
	var (
		c       Contact
		tagJSON string
	)
	if err := r.Scan(&c.Address, &c.Name, &c.Description, &tagJSON, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagJSON), &c.TagIDs); err != nil {
		return nil, fmt.Errorf("contact %q: tag ids: %w", c.Address, err)
	}
	return &c, nil
}

func collectContacts(rows *sql.Rows) ([]Contact, error) {
	defer func() { _ = rows.Close() }()
	var contacts []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}
