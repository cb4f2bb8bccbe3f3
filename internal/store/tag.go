package store

import "database/sql"

// CreateTag inserts a new tag and returns its assigned id.
func (db *DB) CreateTag(name, color, icon string) (int64, error) {
	res, err := db.Exec(`INSERT INTO tags (name, color, icon) VALUES (?, ?, ?)`, name, color, icon)
	if err != nil {
		return 0, writeErr("create tag", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, writeErr("create tag", err)
	}
	return id, nil
}

// UpdateTag replaces the tag's name, color and icon. Updating an unknown
// id is a no-op.
func (db *DB) UpdateTag(t *Tag) error {
	_, err := db.Exec(`UPDATE tags SET name = ?, color = ?, icon = ? WHERE id = ?`,
		t.Name, t.Color, t.Icon, t.ID)
	if err != nil {
		return writeErr("update tag", err)
	}
	return nil
}

// GetTag returns a tag by id, or (nil, nil) if unknown.
func (db *DB) GetTag(id int64) (*Tag, error) {
	var t Tag
	err := db.QueryRow(`SELECT id, name, color, icon FROM tags WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Color, &t.Icon)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindTagByName returns the first tag with the exact name, via the name
// index, or (nil, nil) when no tag matches.
func (db *DB) FindTagByName(name string) (*Tag, error) {
	var t Tag
	err := db.QueryRow(`SELECT id, name, color, icon FROM tags WHERE name = ? LIMIT 1`, name).
		Scan(&t.ID, &t.Name, &t.Color, &t.Icon)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTags returns all tags ordered by name.
func (db *DB) ListTags() ([]Tag, error) {
	rows, err := db.Query(`SELECT id, name, color, icon FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Icon); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// DeleteTag removes a tag. Deletion never cascades into contacts: their
// tag_ids lists keep the dangling id, which readers filter out.
func (db *DB) DeleteTag(id int64) error {
	if _, err := db.Exec(`DELETE FROM tags WHERE id = ?`, id); err != nil {
		return writeErr("delete tag", err)
	}
	return nil
}

// ClearTags wipes the tags table. Data-reset parity only; the seeded
// defaults come back on the next migration from scratch, not here.
func (db *DB) ClearTags() error {
	if _, err := db.Exec(`DELETE FROM tags`); err != nil {
		return writeErr("clear tags", err)
	}
	return nil
}
