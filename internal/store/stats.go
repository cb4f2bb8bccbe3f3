package store

// Counts holds per-table row counts, used by the maintenance CLI.
type Counts struct {
	Messages        int64
	DecodedContent  int64
	ReadMarkers     int64
	DeletionMarkers int64
	Contacts        int64
	Tags            int64
}

// Stats returns row counts for every table.
func (db *DB) Stats() (*Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dst   *int64
	}{
		{"messages", &c.Messages},
		{"decoded_content", &c.DecodedContent},
		{"read_markers", &c.ReadMarkers},
		{"deletion_markers", &c.DeletionMarkers},
		{"contacts", &c.Contacts},
		{"tags", &c.Tags},
	} {
		if err := db.QueryRow("SELECT COUNT(*) FROM " + q.table).Scan(q.dst); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
