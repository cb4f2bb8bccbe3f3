package store

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/nkoval/mailvault/internal/store/migrations"
)

// MigrateResult describes what happened during migration.
type MigrateResult struct {
	Version uint
	Dirty   bool
	Changed bool
}

// Migrate runs all pending migrations on the database. Safe to run any
// number of times: table and index creation uses IF NOT EXISTS and
// already-applied versions are skipped, so a half-upgraded database from
// an interrupted run converges on the next call. The schema version only
// ever increases; previously persisted rows (including serialized
// rich-text documents) stay readable across version bumps.
func (db *DB) Migrate() (*MigrateResult, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: migration source: %w", ErrUnavailable, err)
	}

	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("%w: migration driver: %w", ErrUnavailable, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("%w: migration instance: %w", ErrUnavailable, err)
	}

	err = m.Up()
	changed := true
	if err == migrate.ErrNoChange {
		changed = false
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: migration up: %w", ErrUnavailable, err)
	}

	version, dirty, _ := m.Version()
	return &MigrateResult{
		Version: version,
		Dirty:   dirty,
		Changed: changed,
	}, nil
}
