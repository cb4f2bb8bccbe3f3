package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nkoval/mailvault/internal/config"
	"github.com/nkoval/mailvault/internal/lock"
	"github.com/nkoval/mailvault/internal/paths"
	"github.com/nkoval/mailvault/internal/store"
)

func main() {
	dataDirFlag := flag.String("data-dir", "", "data directory (overrides config)")
	statsFlag := flag.Bool("stats", false, "print per-table row counts")
	migrateFlag := flag.Bool("migrate", false, "apply pending schema migrations")
	resetFlag := flag.Bool("reset", false, "wipe all local cache data (requires -yes)")
	yesFlag := flag.Bool("yes", false, "confirm destructive operations")
	flag.Parse()

	if !*statsFlag && !*migrateFlag && !*resetFlag {
		flag.Usage()
		os.Exit(2)
	}

	dataDir := paths.BaseDir()
	if cfg, err := config.Load(paths.ConfigPath()); err == nil && cfg.DataDir != "" {
		dataDir = cfg.DataDir
	}
	if *dataDirFlag != "" {
		dataDir = *dataDirFlag
	}

	if err := run(dataDir, *statsFlag, *migrateFlag, *resetFlag, *yesFlag); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(dataDir string, stats, migrate, reset, yes bool) error {
	if err := paths.EnsureDir(dataDir); err != nil {
		return err
	}

	// Refuse to touch the database while a daemon holds the data dir.
	l, err := lock.Acquire(dataDir)
	if err != nil {
		return err
	}
	defer func() { _ = l.Release() }()

	db, err := store.Open(paths.DBPath(dataDir))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if migrate || stats || reset {
		result, err := db.Migrate()
		if err != nil {
			return err
		}
		if migrate {
			if result.Changed {
				fmt.Printf("migrated to version %d\n", result.Version)
			} else {
				fmt.Printf("already at version %d\n", result.Version)
			}
		}
	}

	if reset {
		if !yes {
			return fmt.Errorf("-reset wipes all local data; re-run with -yes to confirm")
		}
		if err := db.ResetLocalData(); err != nil {
			return err
		}
		fmt.Println("local cache reset")
	}

	if stats {
		c, err := db.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("messages:         %d\n", c.Messages)
		fmt.Printf("decoded content:  %d\n", c.DecodedContent)
		fmt.Printf("read markers:     %d\n", c.ReadMarkers)
		fmt.Printf("deletion markers: %d\n", c.DeletionMarkers)
		fmt.Printf("contacts:         %d\n", c.Contacts)
		fmt.Printf("tags:             %d\n", c.Tags)
	}

	return nil
}
