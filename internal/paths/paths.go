// Package paths defines the on-disk layout of the mailvault data
// directory.
package paths

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.mailvault, the default data directory.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mailvault")
}

// DBPath returns the cache database path inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "mailvault.db")
}

// LogDir returns the log directory inside a data directory.
func LogDir(dataDir string) string {
	return filepath.Join(dataDir, "logs")
}

// LogPath returns the daemon log file path.
func LogPath(dataDir string) string {
	return filepath.Join(LogDir(dataDir), "mailvaultd.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the data directory tree with owner-only permissions.
func EnsureDir(dataDir string) error {
	dirs := []string{
		dataDir,
		LogDir(dataDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
