package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBaseDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	got := BaseDir()
	want := filepath.Join(home, ".mailvault")
	if got != want {
		t.Errorf("BaseDir() = %q, want %q", got, want)
	}
}

func TestDBPath(t *testing.T) {
	got := DBPath("/data")
	if !strings.HasSuffix(got, filepath.Join("data", "mailvault.db")) {
		t.Errorf("DBPath = %q, want suffix data/mailvault.db", got)
	}
}

func TestLogPath(t *testing.T) {
	got := LogPath("/data")
	if !strings.HasSuffix(got, filepath.Join("logs", "mailvaultd.log")) {
		t.Errorf("LogPath = %q, want suffix logs/mailvaultd.log", got)
	}
}

func TestEnsureDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "vault")

	if err := EnsureDir(dataDir); err != nil {
		t.Fatal(err)
	}

	for _, d := range []string{dataDir, LogDir(dataDir)} {
		info, err := os.Stat(d)
		if err != nil {
			t.Fatalf("dir %q not created: %v", d, err)
		}
		if !info.IsDir() {
			t.Errorf("%q is not a directory", d)
		}
	}
}
