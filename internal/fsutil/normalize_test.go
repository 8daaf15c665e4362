package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestNormalizePath checks tilde expansion and cleaning.
func TestNormalizePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/recordings/run.aedat", filepath.Join(home, "recordings", "run.aedat")},
		{"/data//runs/../run.raw", "/data/run.raw"},
		{"relative/run.dat", filepath.Join("relative", "run.dat")},
	}
	for _, tt := range tests {
		got, err := NormalizePath(tt.in)
		if err != nil {
			t.Errorf("NormalizePath(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestNormalizePathNoTildeUser checks ~user form is passed through untouched
// apart from cleaning.
func TestNormalizePathNoTildeUser(t *testing.T) {
	got, err := NormalizePath("~other/run.raw")
	if err != nil {
		t.Fatalf("NormalizePath failed: %v", err)
	}
	if got != "~other/run.raw" {
		t.Errorf("expected ~other form untouched, got %q", got)
	}
}
