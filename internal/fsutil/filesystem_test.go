package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"testing"
)

// TestOSFileSystemRoundTrip checks the production implementation against a
// real temp directory.
func TestOSFileSystemRoundTrip(t *testing.T) {
	fsys := OSFileSystem{}
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "recording.raw")

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := fsys.WriteFile(path, []byte("% evt 2.0\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if !fsys.Exists(path) {
		t.Error("Exists returned false for written file")
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "% evt 2.0\n" {
		t.Errorf("unexpected contents: %q", data)
	}

	info, err := fsys.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != int64(len(data)) {
		t.Errorf("size mismatch: %d != %d", info.Size(), len(data))
	}

	f, err := fsys.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	got, err := io.ReadAll(f)
	if err != nil || string(got) != "% evt 2.0\n" {
		t.Errorf("read through Open wrong: %q, %v", got, err)
	}
}

// TestMemoryFileSystemRoundTrip checks the in-memory implementation mirrors
// the production one.
func TestMemoryFileSystemRoundTrip(t *testing.T) {
	fsys := NewMemoryFileSystem()

	if err := fsys.WriteFile("data/recording.aedat", []byte{1, 2, 3}, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if !fsys.Exists("data/recording.aedat") {
		t.Error("Exists returned false for written file")
	}

	data, err := fsys.ReadFile("data/recording.aedat")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(data) != 3 || data[0] != 1 {
		t.Errorf("unexpected contents: %v", data)
	}

	// Mutating the returned slice must not touch the stored copy.
	data[0] = 99
	again, _ := fsys.ReadFile("data/recording.aedat")
	if again[0] != 1 {
		t.Error("ReadFile returned a shared buffer")
	}

	f, err := fsys.Open("data/recording.aedat")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.Size() != 3 {
		t.Errorf("Stat through Open wrong: %+v, %v", info, err)
	}
	got, err := io.ReadAll(f)
	if err != nil || len(got) != 3 {
		t.Errorf("read through Open wrong: %v, %v", got, err)
	}
}

// TestMemoryFileSystemMissingFile checks missing paths surface fs.ErrNotExist
// from each accessor.
func TestMemoryFileSystemMissingFile(t *testing.T) {
	fsys := NewMemoryFileSystem()

	if _, err := fsys.Open("nope.raw"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open: expected fs.ErrNotExist, got %v", err)
	}
	if _, err := fsys.ReadFile("nope.raw"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile: expected fs.ErrNotExist, got %v", err)
	}
	if _, err := fsys.Stat("nope.raw"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat: expected fs.ErrNotExist, got %v", err)
	}
	if fsys.Exists("nope.raw") {
		t.Error("Exists returned true for missing file")
	}
}

// TestMemoryFileSystemDirs checks MkdirAll registers each parent.
func TestMemoryFileSystemDirs(t *testing.T) {
	fsys := NewMemoryFileSystem()

	if err := fsys.MkdirAll("a/b/c", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, dir := range []string{"a", "a/b", "a/b/c"} {
		if !fsys.Exists(dir) {
			t.Errorf("directory %s missing after MkdirAll", dir)
		}
		info, err := fsys.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("Stat(%s) not a directory: %+v, %v", dir, info, err)
		}
	}
}
