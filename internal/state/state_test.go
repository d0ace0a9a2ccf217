package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quarrydata/quarry/internal/logger"
)

func TestMain(m *testing.M) {
	logger.UseTestMode()
	os.Exit(m.Run())
}

func TestRead_Absent(t *testing.T) {
	s := New(t.TempDir())
	if got := s.Read(); got != "" {
		t.Errorf("expected empty read on fresh root, got %q", got)
	}
}

func TestWriteRead_Roundtrip(t *testing.T) {
	s := New(t.TempDir())

	if err := s.Write("releases/20240101/manifest.json"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := s.Read(); got != "releases/20240101/manifest.json" {
		t.Errorf("expected roundtrip, got %q", got)
	}
}

func TestWrite_Replaces(t *testing.T) {
	s := New(t.TempDir())

	if err := s.Write("releases/20230101/manifest.json"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Write("releases/20240101/manifest.json"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := s.Read(); got != "releases/20240101/manifest.json" {
		t.Errorf("expected latest write to win, got %q", got)
	}
}

func TestRead_GarbageIsNotFatal(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	if err := os.WriteFile(s.Path(), []byte("babababa"), 0o644); err != nil {
		t.Fatalf("seed garbage: %v", err)
	}

	// Garbage reads back as-is; validation against the known manifest
	// set is the caller's job and must not blow up here.
	if got := s.Read(); got != "babababa" {
		t.Errorf("expected trimmed content, got %q", got)
	}
}

func TestRead_UnreadableIsEmpty(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	// A directory where the record file should be makes the read fail;
	// that must degrade to "no record".
	if err := os.MkdirAll(s.Path(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if got := s.Read(); got != "" {
		t.Errorf("expected empty read, got %q", got)
	}
}

func TestPath_IsUnderCacheRoot(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	if filepath.Dir(s.Path()) != root {
		t.Errorf("state file should live directly under the cache root, got %s", s.Path())
	}
}
