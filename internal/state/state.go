// Package state persists the last-loaded manifest key for a cache root.
package state

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/quarrydata/quarry/internal/logger"
)

const fileName = "manifest_last_used.txt"

// State records which manifest a cache root most recently loaded. One plain
// text file per cache root, shared by every cache instance pointed at it;
// last writer wins, no locking.
type State struct {
	path string
}

// New binds a State to a cache root.
func New(cacheRoot string) *State {
	return &State{path: filepath.Join(cacheRoot, fileName)}
}

// Path returns the backing file location.
func (s *State) Path() string { return s.path }

// Read returns the recorded manifest key, or "" when the file is absent or
// unreadable. Corruption is never fatal here; callers validate the returned
// key against the known manifest set and fall back as needed.
func (s *State) Read() string {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Debug("unreadable last-used record at %s: %v", s.path, err)
		}
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// Write records the manifest key, replacing any prior value.
func (s *State) Write(manifestKey string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(manifestKey+"\n"), 0o644)
}
