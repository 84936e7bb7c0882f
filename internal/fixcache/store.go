// Package fixcache persists the last successfully acquired GPS fix and the
// timestamp marker that throttles assist-data injection. Both live in small
// files under the cache directory: the fix is read at most once per run (the
// fallback path) and written at most once (after a fresh fix).
package fixcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	fixFileName    = "last_fix.json"
	markerFileName = "last_agps_injection"
)

// Fix is the persisted coordinate record.
type Fix struct {
	Lat  float64   `json:"lat"`
	Lon  float64   `json:"lon"`
	Time time.Time `json:"time"`
}

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load returns the cached fix, with ok reporting whether one exists. A
// missing file is not an error.
func (s *Store) Load() (Fix, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, fixFileName))
	if errors.Is(err, os.ErrNotExist) {
		return Fix{}, false, nil
	}
	if err != nil {
		return Fix{}, false, fmt.Errorf("reading fix cache: %w", err)
	}

	var fix Fix
	if err := json.Unmarshal(data, &fix); err != nil {
		return Fix{}, false, fmt.Errorf("decoding fix cache: %w", err)
	}
	return fix, true, nil
}

// Save replaces the cached fix.
func (s *Store) Save(fix Fix) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	data, err := json.Marshal(fix)
	if err != nil {
		return fmt.Errorf("encoding fix cache: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, fixFileName), data, 0o644); err != nil {
		return fmt.Errorf("writing fix cache: %w", err)
	}
	return nil
}

// NeedsInjection reports whether the assist-data marker is older than
// threshold. Any stat failure counts as stale, so injection errs toward
// running.
func (s *Store) NeedsInjection(threshold time.Duration) bool {
	info, err := os.Stat(filepath.Join(s.dir, markerFileName))
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > threshold
}

// MarkInjected refreshes the assist-data marker.
func (s *Store) MarkInjected() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	path := filepath.Join(s.dir, markerFileName)
	if err := os.WriteFile(path, []byte(fmt.Sprintf("%d\n", time.Now().Unix())), 0o644); err != nil {
		return fmt.Errorf("writing injection marker: %w", err)
	}
	now := time.Now()
	return os.Chtimes(path, now, now)
}
