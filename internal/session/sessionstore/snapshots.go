package sessionstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/clausops/escaperoom/internal/session"
)

// Namespace is the single fixed key under which local game state lives,
// so unrelated state in the host environment is unaffected.
const Namespace = "christmas-escape-room"

// FileSnapshots persists session snapshots as JSON files under
// <dir>/<Namespace>/<session id>.json.
type FileSnapshots struct {
	dir string
}

// NewFileSnapshots creates the namespaced snapshot directory under dir.
func NewFileSnapshots(dir string) (*FileSnapshots, error) {
	root := filepath.Join(dir, Namespace)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	return &FileSnapshots{dir: root}, nil
}

var _ session.SnapshotStore = (*FileSnapshots)(nil)

func (f *FileSnapshots) path(id string) string {
	// Session ids are uuids; sanitize anyway so a hostile id cannot
	// escape the namespace directory.
	id = strings.ReplaceAll(id, string(os.PathSeparator), "_")
	return filepath.Join(f.dir, id+".json")
}

// Save writes the snapshot atomically (write temp, then rename).
func (f *FileSnapshots) Save(id string, snap session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmp := f.path(id) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path(id)); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot; the second return is false when none exists.
func (f *FileSnapshots) Load(id string) (session.Snapshot, bool, error) {
	data, err := os.ReadFile(f.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return session.Snapshot{}, false, nil
		}
		return session.Snapshot{}, false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return session.Snapshot{}, false, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return snap, true, nil
}

// Delete removes a snapshot; deleting a missing snapshot is not an
// error.
func (f *FileSnapshots) Delete(id string) error {
	if err := os.Remove(f.path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
