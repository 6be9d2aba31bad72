package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sidenotes/internal/codec"
	"sidenotes/internal/domain"
)

// SnapshotStore is the fallback local store: a single JSON file the
// service writes synchronously on teardown, so an in-flight debounce
// window cannot lose the final document state. It is best-effort and
// read back only when the primary store opens empty.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a SnapshotStore writing to path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

type snapshotEnvelope struct {
	SavedAt  int64                            `json:"savedAt"`
	Notepads map[string]*codec.NotepadPayload `json:"notepads"`
}

// Write persists the full library to the snapshot file. The write is
// atomic: temp file then rename.
func (s *SnapshotStore) Write(lib domain.Library) error {
	env := snapshotEnvelope{
		SavedAt:  time.Now().UnixMilli(),
		Notepads: make(map[string]*codec.NotepadPayload, len(lib)),
	}
	for padID, np := range lib {
		env.Notepads[padID] = codec.ToPayload(np)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Read loads the snapshot file. A missing file returns an empty
// library, not an error.
func (s *SnapshotStore) Read() (domain.Library, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return domain.Library{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var env snapshotEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}

	lib := domain.Library{}
	for padID, p := range env.Notepads {
		lib[padID] = codec.FromPayload(p)
	}
	return lib, nil
}
