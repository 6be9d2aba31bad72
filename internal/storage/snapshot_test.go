package storage_test

import (
	"path/filepath"
	"testing"

	"sidenotes/internal/domain"
	"sidenotes/internal/storage"
)

func TestSnapshot_WriteRead(t *testing.T) {
	snaps := storage.NewSnapshotStore(filepath.Join(t.TempDir(), "fallback.json"))

	lib := domain.Library{
		"a": pad("a", 100),
		"b": pad("b", 200),
	}
	if err := snaps.Write(lib); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := snaps.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got["a"].Notes[0].Content != "body" {
		t.Errorf("snapshot lost note content: %+v", got["a"])
	}
}

func TestSnapshot_MissingFile(t *testing.T) {
	snaps := storage.NewSnapshotStore(filepath.Join(t.TempDir(), "never-written.json"))
	got, err := snaps.Read()
	if err != nil {
		t.Fatalf("read of missing snapshot should succeed, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty library, got %d entries", len(got))
	}
}
