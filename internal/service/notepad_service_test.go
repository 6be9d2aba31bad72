package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"sidenotes/internal/domain"
	"sidenotes/internal/reducer"
	"sidenotes/internal/service"
	"sidenotes/internal/storage"
)

// A large window keeps the debounce timer from firing during tests;
// persistence is exercised through explicit Flush calls.
const testWindow = time.Hour

func newStore(t *testing.T) *storage.LibraryStore {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "sidenotes.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return storage.NewLibraryStore(db)
}

func seedLibrary(t *testing.T, store domain.LibraryStore, pads ...*domain.Notepad) {
	t.Helper()
	m := make(map[string]*domain.Notepad)
	for _, np := range pads {
		m[np.ID] = np
	}
	if err := store.BulkPut(m); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func pad(padID string, lastUpdate int64) *domain.Notepad {
	return &domain.Notepad{
		ID:         padID,
		Title:      "pad " + padID,
		Created:    lastUpdate,
		LastUpdate: lastUpdate,
		Notes:      []domain.Note{{ID: "note_" + padID}},
	}
}

func TestLoad_EmptyStoreSeedsNotepad(t *testing.T) {
	store := newStore(t)
	svc := service.NewNotepadService(store, nil, &service.MockEmitter{}, testWindow)

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	active := svc.Active()
	if active == nil {
		t.Fatal("expected an active notepad after load")
	}
	if len(active.Notes) != 1 {
		t.Errorf("expected one seeded empty note, got %d", len(active.Notes))
	}

	lib, _ := store.GetAll()
	if len(lib) != 1 {
		t.Errorf("expected seeded notepad persisted, got %d entries", len(lib))
	}
}

func TestLoad_ActivatesMostRecent(t *testing.T) {
	store := newStore(t)
	seedLibrary(t, store, pad("old", 100), pad("new", 900), pad("mid", 500))
	svc := service.NewNotepadService(store, nil, &service.MockEmitter{}, testWindow)

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := svc.Active().ID; got != "new" {
		t.Errorf("expected most recent notepad active, got %s", got)
	}

	order := svc.Library()
	if order[0].ID != "new" || order[2].ID != "old" {
		t.Errorf("expected lastUpdate-descending order, got %v", []string{order[0].ID, order[1].ID, order[2].ID})
	}
}

func TestDispatch_DebouncedPersist(t *testing.T) {
	store := newStore(t)
	seedLibrary(t, store, pad("a", 100))
	svc := service.NewNotepadService(store, nil, &service.MockEmitter{}, testWindow)
	svc.Load(context.Background())

	if _, err := svc.Dispatch(context.Background(), reducer.UpdateTitle{Title: "edited"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	// Before the window elapses the store still has the old document.
	lib, _ := store.GetAll()
	if lib["a"].Title != "pad a" {
		t.Errorf("store updated before debounce fired: %q", lib["a"].Title)
	}

	svc.Flush()
	lib, _ = store.GetAll()
	if lib["a"].Title != "edited" {
		t.Errorf("flush did not persist the latest state: %q", lib["a"].Title)
	}
}

func TestDispatch_LatestStateWins(t *testing.T) {
	store := newStore(t)
	seedLibrary(t, store, pad("a", 100))
	svc := service.NewNotepadService(store, nil, &service.MockEmitter{}, testWindow)
	svc.Load(context.Background())

	for _, title := range []string{"one", "two", "three"} {
		svc.Dispatch(context.Background(), reducer.UpdateTitle{Title: title})
	}
	svc.Flush()

	lib, _ := store.GetAll()
	if lib["a"].Title != "three" {
		t.Errorf("expected latest state persisted, got %q", lib["a"].Title)
	}
}

func TestDelete_OnlyNotepadSeedsReplacement(t *testing.T) {
	store := newStore(t)
	seedLibrary(t, store, pad("only", 100))
	svc := service.NewNotepadService(store, nil, &service.MockEmitter{}, testWindow)
	svc.Load(context.Background())

	replacement, err := svc.Delete(context.Background(), "only")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if replacement.ID == "only" {
		t.Fatal("expected a fresh notepad")
	}
	if len(replacement.Notes) != 1 {
		t.Errorf("expected one default empty note, got %d", len(replacement.Notes))
	}

	lib, _ := store.GetAll()
	if len(lib) != 1 {
		t.Fatalf("expected exactly the replacement persisted, got %d", len(lib))
	}
	if _, ok := lib[replacement.ID]; !ok {
		t.Error("replacement not persisted")
	}
}

func TestDelete_ActiveFallsBackToSamePosition(t *testing.T) {
	store := newStore(t)
	// Display order: c (900), b (500), a (100).
	seedLibrary(t, store, pad("a", 100), pad("b", 500), pad("c", 900))
	svc := service.NewNotepadService(store, nil, &service.MockEmitter{}, testWindow)
	svc.Load(context.Background())

	if _, err := svc.Select(context.Background(), "b"); err != nil {
		t.Fatalf("select: %v", err)
	}
	next, err := svc.Delete(context.Background(), "b")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	// b sat at position 1; after removal position 1 is a.
	if next.ID != "a" {
		t.Errorf("expected fallback to same display position (a), got %s", next.ID)
	}
}

func TestDelete_LastPositionFallsBackToPrevious(t *testing.T) {
	store := newStore(t)
	seedLibrary(t, store, pad("a", 100), pad("b", 500))
	svc := service.NewNotepadService(store, nil, &service.MockEmitter{}, testWindow)
	svc.Load(context.Background())

	if _, err := svc.Select(context.Background(), "a"); err != nil {
		t.Fatalf("select: %v", err)
	}
	next, err := svc.Delete(context.Background(), "a")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if next.ID != "b" {
		t.Errorf("expected fallback to previous position (b), got %s", next.ID)
	}
}

func TestDelete_OtherNotepadKeepsPendingEdit(t *testing.T) {
	store := newStore(t)
	seedLibrary(t, store, pad("a", 100), pad("b", 500))
	svc := service.NewNotepadService(store, nil, &service.MockEmitter{}, testWindow)
	svc.Load(context.Background())

	// Active is b; the edit sits in the debounce window when a dies.
	if _, err := svc.Dispatch(context.Background(), reducer.UpdateTitle{Title: "edited"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := svc.Delete(context.Background(), "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	svc.Flush()
	lib, _ := store.GetAll()
	if lib["b"].Title != "edited" {
		t.Errorf("deleting another notepad lost the pending edit: %q", lib["b"].Title)
	}
	if _, ok := lib["a"]; ok {
		t.Error("deleted notepad still in store")
	}
}

func TestDelete_ActiveDiscardsPendingEdit(t *testing.T) {
	store := newStore(t)
	seedLibrary(t, store, pad("a", 100), pad("b", 500))
	svc := service.NewNotepadService(store, nil, &service.MockEmitter{}, testWindow)
	svc.Load(context.Background())

	svc.Dispatch(context.Background(), reducer.UpdateTitle{Title: "doomed"})
	if _, err := svc.Delete(context.Background(), "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	svc.Flush()
	lib, _ := store.GetAll()
	if _, ok := lib["b"]; ok {
		t.Error("cancelled pending write resurrected the deleted notepad")
	}
}

func TestDelete_InactiveKeepsActive(t *testing.T) {
	store := newStore(t)
	seedLibrary(t, store, pad("a", 100), pad("b", 500))
	svc := service.NewNotepadService(store, nil, &service.MockEmitter{}, testWindow)
	svc.Load(context.Background())

	active, err := svc.Delete(context.Background(), "a")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if active.ID != "b" {
		t.Errorf("expected active to stay b, got %s", active.ID)
	}
}

func TestUndoRedo(t *testing.T) {
	store := newStore(t)
	seedLibrary(t, store, pad("a", 100))
	svc := service.NewNotepadService(store, nil, &service.MockEmitter{}, testWindow)
	svc.Load(context.Background())

	svc.Dispatch(context.Background(), reducer.UpdateTitle{Title: "v2"})
	svc.Dispatch(context.Background(), reducer.UpdateTitle{Title: "v3"})

	got, ok := svc.Undo(context.Background())
	if !ok || got.Title != "v2" {
		t.Fatalf("expected undo to v2, got %+v ok=%v", got, ok)
	}
	got, ok = svc.Redo(context.Background())
	if !ok || got.Title != "v3" {
		t.Fatalf("expected redo to v3, got %+v ok=%v", got, ok)
	}

	svc.Flush()
	lib, _ := store.GetAll()
	if lib["a"].Title != "v3" {
		t.Errorf("expected undo/redo result persisted, got %q", lib["a"].Title)
	}
}

func TestClose_WritesFallbackSnapshot(t *testing.T) {
	store := newStore(t)
	seedLibrary(t, store, pad("a", 100))
	snaps := storage.NewSnapshotStore(filepath.Join(t.TempDir(), "fallback.json"))
	svc := service.NewNotepadService(store, snaps, &service.MockEmitter{}, testWindow)
	svc.Load(context.Background())

	svc.Dispatch(context.Background(), reducer.UpdateTitle{Title: "final"})
	svc.Close()

	// Close flushes the pending debounce...
	lib, _ := store.GetAll()
	if lib["a"].Title != "final" {
		t.Errorf("close did not flush pending write: %q", lib["a"].Title)
	}
	// ...and the fallback snapshot carries the same state.
	recovered, err := snaps.Read()
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if recovered["a"].Title != "final" {
		t.Errorf("snapshot missed final state: %q", recovered["a"].Title)
	}
}

func TestLoad_RecoversFromSnapshotWhenStoreEmpty(t *testing.T) {
	store := newStore(t)
	snaps := storage.NewSnapshotStore(filepath.Join(t.TempDir(), "fallback.json"))
	if err := snaps.Write(domain.Library{"a": pad("a", 100)}); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	svc := service.NewNotepadService(store, snaps, &service.MockEmitter{}, testWindow)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := svc.Active().ID; got != "a" {
		t.Errorf("expected recovered notepad active, got %s", got)
	}
	lib, _ := store.GetAll()
	if _, ok := lib["a"]; !ok {
		t.Error("recovered notepad must be written back to the store")
	}
}

func TestReload_DiscardsPendingWrite(t *testing.T) {
	store := newStore(t)
	seedLibrary(t, store, pad("a", 100))
	svc := service.NewNotepadService(store, nil, &service.MockEmitter{}, testWindow)
	svc.Load(context.Background())

	// A pending edit that must not survive the reload.
	svc.Dispatch(context.Background(), reducer.UpdateTitle{Title: "stale"})

	// Simulate a restore writing fresh content behind the cache.
	seedLibrary(t, store, pad("fresh", 900))
	if err := store.Delete("a"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := svc.Active().ID; got != "fresh" {
		t.Errorf("expected reloaded active notepad, got %s", got)
	}

	// The stale debounced write must have been cancelled.
	svc.Flush()
	lib, _ := store.GetAll()
	if _, ok := lib["a"]; ok {
		t.Error("cancelled pending write resurrected a deleted notepad")
	}
}
