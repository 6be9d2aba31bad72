package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"sidenotes/internal/debounce"
	"sidenotes/internal/domain"
	"sidenotes/internal/history"
	"sidenotes/internal/id"
	"sidenotes/internal/reducer"
	"sidenotes/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Notepad Service — active-document lifecycle and persistence
// ─────────────────────────────────────────────────────────────

// DefaultPersistWindow is the debounce quiescence window for document
// writes: keystroke-level edits coalesce into one write per window.
const DefaultPersistWindow = 600 * time.Millisecond

// NotepadService owns the in-memory library cache and the active
// document, applies reducer commands to it, and keeps the library
// store consistent through debounced whole-document writes. The store
// is the source of truth; the cache is rebuilt from it on load and
// after restore.
type NotepadService struct {
	store   domain.LibraryStore
	snaps   *storage.SnapshotStore
	persist *debounce.Task
	undo    *history.Ring
	emitter EventEmitter
	log     *logrus.Entry

	// guarded state; all mutation funnels through Dispatch and the
	// lifecycle methods below
	mu      sync.Mutex
	library domain.Library
	active  *domain.Notepad
	// pendingID is the document the debounced write would persist.
	// Only meaningful while a trigger is pending; stale values are
	// harmless because Cancel and Flush no-op on an idle task.
	pendingID string
}

// NewNotepadService creates a NotepadService. snaps may be nil to
// disable the teardown fallback snapshot.
func NewNotepadService(store domain.LibraryStore, snaps *storage.SnapshotStore, emitter EventEmitter, window time.Duration) *NotepadService {
	if window <= 0 {
		window = DefaultPersistWindow
	}
	s := &NotepadService{
		store:   store,
		snaps:   snaps,
		persist: debounce.New(window),
		undo:    history.New(history.MaxSnapshots),
		emitter: emitter,
		log:     logrus.WithField("component", "notepads"),
		library: domain.Library{},
	}
	return s
}

// Load reads the library from the store. An empty store falls back to
// the teardown snapshot; a still-empty library seeds a fresh notepad.
// The most recently updated notepad becomes active.
func (s *NotepadService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib, err := s.store.GetAll()
	if err != nil {
		return err
	}

	if len(lib) == 0 && s.snaps != nil {
		recovered, err := s.snaps.Read()
		if err != nil {
			s.log.WithError(err).Warn("fallback snapshot unreadable, ignoring")
		} else if len(recovered) > 0 {
			if err := s.store.BulkPut(recovered); err != nil {
				return err
			}
			lib = recovered
			s.log.WithField("notepads", len(recovered)).Info("recovered library from fallback snapshot")
		}
	}

	if len(lib) == 0 {
		np := emptyNotepad()
		if err := s.store.BulkPut(map[string]*domain.Notepad{np.ID: np}); err != nil {
			return err
		}
		lib = domain.Library{np.ID: np}
	}

	s.library = lib
	s.active = mostRecent(lib).Clone()
	s.undo.Reset()
	s.undo.Push(s.active)
	return nil
}

// Library returns all notepads sorted by last update, newest first.
func (s *NotepadService) Library() []*domain.Notepad {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedClones(s.library)
}

// Active returns a copy of the active document, or nil.
func (s *NotepadService) Active() *domain.Notepad {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Clone()
}

// Select makes the notepad with the given ID active. Pending edits on
// the previous document are flushed first.
func (s *NotepadService) Select(ctx context.Context, padID string) (*domain.Notepad, error) {
	s.persist.Flush()

	s.mu.Lock()
	defer s.mu.Unlock()
	np, ok := s.library[padID]
	if !ok {
		return nil, fmt.Errorf("notepad not found: %s", padID)
	}
	s.active = np.Clone()
	s.undo.Reset()
	s.undo.Push(s.active)
	return s.active.Clone(), nil
}

// Create adds a new notepad seeded with one empty note, persists it
// immediately and makes it active.
func (s *NotepadService) Create(ctx context.Context, title string) (*domain.Notepad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	np := emptyNotepad()
	np.Title = title
	if err := s.store.BulkPut(map[string]*domain.Notepad{np.ID: np}); err != nil {
		return nil, err
	}
	s.library[np.ID] = np
	s.active = np.Clone()
	s.undo.Reset()
	s.undo.Push(s.active)

	s.emitter.Emit(ctx, "library:changed", nil)
	return np.Clone(), nil
}

// Delete removes a notepad. When the active one is deleted, the
// replacement is chosen by display position: same position, then
// previous, then first; an emptied library seeds a fresh notepad.
// Returns the now-active notepad.
func (s *NotepadService) Delete(ctx context.Context, padID string) (*domain.Notepad, error) {
	s.mu.Lock()
	pendingDeleted := s.pendingID == padID
	s.mu.Unlock()
	if pendingDeleted {
		// a pending write could resurrect the deleted document
		s.persist.Cancel()
	} else {
		// a pending edit on another notepad must still reach the store
		s.persist.Flush()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.library[padID]; !ok {
		return nil, fmt.Errorf("notepad not found: %s", padID)
	}

	order := sortedClones(s.library)
	pos := 0
	for i, np := range order {
		if np.ID == padID {
			pos = i
			break
		}
	}

	if err := s.store.Delete(padID); err != nil {
		return nil, err
	}
	delete(s.library, padID)

	wasActive := s.active != nil && s.active.ID == padID
	if wasActive {
		remaining := sortedClones(s.library)
		switch {
		case len(remaining) == 0:
			np := emptyNotepad()
			if err := s.store.BulkPut(map[string]*domain.Notepad{np.ID: np}); err != nil {
				return nil, err
			}
			s.library[np.ID] = np
			s.active = np.Clone()
		case pos < len(remaining):
			s.active = remaining[pos] // same display position
		case pos-1 >= 0 && pos-1 < len(remaining):
			s.active = remaining[pos-1] // previous position
		default:
			s.active = remaining[0]
		}
		s.undo.Reset()
		s.undo.Push(s.active)
	}

	s.emitter.Emit(ctx, "library:changed", nil)
	return s.active.Clone(), nil
}

// Dispatch applies one reducer command to the active document and
// schedules a debounced persist of the result.
func (s *NotepadService) Dispatch(ctx context.Context, cmd reducer.Command) (*domain.Notepad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return nil, fmt.Errorf("no active notepad")
	}

	next := reducer.Apply(s.active, cmd, time.Now())
	s.active = next
	s.library[next.ID] = next.Clone()
	s.undo.Push(next)
	s.schedulePersist(next)

	s.emitter.Emit(ctx, "notepad:updated", next.ID)
	return next.Clone(), nil
}

// Undo steps the active document back one snapshot. The restored
// snapshot replaces the document verbatim (no restamp) and persists.
func (s *NotepadService) Undo(ctx context.Context) (*domain.Notepad, bool) {
	return s.step(ctx, func() (*domain.Notepad, bool) { return s.undo.Undo() })
}

// Redo steps the active document forward one snapshot.
func (s *NotepadService) Redo(ctx context.Context) (*domain.Notepad, bool) {
	return s.step(ctx, func() (*domain.Notepad, bool) { return s.undo.Redo() })
}

func (s *NotepadService) step(ctx context.Context, move func() (*domain.Notepad, bool)) (*domain.Notepad, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := move()
	if !ok {
		return nil, false
	}
	s.active = reducer.Apply(s.active, reducer.SetDocument{Doc: snap}, time.Now())
	s.library[s.active.ID] = s.active.Clone()
	s.schedulePersist(s.active)

	s.emitter.Emit(ctx, "notepad:updated", s.active.ID)
	return s.active.Clone(), true
}

// Refresh re-reads the library from the store after an import wrote
// entries behind the cache. The active document is kept when it still
// exists, otherwise the most recent notepad takes over.
func (s *NotepadService) Refresh(ctx context.Context) error {
	s.persist.Flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	lib, err := s.store.GetAll()
	if err != nil {
		return err
	}
	s.library = lib
	if s.active == nil || lib[s.active.ID] == nil {
		s.active = mostRecent(lib).Clone()
		s.undo.Reset()
		if s.active != nil {
			s.undo.Push(s.active)
		}
	}
	s.emitter.Emit(ctx, "library:changed", nil)
	return nil
}

// Reload discards all transient state — pending writes, undo history,
// the active document — and re-reads everything from the store. Used
// after a restore, where the persisted library and in-memory state
// must resynchronize.
func (s *NotepadService) Reload(ctx context.Context) error {
	// A pending debounced write holds pre-restore state; it must die.
	s.persist.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	lib, err := s.store.GetAll()
	if err != nil {
		return err
	}
	s.library = lib
	s.active = mostRecent(lib).Clone()
	s.undo.Reset()
	if s.active != nil {
		s.undo.Push(s.active)
	}
	s.emitter.Emit(ctx, "library:reloaded", nil)
	return nil
}

// Flush persists any pending debounced write immediately.
func (s *NotepadService) Flush() {
	s.persist.Flush()
}

// Close flushes pending writes and takes a best-effort synchronous
// snapshot to the fallback store. Called on process teardown.
func (s *NotepadService) Close() {
	s.persist.Flush()

	if s.snaps == nil {
		return
	}
	s.mu.Lock()
	lib := make(domain.Library, len(s.library))
	for padID, np := range s.library {
		lib[padID] = np.Clone()
	}
	s.mu.Unlock()

	if err := s.snaps.Write(lib); err != nil {
		s.log.WithError(err).Warn("teardown snapshot failed")
	}
}

// schedulePersist captures the document now; later triggers replace
// it, so only the latest state before a quiet window hits the store.
// Callers hold the service lock; the debounced write does not.
func (s *NotepadService) schedulePersist(np *domain.Notepad) {
	doc := np.Clone()
	s.pendingID = doc.ID
	s.persist.Trigger(func() {
		if err := s.store.BulkPut(map[string]*domain.Notepad{doc.ID: doc}); err != nil {
			s.log.WithError(err).WithField("notepad", doc.ID).Error("debounced persist failed")
		}
	})
}

func emptyNotepad() *domain.Notepad {
	now := time.Now().UnixMilli()
	return &domain.Notepad{
		ID:         id.New("notepad"),
		Title:      "",
		Created:    now,
		LastUpdate: now,
		Notes:      []domain.Note{{ID: id.New("note")}},
	}
}

func mostRecent(lib domain.Library) *domain.Notepad {
	var best *domain.Notepad
	for _, np := range lib {
		if best == nil || np.LastUpdate > best.LastUpdate {
			best = np
		}
	}
	return best
}

func sortedClones(lib domain.Library) []*domain.Notepad {
	out := make([]*domain.Notepad, 0, len(lib))
	for _, np := range lib {
		out = append(out, np.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastUpdate != out[j].LastUpdate {
			return out[i].LastUpdate > out[j].LastUpdate
		}
		return out[i].ID < out[j].ID
	})
	return out
}
