package history

import "sidenotes/internal/domain"

// MaxSnapshots caps the in-memory undo history. When the buffer is
// full, the oldest snapshot is evicted.
const MaxSnapshots = 50

// Ring is a bounded buffer of document snapshots with a cursor.
// Pushing while the cursor is mid-history truncates the redo tail.
// Not safe for concurrent use; NotepadService owns it under its lock.
type Ring struct {
	snaps []*domain.Notepad
	head  int // index of the current snapshot, -1 when empty
	limit int
}

// New creates a Ring holding at most limit snapshots.
func New(limit int) *Ring {
	if limit <= 0 {
		limit = MaxSnapshots
	}
	return &Ring{head: -1, limit: limit}
}

// Push records a snapshot as the new current state.
func (r *Ring) Push(doc *domain.Notepad) {
	r.snaps = append(r.snaps[:r.head+1], doc.Clone())
	if len(r.snaps) > r.limit {
		r.snaps = r.snaps[len(r.snaps)-r.limit:]
	}
	r.head = len(r.snaps) - 1
}

// Undo steps the cursor back and returns that snapshot.
func (r *Ring) Undo() (*domain.Notepad, bool) {
	if r.head <= 0 {
		return nil, false
	}
	r.head--
	return r.snaps[r.head].Clone(), true
}

// Redo steps the cursor forward and returns that snapshot.
func (r *Ring) Redo() (*domain.Notepad, bool) {
	if r.head < 0 || r.head >= len(r.snaps)-1 {
		return nil, false
	}
	r.head++
	return r.snaps[r.head].Clone(), true
}

// Reset drops all history, e.g. after switching the active notepad.
func (r *Ring) Reset() {
	r.snaps = nil
	r.head = -1
}

// Len returns the number of stored snapshots.
func (r *Ring) Len() int { return len(r.snaps) }
