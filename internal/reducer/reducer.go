package reducer

import (
	"time"

	"sidenotes/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Reducer — pure state machine for notepad documents. Apply
// never mutates its input and performs no I/O; persistence
// reacts to the documents it returns.
// ─────────────────────────────────────────────────────────────

// Command is a single mutation applied to a notepad document.
type Command interface {
	// apply mutates the (already cloned) document and reports whether
	// the transition stamps LastUpdate.
	apply(doc *domain.Notepad) bool
}

// Apply runs one command against the document and returns the new
// document. Every transition except SetDocument stamps LastUpdate
// with the supplied clock value.
func Apply(doc *domain.Notepad, cmd Command, now time.Time) *domain.Notepad {
	if set, ok := cmd.(SetDocument); ok {
		// Verbatim replacement, no restamp: used on load/import/restore.
		return set.Doc.Clone()
	}
	next := doc.Clone()
	if cmd.apply(next) {
		next.LastUpdate = now.UnixMilli()
	}
	return next
}

// SetDocument replaces the whole document without restamping.
type SetDocument struct {
	Doc *domain.Notepad
}

func (c SetDocument) apply(*domain.Notepad) bool { return false }

// UpdateTitle sets the notepad title.
type UpdateTitle struct {
	Title string
}

func (c UpdateTitle) apply(doc *domain.Notepad) bool {
	doc.Title = c.Title
	return true
}

// AddNote appends a note to the end of the document.
type AddNote struct {
	Note domain.Note
}

func (c AddNote) apply(doc *domain.Notepad) bool {
	doc.Notes = append(doc.Notes, c.Note.Clone())
	return true
}

// DuplicateNote inserts a copy immediately after the original note.
// An unknown OriginalID leaves the document unchanged.
type DuplicateNote struct {
	OriginalID string
	Note       domain.Note
}

func (c DuplicateNote) apply(doc *domain.Notepad) bool {
	i := doc.NoteIndex(c.OriginalID)
	if i < 0 {
		return false
	}
	doc.Notes = append(doc.Notes, domain.Note{})
	copy(doc.Notes[i+2:], doc.Notes[i+1:])
	doc.Notes[i+1] = c.Note.Clone()
	return true
}

// UpdateNote replaces the note with a matching ID in place. An unknown
// ID leaves the note list unchanged.
type UpdateNote struct {
	Note domain.Note
}

func (c UpdateNote) apply(doc *domain.Notepad) bool {
	i := doc.NoteIndex(c.Note.ID)
	if i < 0 {
		return false
	}
	doc.Notes[i] = c.Note.Clone()
	return true
}

// DeleteNote removes the note with a matching ID. An unknown ID
// leaves the document unchanged.
type DeleteNote struct {
	ID string
}

func (c DeleteNote) apply(doc *domain.Notepad) bool {
	i := doc.NoteIndex(c.ID)
	if i < 0 {
		return false
	}
	doc.Notes = append(doc.Notes[:i], doc.Notes[i+1:]...)
	return true
}

// MoveNote removes the note at OldIndex and reinserts it at NewIndex.
// Indices are 1-based as exposed to callers. Out-of-range positions
// leave the document unchanged; callers clamp before dispatch but the
// reducer rejects independently.
type MoveNote struct {
	OldIndex int
	NewIndex int
}

func (c MoveNote) apply(doc *domain.Notepad) bool {
	n := len(doc.Notes)
	if c.OldIndex < 1 || c.OldIndex > n || c.NewIndex < 1 || c.NewIndex > n {
		return false
	}
	from, to := c.OldIndex-1, c.NewIndex-1
	note := doc.Notes[from]
	rest := append(doc.Notes[:from:from], doc.Notes[from+1:]...)
	doc.Notes = append(rest[:to:to], append([]domain.Note{note}, rest[to:]...)...)
	return true
}
