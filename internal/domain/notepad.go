package domain

// AttachmentType categorizes what kind of file a note carries.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentVideo AttachmentType = "video"
	AttachmentAudio AttachmentType = "audio"
	AttachmentFile  AttachmentType = "file"
)

// Attachment is a binary file associated with a note. Data is the raw
// payload; on the wire it travels as a Base64 data URL (see codec).
type Attachment struct {
	Name     string         `json:"name"`
	Type     AttachmentType `json:"type"`
	MimeType string         `json:"mimeType"`
	Size     int64          `json:"size"`
	Data     []byte         `json:"-"`
}

// Note is a single entry within a notepad.
type Note struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	AccentColor string      `json:"accentColor"`
	Attachment  *Attachment `json:"attachment"`
	Collapsed   bool        `json:"collapsed"`
}

// Notepad is the top-level persisted unit: a titled, ordered list of
// notes. Timestamps are Unix milliseconds, matching the file format.
type Notepad struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Created    int64  `json:"created"`
	LastUpdate int64  `json:"lastUpdate"`
	Notes      []Note `json:"notes"`
}

// Library is the full collection of notepads, keyed by notepad ID.
// The store gives no ordering; callers sort by LastUpdate descending.
type Library map[string]*Notepad

// Clone returns a deep copy of the attachment.
func (a *Attachment) Clone() *Attachment {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Data = append([]byte(nil), a.Data...)
	return &cp
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	cp := n
	cp.Attachment = n.Attachment.Clone()
	return cp
}

// Clone returns a deep copy of the notepad.
func (np *Notepad) Clone() *Notepad {
	if np == nil {
		return nil
	}
	cp := *np
	cp.Notes = make([]Note, len(np.Notes))
	for i, n := range np.Notes {
		cp.Notes[i] = n.Clone()
	}
	return &cp
}

// NoteIndex returns the position of the note with the given ID, or -1.
func (np *Notepad) NoteIndex(id string) int {
	for i, n := range np.Notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// FindNote returns the note with the given ID, or nil.
func (np *Notepad) FindNote(id string) *Note {
	if i := np.NoteIndex(id); i >= 0 {
		return &np.Notes[i]
	}
	return nil
}

// LibraryStore is durable key-value persistence for the Library.
type LibraryStore interface {
	// BulkPut writes all entries in one transaction, all-or-nothing.
	BulkPut(pads map[string]*Notepad) error
	// GetAll reads every record; an empty library is not an error.
	GetAll() (Library, error)
	// Delete removes one record; deleting a missing ID is a no-op.
	Delete(id string) error
	// Clear removes all records. Callers must fully validate any
	// restore payload before invoking this.
	Clear() error
}
