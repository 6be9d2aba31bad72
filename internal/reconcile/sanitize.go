package reconcile

import (
	"encoding/json"
	"fmt"

	"sidenotes/internal/codec"
	"sidenotes/internal/domain"
	"sidenotes/internal/id"
)

// DefaultTitle backfills a restored notepad that arrived without one.
const DefaultTitle = "Untitled Notepad"

// looseNotepad tolerates missing fields; every field is repaired or
// defaulted individually so one bad field never discards the rest.
type looseNotepad struct {
	ID         json.RawMessage `json:"id"`
	Title      json.RawMessage `json:"title"`
	Created    json.RawMessage `json:"created"`
	LastUpdate json.RawMessage `json:"lastUpdate"`
	Notes      json.RawMessage `json:"notes"`
}

type looseNote struct {
	ID          json.RawMessage `json:"id"`
	Title       json.RawMessage `json:"title"`
	Content     json.RawMessage `json:"content"`
	AccentColor json.RawMessage `json:"accentColor"`
	Attachment  json.RawMessage `json:"attachment"`
	Collapsed   json.RawMessage `json:"collapsed"`
}

// sanitizeNotepad validates one untrusted backup candidate and repairs
// it into canonical shape. It fails only on the two hard requirements
// — id present, notes an array — everything else is backfilled:
// title → "Untitled Notepad", timestamps → now, note ids → generated,
// strings → empty, attachments → decoded or dropped.
func sanitizeNotepad(raw json.RawMessage, now int64) (*domain.Notepad, error) {
	var cand looseNotepad
	if err := json.Unmarshal(raw, &cand); err != nil {
		return nil, fmt.Errorf("%w: candidate is not an object", domain.ErrInvalidStructure)
	}

	padID := asString(cand.ID, "")
	if padID == "" {
		return nil, fmt.Errorf("%w: missing id", domain.ErrInvalidStructure)
	}

	var rawNotes []json.RawMessage
	if cand.Notes == nil {
		return nil, fmt.Errorf("%w: missing notes", domain.ErrInvalidStructure)
	}
	if err := json.Unmarshal(cand.Notes, &rawNotes); err != nil {
		return nil, fmt.Errorf("%w: notes is not an array", domain.ErrInvalidStructure)
	}

	np := &domain.Notepad{
		ID:         padID,
		Title:      asString(cand.Title, DefaultTitle),
		Created:    asInt64(cand.Created, now),
		LastUpdate: asInt64(cand.LastUpdate, now),
		Notes:      make([]domain.Note, 0, len(rawNotes)),
	}

	for _, rn := range rawNotes {
		np.Notes = append(np.Notes, sanitizeNote(rn))
	}

	return np, nil
}

// sanitizeNote never fails: a note that is not even an object becomes
// an empty note with a fresh id.
func sanitizeNote(raw json.RawMessage) domain.Note {
	var cand looseNote
	_ = json.Unmarshal(raw, &cand)

	n := domain.Note{
		ID:          asString(cand.ID, ""),
		Title:       asString(cand.Title, ""),
		Content:     asString(cand.Content, ""),
		AccentColor: asString(cand.AccentColor, ""),
		Collapsed:   asBool(cand.Collapsed),
	}
	if n.ID == "" {
		n.ID = id.New("note")
	}

	if cand.Attachment != nil {
		var ap codec.AttachmentPayload
		if err := json.Unmarshal(cand.Attachment, &ap); err == nil && ap.Blob != "" {
			if data, mimeType, err := codec.DecodeBlob(ap.Blob); err == nil {
				if mimeType == "" {
					mimeType = ap.MimeType
				}
				n.Attachment = &domain.Attachment{
					Name:     ap.Name,
					Type:     domain.AttachmentType(ap.Type),
					MimeType: mimeType,
					Size:     ap.Size,
					Data:     data,
				}
			}
		}
	}

	return n
}

func asString(raw json.RawMessage, def string) string {
	if raw == nil {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def
	}
	return s
}

func asInt64(raw json.RawMessage, def int64) int64 {
	if raw == nil {
		return def
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return def
	}
	return v
}

func asBool(raw json.RawMessage) bool {
	if raw == nil {
		return false
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return v
}
