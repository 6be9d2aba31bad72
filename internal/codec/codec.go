package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"sidenotes/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Codec — notepad ⇄ JSON-safe payload for export, import and
// storage at rest. Binary attachment data travels as a Base64
// data URL string; in memory it is raw bytes.
// ─────────────────────────────────────────────────────────────

// NotepadPayload mirrors domain.Notepad with JSON-safe attachments.
type NotepadPayload struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Created    int64         `json:"created"`
	LastUpdate int64         `json:"lastUpdate"`
	Notes      []NotePayload `json:"notes"`
}

// NotePayload mirrors domain.Note.
type NotePayload struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Content     string             `json:"content"`
	AccentColor string             `json:"accentColor"`
	Attachment  *AttachmentPayload `json:"attachment"`
	Collapsed   bool               `json:"collapsed"`
}

// AttachmentPayload mirrors domain.Attachment with the blob encoded.
type AttachmentPayload struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Blob     string `json:"blob"`
}

// EncodeBlob renders attachment data as a data URL string.
func EncodeBlob(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeBlob parses a data URL string back into raw bytes and the
// embedded MIME type. Anything that is not a well-formed Base64 data
// URL returns ErrAttachmentDecode.
func DecodeBlob(blob string) ([]byte, string, error) {
	if !strings.HasPrefix(blob, "data:") {
		return nil, "", fmt.Errorf("%w: not a data URL", domain.ErrAttachmentDecode)
	}
	rest := blob[len("data:"):]
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return nil, "", fmt.Errorf("%w: missing base64 marker", domain.ErrAttachmentDecode)
	}
	mimeType := rest[:sep]
	data, err := base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrAttachmentDecode, err)
	}
	return data, mimeType, nil
}

// ToPayload deep-copies a notepad into its wire form. The input is
// never mutated.
func ToPayload(np *domain.Notepad) *NotepadPayload {
	p := &NotepadPayload{
		ID:         np.ID,
		Title:      np.Title,
		Created:    np.Created,
		LastUpdate: np.LastUpdate,
		Notes:      make([]NotePayload, len(np.Notes)),
	}
	for i, n := range np.Notes {
		wp := NotePayload{
			ID:          n.ID,
			Title:       n.Title,
			Content:     n.Content,
			AccentColor: n.AccentColor,
			Collapsed:   n.Collapsed,
		}
		if a := n.Attachment; a != nil {
			wp.Attachment = &AttachmentPayload{
				Name:     a.Name,
				Type:     string(a.Type),
				MimeType: a.MimeType,
				Size:     a.Size,
				Blob:     EncodeBlob(a.MimeType, a.Data),
			}
		}
		p.Notes[i] = wp
	}
	return p
}

// FromPayload reconstructs a notepad from its wire form. A malformed
// attachment blob drops that note's attachment rather than failing
// the whole notepad.
func FromPayload(p *NotepadPayload) *domain.Notepad {
	np := &domain.Notepad{
		ID:         p.ID,
		Title:      p.Title,
		Created:    p.Created,
		LastUpdate: p.LastUpdate,
		Notes:      make([]domain.Note, len(p.Notes)),
	}
	for i, wp := range p.Notes {
		n := domain.Note{
			ID:          wp.ID,
			Title:       wp.Title,
			Content:     wp.Content,
			AccentColor: wp.AccentColor,
			Collapsed:   wp.Collapsed,
		}
		if wp.Attachment != nil {
			if data, mimeType, err := DecodeBlob(wp.Attachment.Blob); err == nil {
				if mimeType == "" {
					mimeType = wp.Attachment.MimeType
				}
				n.Attachment = &domain.Attachment{
					Name:     wp.Attachment.Name,
					Type:     domain.AttachmentType(wp.Attachment.Type),
					MimeType: mimeType,
					Size:     wp.Attachment.Size,
					Data:     data,
				}
			}
		}
		np.Notes[i] = n
	}
	return np
}

// Serialize renders a notepad as the UTF-8 JSON export payload.
func Serialize(np *domain.Notepad) ([]byte, error) {
	data, err := json.Marshal(ToPayload(np))
	if err != nil {
		return nil, fmt.Errorf("serialize notepad: %w", err)
	}
	return data, nil
}

// Deserialize parses an export payload back into a notepad.
func Deserialize(data []byte) (*domain.Notepad, error) {
	var p NotepadPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}
	return FromPayload(&p), nil
}

// SerializeLibrary renders the full library as the backup payload:
// a JSON object mapping notepad ID to notepad.
func SerializeLibrary(lib domain.Library) ([]byte, error) {
	out := make(map[string]*NotepadPayload, len(lib))
	for padID, np := range lib {
		out[padID] = ToPayload(np)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("serialize library: %w", err)
	}
	return data, nil
}
