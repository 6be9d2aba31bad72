package app

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"sidenotes/internal/codec"
	"sidenotes/internal/domain"
	"sidenotes/internal/id"
	"sidenotes/internal/reducer"
)

// ============================================================
// Notepads
// ============================================================

func (a *App) ListNotepads() ([]*domain.Notepad, error) {
	if err := a.guardStorage(); err != nil {
		return nil, err
	}
	return a.notepads.Library(), nil
}

func (a *App) GetActiveNotepad() (*domain.Notepad, error) {
	if err := a.guardStorage(); err != nil {
		return nil, err
	}
	return a.notepads.Active(), nil
}

func (a *App) SelectNotepad(padID string) (*domain.Notepad, error) {
	if err := a.guardStorage(); err != nil {
		return nil, err
	}
	return a.notepads.Select(a.ctx, padID)
}

func (a *App) CreateNotepad(title string) (*domain.Notepad, error) {
	if err := a.guardStorage(); err != nil {
		return nil, err
	}
	return a.notepads.Create(a.ctx, title)
}

func (a *App) DeleteNotepad(padID string) (*domain.Notepad, error) {
	if err := a.guardStorage(); err != nil {
		return nil, err
	}
	return a.notepads.Delete(a.ctx, padID)
}

func (a *App) UpdateNotepadTitle(title string) (*domain.Notepad, error) {
	return a.dispatch(reducer.UpdateTitle{Title: title})
}

// ============================================================
// Notes
// ============================================================

func (a *App) AddNote() (*domain.Notepad, error) {
	return a.dispatch(reducer.AddNote{Note: domain.Note{ID: id.New("note")}})
}

func (a *App) UpdateNote(note domain.Note) (*domain.Notepad, error) {
	return a.dispatch(reducer.UpdateNote{Note: note})
}

func (a *App) DeleteNote(noteID string) (*domain.Notepad, error) {
	return a.dispatch(reducer.DeleteNote{ID: noteID})
}

// DuplicateNote copies a note and inserts the copy right below the
// original, under a fresh ID.
func (a *App) DuplicateNote(noteID string) (*domain.Notepad, error) {
	if err := a.guardStorage(); err != nil {
		return nil, err
	}
	active := a.notepads.Active()
	if active == nil {
		return nil, fmt.Errorf("no active notepad")
	}
	original := active.FindNote(noteID)
	if original == nil {
		return nil, fmt.Errorf("note not found: %s", noteID)
	}
	dup := original.Clone()
	dup.ID = id.New("note")
	return a.dispatch(reducer.DuplicateNote{OriginalID: noteID, Note: dup})
}

// MoveNote repositions a note. Positions are 1-based as shown in the UI.
func (a *App) MoveNote(oldPos, newPos int) (*domain.Notepad, error) {
	return a.dispatch(reducer.MoveNote{OldIndex: oldPos, NewIndex: newPos})
}

func (a *App) Undo() (*domain.Notepad, error) {
	if err := a.guardStorage(); err != nil {
		return nil, err
	}
	np, ok := a.notepads.Undo(a.ctx)
	if !ok {
		return a.notepads.Active(), nil
	}
	return np, nil
}

func (a *App) Redo() (*domain.Notepad, error) {
	if err := a.guardStorage(); err != nil {
		return nil, err
	}
	np, ok := a.notepads.Redo(a.ctx)
	if !ok {
		return a.notepads.Active(), nil
	}
	return np, nil
}

func (a *App) dispatch(cmd reducer.Command) (*domain.Notepad, error) {
	if err := a.guardStorage(); err != nil {
		return nil, err
	}
	return a.notepads.Dispatch(a.ctx, cmd)
}

// ============================================================
// Attachments
// ============================================================

// AttachFile opens a native file picker and attaches the chosen file
// to a note. An empty return means the user cancelled.
func (a *App) AttachFile(noteID string) (*domain.Notepad, error) {
	if err := a.guardStorage(); err != nil {
		return nil, err
	}

	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Attach File",
	})
	if err != nil {
		return nil, fmt.Errorf("open dialog: %w", err)
	}
	if path == "" {
		return a.notepads.Active(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}

	active := a.notepads.Active()
	if active == nil {
		return nil, fmt.Errorf("no active notepad")
	}
	note := active.FindNote(noteID)
	if note == nil {
		return nil, fmt.Errorf("note not found: %s", noteID)
	}

	mimeType := detectMime(path, data)
	next := note.Clone()
	next.Attachment = &domain.Attachment{
		Name:     filepath.Base(path),
		Type:     attachmentType(mimeType),
		MimeType: mimeType,
		Size:     int64(len(data)),
		Data:     data,
	}
	return a.dispatch(reducer.UpdateNote{Note: next})
}

// RemoveAttachment detaches the file from a note.
func (a *App) RemoveAttachment(noteID string) (*domain.Notepad, error) {
	if err := a.guardStorage(); err != nil {
		return nil, err
	}
	active := a.notepads.Active()
	if active == nil {
		return nil, fmt.Errorf("no active notepad")
	}
	note := active.FindNote(noteID)
	if note == nil {
		return nil, fmt.Errorf("note not found: %s", noteID)
	}
	next := note.Clone()
	next.Attachment = nil
	return a.dispatch(reducer.UpdateNote{Note: next})
}

// GetAttachmentData returns a note's attachment as a base64 data URL.
// Called lazily by the frontend; attachment bytes never travel with
// the regular notepad payloads.
func (a *App) GetAttachmentData(noteID string) (string, error) {
	if err := a.guardStorage(); err != nil {
		return "", err
	}
	active := a.notepads.Active()
	if active == nil {
		return "", fmt.Errorf("no active notepad")
	}
	note := active.FindNote(noteID)
	if note == nil {
		return "", fmt.Errorf("note not found: %s", noteID)
	}
	if note.Attachment == nil {
		return "", nil
	}
	return codec.EncodeBlob(note.Attachment.MimeType, note.Attachment.Data), nil
}

func detectMime(path string, data []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}

func attachmentType(mimeType string) domain.AttachmentType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return domain.AttachmentImage
	case strings.HasPrefix(mimeType, "video/"):
		return domain.AttachmentVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return domain.AttachmentAudio
	default:
		return domain.AttachmentFile
	}
}
