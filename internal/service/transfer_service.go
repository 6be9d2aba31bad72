package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"sidenotes/internal/codec"
	"sidenotes/internal/domain"
	"sidenotes/internal/reconcile"
)

// ─────────────────────────────────────────────────────────────
// Transfer Service — export, backup, import and restore
// ─────────────────────────────────────────────────────────────

// ExportMIME is the content type of every exported file. The payload
// is JSON, but the .txt/text-plain pairing keeps files shareable
// through channels that reject unknown extensions.
const ExportMIME = "text/plain"

// TransferService moves notepads across the file boundary: export and
// backup outward through a FileDeliverer, import and restore inward
// through the reconciliation engine. A guard keeps each operation
// class single-flight.
type TransferService struct {
	store    domain.LibraryStore
	engine   *reconcile.Engine
	deliver  FileDeliverer
	notepads *NotepadService
	emitter  EventEmitter
	guard    runningOpsGuard
	log      *logrus.Entry
}

// NewTransferService creates a TransferService.
func NewTransferService(
	store domain.LibraryStore,
	engine *reconcile.Engine,
	deliver FileDeliverer,
	notepads *NotepadService,
	emitter EventEmitter,
) *TransferService {
	return &TransferService{
		store:    store,
		engine:   engine,
		deliver:  deliver,
		notepads: notepads,
		emitter:  emitter,
		log:      logrus.WithField("component", "transfer"),
	}
}

// Busy reports whether an operation of the given class ("import",
// "export", "backup", "restore") is in flight.
func (t *TransferService) Busy(class string) bool {
	return t.guard.Busy(class)
}

// ExportNotepad serializes one notepad and hands it to the deliverer
// as <slugified-title>.sidenotes.txt.
func (t *TransferService) ExportNotepad(ctx context.Context, padID string) (DeliveryTag, error) {
	if !t.guard.TryLock("export") {
		return "", ErrOperationInFlight
	}
	defer t.guard.Unlock("export")

	t.notepads.Flush() // the exported file must carry the latest edits

	lib, err := t.store.GetAll()
	if err != nil {
		return "", err
	}
	np, ok := lib[padID]
	if !ok {
		return "", fmt.Errorf("notepad not found: %s", padID)
	}

	payload, err := codec.Serialize(np)
	if err != nil {
		return "", err
	}

	filename := ExportFilename(np.Title)
	tag, err := t.deliver.Deliver(ctx, payload, filename, ExportMIME, np.Title)
	if err != nil {
		return "", fmt.Errorf("deliver export: %w", err)
	}
	t.log.WithFields(logrus.Fields{"notepad": padID, "file": filename, "outcome": tag}).Info("notepad exported")
	return tag, nil
}

// BackupLibrary serializes the whole library and hands it to the
// deliverer as notepads_<YYYYMMDD>.backup.sidenotes.txt.
func (t *TransferService) BackupLibrary(ctx context.Context) (DeliveryTag, error) {
	if !t.guard.TryLock("backup") {
		return "", ErrOperationInFlight
	}
	defer t.guard.Unlock("backup")

	payload, filename, err := t.backupPayload()
	if err != nil {
		return "", err
	}

	tag, err := t.deliver.Deliver(ctx, payload, filename, ExportMIME, "Sidenotes backup")
	if err != nil {
		return "", fmt.Errorf("deliver backup: %w", err)
	}
	t.log.WithFields(logrus.Fields{"file": filename, "outcome": tag}).Info("library backed up")
	return tag, nil
}

// WriteBackupFile writes the backup payload into dir and returns the
// full path. Used by the scheduled-backup path, which has no user in
// the loop to deliver to.
func (t *TransferService) WriteBackupFile(dir string) (string, error) {
	payload, filename, err := t.backupPayload()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}

func (t *TransferService) backupPayload() ([]byte, string, error) {
	t.notepads.Flush()

	lib, err := t.store.GetAll()
	if err != nil {
		return nil, "", err
	}
	payload, err := codec.SerializeLibrary(lib)
	if err != nil {
		return nil, "", err
	}
	return payload, BackupFilename(time.Now()), nil
}

// ImportText feeds a user-picked file's text through the
// reconciliation engine and refreshes the in-memory library when it
// wrote anything.
func (t *TransferService) ImportText(ctx context.Context, text string) (*reconcile.ImportOutcome, error) {
	if !t.guard.TryLock("import") {
		return nil, ErrOperationInFlight
	}
	defer t.guard.Unlock("import")

	out, err := t.engine.ImportNotepad(ctx, []byte(text))
	if err != nil {
		return nil, err
	}
	if out.Resolution != reconcile.ResolutionCancelled {
		if err := t.notepads.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RestoreText feeds a backup file's text through the reconciliation
// engine and, on success, discards all transient state and reloads
// from the store.
func (t *TransferService) RestoreText(ctx context.Context, text string) (*reconcile.RestoreOutcome, error) {
	if !t.guard.TryLock("restore") {
		return nil, ErrOperationInFlight
	}
	defer t.guard.Unlock("restore")

	out, err := t.engine.RestoreBackup(ctx, []byte(text))
	if err != nil {
		return nil, err
	}
	if out.ReloadRequired {
		if err := t.notepads.Reload(ctx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ExportFilename derives the export filename from a notepad title.
func ExportFilename(title string) string {
	return Slugify(title) + ".sidenotes.txt"
}

// BackupFilename derives the dated backup filename.
func BackupFilename(now time.Time) string {
	return "notepads_" + now.Format("20060102") + ".backup.sidenotes.txt"
}

// Slugify lowercases a title and collapses every run of non-alphanumeric
// characters into single dashes. An empty result falls back to "notepad".
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "notepad"
	}
	return slug
}
