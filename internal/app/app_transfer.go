package app

import (
	"fmt"
	"os"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// ============================================================
// Export / Backup
// ============================================================

func (a *App) ExportNotepad(padID string) (string, error) {
	if err := a.guardStorage(); err != nil {
		return "", err
	}
	tag, err := a.transfer.ExportNotepad(a.ctx, padID)
	if err != nil {
		return "", err
	}
	return string(tag), nil
}

func (a *App) BackupLibrary() (string, error) {
	if err := a.guardStorage(); err != nil {
		return "", err
	}
	tag, err := a.transfer.BackupLibrary(a.ctx)
	if err != nil {
		return "", err
	}
	return string(tag), nil
}

// RunBackupNow triggers the scheduled-backup path immediately, writing
// into the configured backup directory without a save dialog.
func (a *App) RunBackupNow() error {
	if err := a.guardStorage(); err != nil {
		return err
	}
	a.backups.RunOnce(a.ctx)
	return nil
}

// ============================================================
// Import / Restore
// ============================================================

// ImportView is the frontend-facing summary of an import.
type ImportView struct {
	Resolution string `json:"resolution"`
	NotepadID  string `json:"notepadId,omitempty"`
}

// RestoreView is the frontend-facing summary of a restore.
type RestoreView struct {
	Resolution string `json:"resolution"`
	Restored   int    `json:"restored"`
	Dropped    int    `json:"dropped"`
}

// ImportFromFile lets the user pick an exported file and runs it
// through the import pipeline.
func (a *App) ImportFromFile() (*ImportView, error) {
	if err := a.guardStorage(); err != nil {
		return nil, err
	}
	text, ok, err := a.pickTransferFile("Import Notepad")
	if err != nil || !ok {
		return nil, err
	}

	out, err := a.transfer.ImportText(a.ctx, text)
	if err != nil {
		return nil, err
	}
	view := &ImportView{Resolution: string(out.Resolution)}
	if out.Notepad != nil {
		view.NotepadID = out.Notepad.ID
	}
	return view, nil
}

// RestoreFromFile lets the user pick a backup file and replaces the
// whole library with its contents after confirmation.
func (a *App) RestoreFromFile() (*RestoreView, error) {
	if err := a.guardStorage(); err != nil {
		return nil, err
	}
	text, ok, err := a.pickTransferFile("Restore Backup")
	if err != nil || !ok {
		return nil, err
	}

	out, err := a.transfer.RestoreText(a.ctx, text)
	if err != nil {
		return nil, err
	}
	return &RestoreView{
		Resolution: string(out.Resolution),
		Restored:   out.Restored,
		Dropped:    out.Dropped,
	}, nil
}

// TransferBusy reports whether an operation of the given class is in
// flight, so the frontend can disable the matching button.
func (a *App) TransferBusy(class string) bool {
	if a.transfer == nil {
		return false
	}
	return a.transfer.Busy(class)
}

// RespondConfirm delivers the user's answer to a pending confirmation
// dialog. choice is the option index, or -1 for dismissal.
func (a *App) RespondConfirm(confirmID string, choice int) {
	if a.confirm != nil {
		a.confirm.Resolve(confirmID, choice)
	}
}

// pickTransferFile opens the file picker and reads the chosen file.
// ok is false when the user cancelled.
func (a *App) pickTransferFile(title string) (text string, ok bool, err error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: title,
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Sidenotes files", Pattern: "*.sidenotes.txt"},
			{DisplayName: "All Files", Pattern: "*.*"},
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("open dialog: %w", err)
	}
	if path == "" {
		return "", false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("read file: %w", err)
	}
	return string(data), true, nil
}
