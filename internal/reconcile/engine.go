package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"sidenotes/internal/codec"
	"sidenotes/internal/domain"
	"sidenotes/internal/id"
)

// ─────────────────────────────────────────────────────────────
// Reconciliation engine — mediates untrusted file payloads
// before they reach the library store. Validation happens fully
// in memory; durable state mutates only after it succeeds.
// ─────────────────────────────────────────────────────────────

// Resolution tags how an import or restore concluded.
type Resolution string

const (
	ResolutionWritten   Resolution = "written"
	ResolutionKeptBoth  Resolution = "kept-both"
	ResolutionReplaced  Resolution = "replaced"
	ResolutionCancelled Resolution = "cancelled"
)

// ImportOutcome reports the result of a single-notepad import.
type ImportOutcome struct {
	Resolution Resolution      `json:"resolution"`
	Notepad    *domain.Notepad `json:"notepad"`
}

// RestoreOutcome reports the result of a full-library restore.
type RestoreOutcome struct {
	Resolution Resolution `json:"resolution"`
	Restored   int        `json:"restored"`
	Dropped    int        `json:"dropped"`
	// ReloadRequired signals that in-memory state must be discarded
	// and re-read from the store.
	ReloadRequired bool `json:"reloadRequired"`
}

// Engine validates untrusted payloads and drives user-confirmed
// merges into the library store.
type Engine struct {
	store  domain.LibraryStore
	prompt Prompt
	log    *logrus.Entry
}

// NewEngine creates an Engine.
func NewEngine(store domain.LibraryStore, prompt Prompt) *Engine {
	return &Engine{
		store:  store,
		prompt: prompt,
		log:    logrus.WithField("component", "reconcile"),
	}
}

// ImportNotepad imports a single-notepad file. A collision with an
// existing library entry is resolved by the user: keep both (fresh
// id), replace, or cancel. Exactly one resolution executes.
func (e *Engine) ImportNotepad(ctx context.Context, raw []byte) (*ImportOutcome, error) {
	kind, err := Classify(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case PayloadBackup:
		// The user picked a backup file for a single import.
		return nil, fmt.Errorf("%w: this file is a full backup — use Restore instead", domain.ErrInvalidStructure)
	case PayloadUnknown:
		return nil, fmt.Errorf("%w: file has no notes list", domain.ErrInvalidStructure)
	}

	np, err := codec.Deserialize(raw)
	if err != nil {
		return nil, err
	}
	if np.ID == "" {
		np.ID = id.New("notepad")
	}

	lib, err := e.store.GetAll()
	if err != nil {
		return nil, err
	}

	existing, collision := lib[np.ID]
	if !collision {
		if err := e.store.BulkPut(map[string]*domain.Notepad{np.ID: np}); err != nil {
			return nil, err
		}
		e.log.WithField("notepad", np.ID).Info("imported notepad")
		return &ImportOutcome{Resolution: ResolutionWritten, Notepad: np}, nil
	}

	choice, err := e.prompt.Confirm(ctx,
		fmt.Sprintf("A notepad named %q already exists. What would you like to do?", existing.Title),
		[]string{"Keep both", "Replace", "Cancel"},
	)
	if err != nil {
		return nil, err
	}

	switch choice {
	case 0: // keep both
		np.ID = id.New("notepad")
		if err := e.store.BulkPut(map[string]*domain.Notepad{np.ID: np}); err != nil {
			return nil, err
		}
		e.log.WithField("notepad", np.ID).Info("imported notepad under fresh id")
		return &ImportOutcome{Resolution: ResolutionKeptBoth, Notepad: np}, nil
	case 1: // replace
		if err := e.store.BulkPut(map[string]*domain.Notepad{np.ID: np}); err != nil {
			return nil, err
		}
		e.log.WithField("notepad", np.ID).Info("replaced existing notepad")
		return &ImportOutcome{Resolution: ResolutionReplaced, Notepad: np}, nil
	default: // cancel or dismissed
		return &ImportOutcome{Resolution: ResolutionCancelled}, nil
	}
}

// RestoreBackup destructively replaces the library from a backup
// payload. The user confirms before anything else happens; the store
// is cleared only after the whole payload validated in memory and at
// least one entry survived filtering.
func (e *Engine) RestoreBackup(ctx context.Context, raw []byte) (*RestoreOutcome, error) {
	choice, err := e.prompt.Confirm(ctx,
		"Restoring a backup replaces all local notepads. This cannot be undone. Continue?",
		[]string{"Restore", "Cancel"},
	)
	if err != nil {
		return nil, err
	}
	if choice != 0 {
		return &RestoreOutcome{Resolution: ResolutionCancelled}, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}

	now := time.Now().UnixMilli()
	valid := make(map[string]*domain.Notepad)
	dropped := 0
	for key, cand := range top {
		np, err := sanitizeNotepad(cand, now)
		if err != nil {
			e.log.WithField("entry", key).WithError(err).Warn("dropping invalid backup entry")
			dropped++
			continue
		}
		valid[np.ID] = np
	}

	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: backup contained no restorable notepads", domain.ErrNoValidData)
	}

	// Validation succeeded end to end; only now touch durable state.
	if err := e.store.Clear(); err != nil {
		return nil, err
	}
	if err := e.store.BulkPut(valid); err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{"restored": len(valid), "dropped": dropped}).Info("library restored")
	return &RestoreOutcome{
		Resolution:     ResolutionWritten,
		Restored:       len(valid),
		Dropped:        dropped,
		ReloadRequired: true,
	}, nil
}
