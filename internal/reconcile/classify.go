package reconcile

import (
	"encoding/json"
	"fmt"

	"sidenotes/internal/domain"
)

// PayloadKind is the detected shape of an untrusted import payload.
type PayloadKind int

const (
	// PayloadUnknown is an object that is neither a notepad nor
	// recognizably a backup.
	PayloadUnknown PayloadKind = iota
	// PayloadNotepad is a single notepad: top-level "notes" array.
	PayloadNotepad
	// PayloadBackup is a library backup: a keyed mapping whose values
	// carry "notes" fields.
	PayloadBackup
)

// Classify detects whether raw is a single notepad or a full backup.
// The file format predates any explicit kind tag, so detection is
// duck-typed on field presence and lives in this one function:
//
//   - a top-level "notes" array → single notepad
//   - no top-level "notes", but some value is an object with a
//     "notes" field → backup
//   - anything else that parses as an object → unknown
//
// A backup whose only entry lacks "notes" is indistinguishable from a
// malformed notepad and classifies as unknown.
func Classify(raw []byte) (PayloadKind, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return PayloadUnknown, fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		// Parsable JSON, but not an object at all.
		return PayloadUnknown, nil
	}

	if notes, ok := top["notes"]; ok {
		var seq []json.RawMessage
		if err := json.Unmarshal(notes, &seq); err == nil {
			return PayloadNotepad, nil
		}
	}

	for _, v := range top {
		var entry map[string]json.RawMessage
		if err := json.Unmarshal(v, &entry); err != nil {
			continue
		}
		if _, ok := entry["notes"]; ok {
			return PayloadBackup, nil
		}
	}

	return PayloadUnknown, nil
}
