package domain

import "errors"

// Error taxonomy for the persistence and import/restore paths.
// Callers match with errors.Is; wrapped messages carry the detail.
var (
	// ErrStorageUnavailable means the backing store cannot be opened.
	// Fatal to persistence for the session; surfaced once, never retried.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrCorruptFile means an import/restore payload is not parsable JSON.
	ErrCorruptFile = errors.New("corrupt file")

	// ErrInvalidStructure means the payload parsed but has the wrong
	// shape for the requested operation.
	ErrInvalidStructure = errors.New("invalid structure")

	// ErrNoValidData means a restore payload contained zero valid
	// entries after filtering; no destructive action was taken.
	ErrNoValidData = errors.New("no valid data")

	// ErrAttachmentDecode means a single attachment's Base64 payload is
	// malformed. Non-fatal: the note degrades to having no attachment.
	ErrAttachmentDecode = errors.New("attachment decode failed")
)
