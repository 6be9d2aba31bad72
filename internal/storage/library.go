package storage

import (
	"fmt"

	"sidenotes/internal/codec"
	"sidenotes/internal/domain"
)

// LibraryStore implements domain.LibraryStore using SQLite. Documents
// are written whole on every put; there are no partial-field updates.
type LibraryStore struct {
	db *DB
}

// NewLibraryStore creates a LibraryStore over an open handle.
func NewLibraryStore(db *DB) *LibraryStore {
	return &LibraryStore{db: db}
}

// BulkPut writes all entries in one transaction. On any failure the
// transaction rolls back; no entry is partially committed.
func (s *LibraryStore) BulkPut(pads map[string]*domain.Notepad) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin bulk put: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO notepads (id, doc, last_update) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, last_update = excluded.last_update`,
	)
	if err != nil {
		return fmt.Errorf("prepare bulk put: %w", err)
	}
	defer stmt.Close()

	for padID, np := range pads {
		doc, err := codec.Serialize(np)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(padID, string(doc), np.LastUpdate); err != nil {
			return fmt.Errorf("put notepad %s: %w", padID, err)
		}
	}

	return tx.Commit()
}

// GetAll reads every record. An empty library returns an empty map.
func (s *LibraryStore) GetAll() (domain.Library, error) {
	rows, err := s.db.conn.Query(`SELECT id, doc FROM notepads`)
	if err != nil {
		return nil, fmt.Errorf("read library: %w", err)
	}
	defer rows.Close()

	lib := domain.Library{}
	for rows.Next() {
		var padID, doc string
		if err := rows.Scan(&padID, &doc); err != nil {
			return nil, fmt.Errorf("scan notepad: %w", err)
		}
		np, err := codec.Deserialize([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("decode notepad %s: %w", padID, err)
		}
		lib[padID] = np
	}
	return lib, rows.Err()
}

// Delete removes one record; a missing ID is a successful no-op.
func (s *LibraryStore) Delete(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM notepads WHERE id = ?`, id)
	return err
}

// Clear removes all records. Only the restore path calls this, and
// only after its payload validated end to end.
func (s *LibraryStore) Clear() error {
	_, err := s.db.conn.Exec(`DELETE FROM notepads`)
	return err
}

var _ domain.LibraryStore = (*LibraryStore)(nil)
