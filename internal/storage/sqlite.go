package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"sidenotes/internal/domain"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection. It is an explicit handle:
// the app layer opens it once on startup and passes it to every store
// that needs persistence. No package-level state.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite file at dbPath and runs the
// migration. A failure to open or migrate wraps
// domain.ErrStorageUnavailable — fatal to persistence for the session.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %v", domain.ErrStorageUnavailable, err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", domain.ErrStorageUnavailable, err)
	}
	// SQLite only supports one writer — limit to single connection to
	// prevent SQLITE_BUSY. This also gives callers sequential
	// consistency: a read issued after a committed write sees it.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: migrate: %v", domain.ErrStorageUnavailable, err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) migrate() error {
	migrations := []string{
		// Notepad documents are stored whole, as the JSON-safe wire
		// form (attachments Base64-encoded). last_update is duplicated
		// into a column for cheap ordering queries.
		`CREATE TABLE IF NOT EXISTS notepads (
			id TEXT PRIMARY KEY,
			doc TEXT NOT NULL,
			last_update INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notepads_last_update ON notepads(last_update)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
