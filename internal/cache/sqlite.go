// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a Cache backed by a single-file SQLite database. One file can
// be shared by concurrent invocations; WAL mode keeps readers unblocked
// while a writer stores a new response.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the cache database at path, creating parent
// directories as needed.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		stored_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close releases the database connection.
func (c *SQLite) Close() error {
	return c.db.Close()
}

// Get returns the payload stored under key, if any.
func (c *SQLite) Get(key string) ([]byte, bool, error) {
	if err := keyCheck(key); err != nil {
		return nil, false, err
	}

	var value []byte
	err := c.db.QueryRow(`SELECT value FROM responses WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	return value, true, nil
}

// Put stores the payload under key, replacing any previous value.
func (c *SQLite) Put(key string, value []byte) error {
	if err := keyCheck(key); err != nil {
		return err
	}

	_, err := c.db.Exec(
		`INSERT INTO responses (key, value, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, stored_at=excluded.stored_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}
