// ABOUTME: Connection management for the travel-time pick database.
// ABOUTME: Opens or creates a SQLite database and installs the default schema.
package pickdb

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Memory is the path of a temporary in-memory database.
const Memory = ":memory:"

// DB is a connection to a pick database.
type DB struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// Open connects to the pick database at path, creating the file and the
// default tables and views if they do not already exist. Pass Memory for a
// throwaway in-memory database.
func Open(path string) (*DB, error) {
	if path != Memory {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &DB{db: db, path: path, log: slog.Default()}

	// An in-memory database exists per connection, so the pool must be
	// pinned to a single connection to see one schema.
	if path == Memory {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return d, nil
}

// Path returns the database path this connection was opened with.
func (d *DB) Path() string {
	return d.path
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) exec(query string, args ...any) (sql.Result, error) {
	d.log.Debug("pickdb exec", "sql", query)
	return d.db.Exec(query, args...)
}

func (d *DB) query(query string, args ...any) (*sql.Rows, error) {
	d.log.Debug("pickdb query", "sql", query)
	return d.db.Query(query, args...)
}
