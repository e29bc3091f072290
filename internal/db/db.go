package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// connPragmas are applied to every pooled connection through the DSN.
const connPragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// OpenDB opens the Unload SQLite store at path and applies migrations.
// An in-memory database is pinned to a single connection so every query
// sees the same schema.
func OpenDB(path string) (*sql.DB, error) {
	dsn := MemoryPath + "?" + connPragmas
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
		dsn = "file:" + path + "?" + connPragmas + "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
