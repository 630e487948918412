package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// BusyTimeoutMillis is how long SQLite waits on a locked database before
// returning SQLITE_BUSY to the caller.
const BusyTimeoutMillis = 5000

var (
	mu     sync.Mutex
	db     *sql.DB
	dbPath string
)

// DSN builds the go-sqlite3 data source name for a database file. Every
// transaction starts with BEGIN IMMEDIATE so writers serialize on the
// database lock instead of failing on upgrade, and foreign keys are enforced.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=%d&_foreign_keys=on", path, BusyTimeoutMillis)
}

// Open opens (creating if needed) the database at path and brings its schema
// up to date. The caller owns the returned handle.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := InitSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return conn, nil
}

// GetDB returns the shared database connection for path, opening it on first
// use. Asking for a different path closes the previous connection.
func GetDB(path string) (*sql.DB, error) {
	mu.Lock()
	defer mu.Unlock()

	if db != nil && dbPath == path {
		return db, nil
	}
	if db != nil {
		db.Close()
		db = nil
	}

	conn, err := Open(path)
	if err != nil {
		return nil, err
	}
	db, dbPath = conn, path
	return db, nil
}

// Close closes the shared database connection
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if db == nil {
		return nil
	}
	err := db.Close()
	db, dbPath = nil, ""
	return err
}
