// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Instead, use
// setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/blueprint/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// One connection only: every new connection to ":memory:" is a new database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedArtifact inserts an artifact row directly and returns its ID.
func seedArtifact(t *testing.T, database *sql.DB, id, typ, status, parentID string) string {
	t.Helper()
	var parent sql.NullString
	if parentID != "" {
		parent = sql.NullString{String: parentID, Valid: true}
	}
	_, err := database.Exec(
		"INSERT INTO artifacts (id, type, status, title, parent_id) VALUES (?, ?, ?, ?, ?)",
		id, typ, status, "Seeded "+id, parent,
	)
	if err != nil {
		t.Fatalf("failed to seed artifact %s: %v", id, err)
	}
	return id
}

// seedChain inserts GL-001 <- FT-001 <- UC-001, all APPROVED.
func seedChain(t *testing.T, database *sql.DB) {
	t.Helper()
	seedArtifact(t, database, "GL-001", "Goal", "APPROVED", "")
	seedArtifact(t, database, "FT-001", "Feature", "APPROVED", "GL-001")
	seedArtifact(t, database, "UC-001", "UseCase", "APPROVED", "FT-001")
}
