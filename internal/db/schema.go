package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh blueprint projects.
// It reflects the state after every migration in migrations.go.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Tests build
// their databases from GetSchemaSQL() and never hardcode CREATE TABLE
// statements, so a repository referencing a missing column fails at once
// with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Bump the version recorded for fresh installs (latestVersion)
const SchemaSQL = `
-- Artifacts: the canonical store. Rows are never deleted.
CREATE TABLE IF NOT EXISTS artifacts (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL CHECK (type IN ('Goal', 'Feature', 'Research', 'UseCase', 'Task', 'UMLModel')),
	status TEXT NOT NULL CHECK (status IN ('DRAFT', 'REVIEW', 'APPROVED', 'NEEDS_FIX', 'REJECTED', 'DONE', 'ARCHIVED')),
	title TEXT NOT NULL,
	parent_id TEXT REFERENCES artifacts(id),
	body TEXT NOT NULL DEFAULT '',
	attributes TEXT NOT NULL DEFAULT '{}',
	sprint_id TEXT REFERENCES sprints(id),
	revision_count INTEGER NOT NULL DEFAULT 1 CHECK (revision_count >= 1),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_artifacts_type ON artifacts(type);
CREATE INDEX IF NOT EXISTS idx_artifacts_status ON artifacts(status);
CREATE INDEX IF NOT EXISTS idx_artifacts_parent ON artifacts(parent_id);

-- Horizontal edges: artifact_id depends on depends_on.
CREATE TABLE IF NOT EXISTS artifact_dependencies (
	artifact_id TEXT NOT NULL REFERENCES artifacts(id),
	depends_on TEXT NOT NULL REFERENCES artifacts(id),
	position INTEGER NOT NULL,
	PRIMARY KEY (artifact_id, depends_on)
);

CREATE INDEX IF NOT EXISTS idx_artifact_dependencies_target ON artifact_dependencies(depends_on);

-- Sprints and their ordered checkmark lists
CREATE TABLE IF NOT EXISTS sprints (
	id TEXT PRIMARY KEY,
	goal TEXT,
	status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'closed')),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	closed_at DATETIME
);

CREATE TABLE IF NOT EXISTS sprint_tasks (
	sprint_id TEXT NOT NULL REFERENCES sprints(id),
	task_id TEXT NOT NULL REFERENCES artifacts(id),
	position INTEGER NOT NULL,
	checked INTEGER NOT NULL DEFAULT 0,
	checked_at DATETIME,
	PRIMARY KEY (sprint_id, task_id)
);

-- Append-only artifact history (creations, transitions, edits, scheduling)
CREATE TABLE IF NOT EXISTS artifact_history (
	id TEXT PRIMARY KEY,
	artifact_id TEXT NOT NULL,
	action TEXT NOT NULL CHECK (action IN ('create', 'status', 'update', 'schedule')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	note TEXT,
	actor_id TEXT,
	revision INTEGER NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_artifact_history_artifact ON artifact_history(artifact_id);

-- Knowledge store: free text keyed by topic, decoupled from artifacts
CREATE TABLE IF NOT EXISTS knowledge (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	topic TEXT NOT NULL,
	content TEXT NOT NULL,
	actor_id TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_knowledge_topic ON knowledge(topic);

-- Store metadata. 'generation' is bumped by every committed write.
CREATE TABLE IF NOT EXISTS store_meta (
	key TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);

INSERT OR IGNORE INTO store_meta (key, value) VALUES ('generation', 0);
`

// InitSchema creates the schema on a fresh database, or runs pending
// migrations on an existing one.
func InitSchema(db *sql.DB) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(db)
	}

	// Fresh install: create the modern schema directly and mark every
	// migration as applied.
	if _, err := db.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := createVersionTable(db); err != nil {
		return err
	}
	for i := 1; i <= latestVersion(); i++ {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", i); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
