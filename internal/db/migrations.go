package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_artifact_store",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_sprint_scheduling",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_knowledge_store",
		Up:      migrationV3,
	},
}

func latestVersion() int {
	return migrations[len(migrations)-1].Version
}

// SchemaVersion reports the applied and the latest known schema versions.
func SchemaVersion(db *sql.DB) (applied, latest int, err error) {
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&applied)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return applied, latestVersion(), nil
}

func createVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// RunMigrations applies every migration newer than the recorded version,
// each in its own transaction.
func RunMigrations(db *sql.DB) error {
	if err := createVersionTable(db); err != nil {
		return err
	}

	var currentVersion int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("running migration", "version", migration.Version, "name", migration.Name)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

func execAll(tx *sql.Tx, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrationV1 creates the artifact store, its dependency edges, the history
// log and the generation counter.
func migrationV1(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS artifacts (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL CHECK (type IN ('Goal', 'Feature', 'Research', 'UseCase', 'Task', 'UMLModel')),
			status TEXT NOT NULL CHECK (status IN ('DRAFT', 'REVIEW', 'APPROVED', 'NEEDS_FIX', 'REJECTED', 'DONE', 'ARCHIVED')),
			title TEXT NOT NULL,
			parent_id TEXT REFERENCES artifacts(id),
			body TEXT NOT NULL DEFAULT '',
			attributes TEXT NOT NULL DEFAULT '{}',
			revision_count INTEGER NOT NULL DEFAULT 1 CHECK (revision_count >= 1),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_type ON artifacts(type)`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_status ON artifacts(status)`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_parent ON artifacts(parent_id)`,
		`CREATE TABLE IF NOT EXISTS artifact_dependencies (
			artifact_id TEXT NOT NULL REFERENCES artifacts(id),
			depends_on TEXT NOT NULL REFERENCES artifacts(id),
			position INTEGER NOT NULL,
			PRIMARY KEY (artifact_id, depends_on)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_artifact_dependencies_target ON artifact_dependencies(depends_on)`,
		`CREATE TABLE IF NOT EXISTS artifact_history (
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
		)`,
		`CREATE INDEX IF NOT EXISTS idx_artifact_history_artifact ON artifact_history(artifact_id)`,
		`CREATE TABLE IF NOT EXISTS store_meta (
			key TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
		`INSERT OR IGNORE INTO store_meta (key, value) VALUES ('generation', 0)`,
	)
}

// migrationV2 adds sprints and stamps tasks with the sprint they belong to.
func migrationV2(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS sprints (
			id TEXT PRIMARY KEY,
			goal TEXT,
			status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'closed')),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			closed_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS sprint_tasks (
			sprint_id TEXT NOT NULL REFERENCES sprints(id),
			task_id TEXT NOT NULL REFERENCES artifacts(id),
			position INTEGER NOT NULL,
			checked INTEGER NOT NULL DEFAULT 0,
			checked_at DATETIME,
			PRIMARY KEY (sprint_id, task_id)
		)`,
		`ALTER TABLE artifacts ADD COLUMN sprint_id TEXT REFERENCES sprints(id)`,
	)
}

// migrationV3 adds the knowledge store.
func migrationV3(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS knowledge (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			topic TEXT NOT NULL,
			content TEXT NOT NULL,
			actor_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_knowledge_topic ON knowledge(topic)`,
	)
}
