package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with a small, fully traceable demo
// project: one goal down to a handful of tasks, one research spike and a
// couple of knowledge notes. Statuses are chosen so the backlog is non-empty.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339)

	artifacts := []struct{ id, typ, status, title, parent, attrs string }{
		{"GL-001", "Goal", "APPROVED", "Let teams plan work with full traceability", "", `{}`},
		{"FT-001", "Feature", "APPROVED", "Sprint planning from an approved backlog", "GL-001", `{"research_required":"true"}`},
		{"RS-001", "Research", "APPROVED", "Can topological ordering explain sprint order?", "FT-001", `{"hypothesis":"Kahn ordering with request-order ties is predictable enough","verdict":"SUCCESS"}`},
		{"UC-001", "UseCase", "APPROVED", "Planner starts a sprint from ready tasks", "FT-001", `{}`},
		{"TSK-001", "Task", "DONE", "Store sprint records", "UC-001", `{}`},
		{"TSK-002", "Task", "APPROVED", "Order tasks by dependency", "UC-001", `{}`},
		{"TSK-003", "Task", "APPROVED", "Render sprint checklist", "UC-001", `{}`},
		{"TSK-004", "Task", "DRAFT", "Export sprint report", "UC-001", `{}`},
	}
	for _, a := range artifacts {
		var parent sql.NullString
		if a.parent != "" {
			parent = sql.NullString{String: a.parent, Valid: true}
		}
		if _, err := database.Exec(
			"INSERT INTO artifacts (id, type, status, title, parent_id, attributes, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			a.id, a.typ, a.status, a.title, parent, a.attrs, now, now,
		); err != nil {
			return fmt.Errorf("seed artifacts: %w", err)
		}
	}

	deps := []struct{ from, to string }{
		{"TSK-002", "TSK-001"},
		{"TSK-003", "TSK-002"},
	}
	for i, d := range deps {
		if _, err := database.Exec(
			"INSERT INTO artifact_dependencies (artifact_id, depends_on, position) VALUES (?, ?, ?)",
			d.from, d.to, i,
		); err != nil {
			return fmt.Errorf("seed dependencies: %w", err)
		}
	}

	notes := []struct{ topic, content string }{
		{"Terminology", "Backlog: APPROVED tasks whose dependencies are all DONE."},
		{"Anti_Patterns", "Skipping REVIEW: DRAFT never jumps straight to APPROVED."},
	}
	for _, n := range notes {
		if _, err := database.Exec(
			"INSERT INTO knowledge (topic, content, actor_id, created_at) VALUES (?, ?, 'seed', ?)",
			n.topic, n.content, now,
		); err != nil {
			return fmt.Errorf("seed knowledge: %w", err)
		}
	}

	if _, err := database.Exec("UPDATE store_meta SET value = value + 1 WHERE key = 'generation'"); err != nil {
		return fmt.Errorf("seed generation: %w", err)
	}
	return nil
}
