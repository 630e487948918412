package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/blueprint/internal/ctxutil"
	"github.com/example/blueprint/internal/ports/secondary"
)

// HistoryRepository implements secondary.HistoryRepository with SQLite.
// Entries are append-only.
type HistoryRepository struct {
	db DBTX
}

// NewHistoryRepository creates a new SQLite history repository.
func NewHistoryRepository(db DBTX) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append writes a history entry. A missing ID gets a random UUID and a
// missing actor is taken from the context.
func (r *HistoryRepository) Append(ctx context.Context, entry *secondary.HistoryRecord) error {
	if entry.ArtifactID == "" || entry.Action == "" {
		return fmt.Errorf("history entry needs an artifact ID and an action")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.ActorID == "" {
		entry.ActorID = ctxutil.ActorFromContext(ctx)
	}

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO artifact_history
		(id, artifact_id, action, field_name, old_value, new_value, note, actor_id, revision, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ArtifactID, entry.Action,
		nullString(entry.FieldName), nullString(entry.OldValue), nullString(entry.NewValue),
		nullString(entry.Note), nullString(entry.ActorID), entry.Revision, now,
	)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	entry.CreatedAt = now.Format(time.RFC3339)
	return nil
}

// ListByArtifact returns an artifact's history, oldest first.
func (r *HistoryRepository) ListByArtifact(ctx context.Context, artifactID string) ([]*secondary.HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, artifact_id, action, field_name, old_value, new_value, note, actor_id, revision, created_at
		FROM artifact_history WHERE artifact_id = ? ORDER BY revision, created_at, rowid`,
		artifactID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.HistoryRecord
	for rows.Next() {
		var (
			field, oldValue, newValue, note, actor sql.NullString
			createdAt                              time.Time
		)
		entry := &secondary.HistoryRecord{}
		if err := rows.Scan(&entry.ID, &entry.ArtifactID, &entry.Action, &field, &oldValue, &newValue,
			&note, &actor, &entry.Revision, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		entry.FieldName = field.String
		entry.OldValue = oldValue.String
		entry.NewValue = newValue.String
		entry.Note = note.String
		entry.ActorID = actor.String
		entry.CreatedAt = createdAt.Format(time.RFC3339)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Ensure HistoryRepository implements the interface
var _ secondary.HistoryRepository = (*HistoryRepository)(nil)
