package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/blueprint/internal/ctxutil"
	"github.com/example/blueprint/internal/ports/secondary"
)

// KnowledgeRepository implements secondary.KnowledgeRepository with SQLite.
type KnowledgeRepository struct {
	db DBTX
}

// NewKnowledgeRepository creates a new SQLite knowledge repository.
func NewKnowledgeRepository(db DBTX) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

// Append adds an entry under a topic.
func (r *KnowledgeRepository) Append(ctx context.Context, entry *secondary.KnowledgeRecord) error {
	if entry.ActorID == "" {
		entry.ActorID = ctxutil.ActorFromContext(ctx)
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO knowledge (topic, content, actor_id, created_at) VALUES (?, ?, ?, ?)",
		entry.Topic, entry.Content, nullString(entry.ActorID), now,
	)
	if err != nil {
		return fmt.Errorf("failed to append knowledge: %w", err)
	}

	entry.ID, _ = result.LastInsertId()
	entry.CreatedAt = now.Format(time.RFC3339)
	return nil
}

// ListByTopic returns a topic's entries, oldest first.
func (r *KnowledgeRepository) ListByTopic(ctx context.Context, topic string) ([]*secondary.KnowledgeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, topic, content, actor_id, created_at FROM knowledge WHERE topic = ? ORDER BY id",
		topic,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.KnowledgeRecord
	for rows.Next() {
		var (
			actor     sql.NullString
			createdAt time.Time
		)
		entry := &secondary.KnowledgeRecord{}
		if err := rows.Scan(&entry.ID, &entry.Topic, &entry.Content, &actor, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan knowledge: %w", err)
		}
		entry.ActorID = actor.String
		entry.CreatedAt = createdAt.Format(time.RFC3339)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ListTopics returns every topic with at least one entry, sorted.
func (r *KnowledgeRepository) ListTopics(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT topic FROM knowledge ORDER BY topic")
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

// Ensure KnowledgeRepository implements the interface
var _ secondary.KnowledgeRepository = (*KnowledgeRepository)(nil)
