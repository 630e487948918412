package secondary

import "context"

// KnowledgeRepository defines the secondary port for the append-only
// knowledge store (design patterns, anti-patterns, terminology).
type KnowledgeRepository interface {
	// Append adds an entry under a topic.
	Append(ctx context.Context, entry *KnowledgeRecord) error

	// ListByTopic returns a topic's entries, oldest first.
	ListByTopic(ctx context.Context, topic string) ([]*KnowledgeRecord, error)

	// ListTopics returns every topic with at least one entry, sorted.
	ListTopics(ctx context.Context) ([]string, error)
}

// KnowledgeRecord represents one knowledge entry.
type KnowledgeRecord struct {
	ID        int64
	Topic     string
	Content   string
	ActorID   string
	CreatedAt string
}
