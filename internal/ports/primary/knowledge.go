package primary

import "context"

// KnowledgeService defines the primary port for the knowledge store, a
// free-text memory decoupled from the artifact graph.
type KnowledgeService interface {
	// AppendKnowledge adds text under a topic.
	AppendKnowledge(ctx context.Context, topic, content string) error

	// GetKnowledge returns a topic's entries, oldest first.
	GetKnowledge(ctx context.Context, topic string) ([]*KnowledgeEntry, error)

	// ListTopics returns the known topics.
	ListTopics(ctx context.Context) ([]string, error)
}

// KnowledgeEntry is one knowledge note.
type KnowledgeEntry struct {
	Topic     string
	Content   string
	ActorID   string
	CreatedAt string
}
