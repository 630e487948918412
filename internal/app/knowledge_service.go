package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/blueprint/internal/core/violation"
	"github.com/example/blueprint/internal/ports/primary"
	"github.com/example/blueprint/internal/ports/secondary"
)

// KnowledgeServiceImpl implements the KnowledgeService interface. Knowledge
// lives outside the artifact graph, so appends do not bump the store
// generation.
type KnowledgeServiceImpl struct {
	engine *Engine
}

// NewKnowledgeService creates a new KnowledgeService on a shared engine.
func NewKnowledgeService(engine *Engine) *KnowledgeServiceImpl {
	return &KnowledgeServiceImpl{engine: engine}
}

// AppendKnowledge adds text under a topic.
func (s *KnowledgeServiceImpl) AppendKnowledge(ctx context.Context, topic, content string) error {
	topic = strings.TrimSpace(topic)
	content = strings.TrimSpace(content)
	if topic == "" {
		return violation.New(violation.ErrMissingRequiredField, violation.GateFields, "").WithRef("topic").Want("non-empty", "empty")
	}
	if content == "" {
		return violation.New(violation.ErrMissingRequiredField, violation.GateFields, "").WithRef("content").Want("non-empty", "empty")
	}

	return s.engine.exclusive(ctx, "append_knowledge", func(ctx context.Context, repos secondary.Repositories) error {
		return repos.Knowledge.Append(ctx, &secondary.KnowledgeRecord{Topic: topic, Content: content})
	})
}

// GetKnowledge returns a topic's entries, oldest first.
func (s *KnowledgeServiceImpl) GetKnowledge(ctx context.Context, topic string) ([]*primary.KnowledgeEntry, error) {
	records, err := s.engine.store.Repositories().Knowledge.ListByTopic(ctx, strings.TrimSpace(topic))
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge: %w", err)
	}
	out := make([]*primary.KnowledgeEntry, len(records))
	for i, r := range records {
		out[i] = knowledgeToPort(r)
	}
	return out, nil
}

// ListTopics returns the known topics in name order.
func (s *KnowledgeServiceImpl) ListTopics(ctx context.Context) ([]string, error) {
	topics, err := s.engine.store.Repositories().Knowledge.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}

// Ensure KnowledgeServiceImpl implements the interface
var _ primary.KnowledgeService = (*KnowledgeServiceImpl)(nil)
