package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/blueprint/internal/ports/primary"
)

// KnowledgeAdapter translates knowledge commands into KnowledgeService calls.
type KnowledgeAdapter struct {
	service primary.KnowledgeService
	out     io.Writer
}

// NewKnowledgeAdapter creates a new KnowledgeAdapter with the given service.
func NewKnowledgeAdapter(service primary.KnowledgeService, out io.Writer) *KnowledgeAdapter {
	return &KnowledgeAdapter{
		service: service,
		out:     out,
	}
}

// Add appends a note under a topic.
func (a *KnowledgeAdapter) Add(ctx context.Context, topic, content string) error {
	if err := a.service.AppendKnowledge(ctx, topic, content); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Added to %s\n", okMark, topic)
	return nil
}

// Show prints every note under a topic.
func (a *KnowledgeAdapter) Show(ctx context.Context, topic string) error {
	entries, err := a.service.GetKnowledge(ctx, topic)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintf(a.out, "Nothing recorded under %s\n", topic)
		return nil
	}

	fmt.Fprintf(a.out, "\n%s\n", topic)
	fmt.Fprintln(a.out, rule)
	for _, e := range entries {
		fmt.Fprintf(a.out, "- %s\n  (%s, %s)\n", e.Content, e.ActorID, e.CreatedAt)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Topics lists the known topics.
func (a *KnowledgeAdapter) Topics(ctx context.Context) error {
	topics, err := a.service.ListTopics(ctx)
	if err != nil {
		return err
	}

	if len(topics) == 0 {
		fmt.Fprintln(a.out, "No topics found")
		return nil
	}
	for _, t := range topics {
		fmt.Fprintln(a.out, t)
	}
	return nil
}
