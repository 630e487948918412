package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/blueprint/internal/ports/primary"
)

// mockKnowledgeService implements primary.KnowledgeService for testing
type mockKnowledgeService struct {
	entries   map[string][]*primary.KnowledgeEntry
	appendErr error
}

func (m *mockKnowledgeService) AppendKnowledge(ctx context.Context, topic, content string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	if m.entries == nil {
		m.entries = make(map[string][]*primary.KnowledgeEntry)
	}
	m.entries[topic] = append(m.entries[topic], &primary.KnowledgeEntry{Topic: topic, Content: content, ActorID: "alice"})
	return nil
}

func (m *mockKnowledgeService) GetKnowledge(ctx context.Context, topic string) ([]*primary.KnowledgeEntry, error) {
	return m.entries[topic], nil
}

func (m *mockKnowledgeService) ListTopics(ctx context.Context) ([]string, error) {
	var topics []string
	for t := range m.entries {
		topics = append(topics, t)
	}
	return topics, nil
}

func TestKnowledgeAdapter_AddThenShow(t *testing.T) {
	mock := &mockKnowledgeService{}
	var buf bytes.Buffer
	adapter := NewKnowledgeAdapter(mock, &buf)
	ctx := context.Background()

	if err := adapter.Add(ctx, "Terminology", "Backlog means ready work."); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "Added to Terminology") {
		t.Errorf("unexpected output '%s'", buf.String())
	}

	buf.Reset()
	if err := adapter.Show(ctx, "Terminology"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "- Backlog means ready work.") || !strings.Contains(output, "alice") {
		t.Errorf("unexpected output '%s'", output)
	}
}

func TestKnowledgeAdapter_ShowEmptyTopic(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewKnowledgeAdapter(&mockKnowledgeService{}, &buf)

	if err := adapter.Show(context.Background(), "Anti_Patterns"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "Nothing recorded under Anti_Patterns") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

func TestKnowledgeAdapter_Topics(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewKnowledgeAdapter(&mockKnowledgeService{}, &buf)

	if err := adapter.Topics(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "No topics found") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

func TestKnowledgeAdapter_AddError(t *testing.T) {
	mock := &mockKnowledgeService{appendErr: errors.New("topic is required")}
	var buf bytes.Buffer
	adapter := NewKnowledgeAdapter(mock, &buf)

	err := adapter.Add(context.Background(), "", "text")

	if err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output on error, got '%s'", buf.String())
	}
}
