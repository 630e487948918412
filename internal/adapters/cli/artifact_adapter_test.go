package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/example/blueprint/internal/ports/primary"
)

func init() {
	color.NoColor = true
}

// mockArtifactService implements primary.ArtifactService for testing
type mockArtifactService struct {
	createFn   func(ctx context.Context, req primary.CreateArtifactRequest) (*primary.CreateArtifactResponse, error)
	statusFn   func(ctx context.Context, req primary.UpdateStatusRequest) (*primary.Artifact, error)
	updateFn   func(ctx context.Context, req primary.UpdateArtifactRequest) (*primary.Artifact, error)
	searchFn   func(ctx context.Context, filters primary.ArtifactFilters) ([]*primary.Artifact, error)
	traceFn    func(ctx context.Context, id string) (*primary.TraceResult, error)
	validateFn func(ctx context.Context) (*primary.ValidationReport, error)

	// Track calls for verification
	lastCreateReq primary.CreateArtifactRequest
	lastStatusReq primary.UpdateStatusRequest
	updateCalls   int
}

func (m *mockArtifactService) CreateArtifact(ctx context.Context, req primary.CreateArtifactRequest) (*primary.CreateArtifactResponse, error) {
	m.lastCreateReq = req
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &primary.CreateArtifactResponse{
		ArtifactID: "GL-001",
		Artifact:   &primary.Artifact{ID: "GL-001", Type: req.Type, Title: req.Title, Status: "DRAFT"},
	}, nil
}

func (m *mockArtifactService) UpdateStatus(ctx context.Context, req primary.UpdateStatusRequest) (*primary.Artifact, error) {
	m.lastStatusReq = req
	if m.statusFn != nil {
		return m.statusFn(ctx, req)
	}
	return &primary.Artifact{ID: req.ArtifactID, Status: req.Status, RevisionCount: 2}, nil
}

func (m *mockArtifactService) UpdateArtifact(ctx context.Context, req primary.UpdateArtifactRequest) (*primary.Artifact, error) {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, req)
	}
	return &primary.Artifact{ID: req.ArtifactID, RevisionCount: 3}, nil
}

func (m *mockArtifactService) GetArtifact(ctx context.Context, id string) (*primary.Artifact, error) {
	return &primary.Artifact{
		ID: id, Type: "Feature", Status: "APPROVED", Title: "Gates", ParentID: "GL-001",
		Attributes: map[string]string{"research_required": "true"}, RevisionCount: 3,
	}, nil
}

func (m *mockArtifactService) SearchArtifacts(ctx context.Context, filters primary.ArtifactFilters) ([]*primary.Artifact, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, filters)
	}
	return nil, nil
}

func (m *mockArtifactService) GetTraceabilityTree(ctx context.Context, id string) (*primary.TraceResult, error) {
	if m.traceFn != nil {
		return m.traceFn(ctx, id)
	}
	return &primary.TraceResult{ArtifactID: id}, nil
}

func (m *mockArtifactService) GetChildren(ctx context.Context, id string) ([]*primary.Artifact, error) {
	return nil, nil
}

func (m *mockArtifactService) ListPending(ctx context.Context) ([]*primary.Artifact, error) {
	return []*primary.Artifact{{ID: "UC-002", Type: "UseCase", Status: "REVIEW", Title: "Pending one"}}, nil
}

func (m *mockArtifactService) GetHistory(ctx context.Context, id string) ([]*primary.HistoryEntry, error) {
	return []*primary.HistoryEntry{
		{Action: "create", FieldName: "status", NewValue: "DRAFT", ActorID: "alice", Revision: 1},
		{Action: "status", FieldName: "status", OldValue: "DRAFT", NewValue: "REVIEW", Note: "ready", ActorID: "bob", Revision: 2},
	}, nil
}

func (m *mockArtifactService) ValidateAll(ctx context.Context) (*primary.ValidationReport, error) {
	if m.validateFn != nil {
		return m.validateFn(ctx)
	}
	return &primary.ValidationReport{Summary: "All artifacts are valid. No traceability issues found."}, nil
}

func TestArtifactAdapter_Create_Success(t *testing.T) {
	mock := &mockArtifactService{}
	var buf bytes.Buffer
	adapter := NewArtifactAdapter(mock, &buf)

	err := adapter.Create(context.Background(), primary.CreateArtifactRequest{Type: "Goal", Title: "Ship it"})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.lastCreateReq.Title != "Ship it" {
		t.Errorf("expected title 'Ship it', got '%s'", mock.lastCreateReq.Title)
	}
	if !strings.Contains(buf.String(), "Created Goal GL-001") {
		t.Errorf("expected output to contain 'Created Goal GL-001', got '%s'", buf.String())
	}
}

func TestArtifactAdapter_Create_GateError(t *testing.T) {
	mock := &mockArtifactService{
		createFn: func(ctx context.Context, req primary.CreateArtifactRequest) (*primary.CreateArtifactResponse, error) {
			return nil, errors.New("orphan: FT-001 parent GL-404 missing")
		},
	}
	var buf bytes.Buffer
	adapter := NewArtifactAdapter(mock, &buf)

	err := adapter.Create(context.Background(), primary.CreateArtifactRequest{Type: "Feature", Title: "x", ParentID: "GL-404"})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output on failure, got '%s'", buf.String())
	}
}

func TestArtifactAdapter_Show(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewArtifactAdapter(&mockArtifactService{}, &buf)

	art, err := adapter.Show(context.Background(), "FT-001")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if art.ID != "FT-001" {
		t.Errorf("expected FT-001, got %s", art.ID)
	}
	output := buf.String()
	for _, want := range []string{"Feature: FT-001", "Parent:   GL-001", "research_required: true", "Revision: 3"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain '%s', got '%s'", want, output)
		}
	}
}

func TestArtifactAdapter_SetStatus(t *testing.T) {
	mock := &mockArtifactService{}
	var buf bytes.Buffer
	adapter := NewArtifactAdapter(mock, &buf)

	err := adapter.SetStatus(context.Background(), primary.UpdateStatusRequest{ArtifactID: "GL-001", Status: "REVIEW", Note: "ready"})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.lastStatusReq.Note != "ready" {
		t.Errorf("expected note 'ready', got '%s'", mock.lastStatusReq.Note)
	}
	if !strings.Contains(buf.String(), "GL-001 is now REVIEW (revision 2)") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

func TestArtifactAdapter_Edit_RequiresAField(t *testing.T) {
	mock := &mockArtifactService{}
	var buf bytes.Buffer
	adapter := NewArtifactAdapter(mock, &buf)

	err := adapter.Edit(context.Background(), primary.UpdateArtifactRequest{ArtifactID: "GL-001"})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if mock.updateCalls != 0 {
		t.Errorf("expected service not to be called, got %d calls", mock.updateCalls)
	}
}

func TestArtifactAdapter_List(t *testing.T) {
	mock := &mockArtifactService{
		searchFn: func(ctx context.Context, filters primary.ArtifactFilters) ([]*primary.Artifact, error) {
			if filters.Type != "Task" {
				t.Errorf("expected type filter 'Task', got '%s'", filters.Type)
			}
			return []*primary.Artifact{
				{ID: "TSK-001", Type: "Task", Status: "DONE", Title: "First"},
				{ID: "TSK-002", Type: "Task", Status: "APPROVED", Title: "Second"},
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewArtifactAdapter(mock, &buf)

	if err := adapter.List(context.Background(), primary.ArtifactFilters{Type: "Task"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "TSK-001") || !strings.Contains(output, "TSK-002") {
		t.Errorf("expected both tasks in output, got '%s'", output)
	}
}

func TestArtifactAdapter_List_Empty(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewArtifactAdapter(&mockArtifactService{}, &buf)

	if err := adapter.List(context.Background(), primary.ArtifactFilters{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "No artifacts found") {
		t.Errorf("expected 'No artifacts found', got '%s'", buf.String())
	}
}

func TestArtifactAdapter_Trace_RootFirst(t *testing.T) {
	mock := &mockArtifactService{
		traceFn: func(ctx context.Context, id string) (*primary.TraceResult, error) {
			return &primary.TraceResult{ArtifactID: id, Path: []*primary.Artifact{
				{ID: "TSK-001", Status: "DRAFT", Title: "task"},
				{ID: "UC-001", Status: "APPROVED", Title: "use case"},
				{ID: "GL-001", Status: "APPROVED", Title: "goal"},
			}}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewArtifactAdapter(mock, &buf)

	if err := adapter.Trace(context.Background(), "TSK-001"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	output := buf.String()
	goal := strings.Index(output, "GL-001")
	task := strings.Index(output, "TSK-001")
	if goal < 0 || task < 0 || goal > task {
		t.Errorf("expected goal before task, got '%s'", output)
	}
	if !strings.Contains(output, "    └─ TSK-001") {
		t.Errorf("expected task indented two levels, got '%s'", output)
	}
}

func TestArtifactAdapter_History(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewArtifactAdapter(&mockArtifactService{}, &buf)

	if err := adapter.History(context.Background(), "GL-001"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "status: DRAFT -> REVIEW  (ready)") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

func TestArtifactAdapter_Validate_ListsViolations(t *testing.T) {
	mock := &mockArtifactService{
		validateFn: func(ctx context.Context) (*primary.ValidationReport, error) {
			return &primary.ValidationReport{
				ArtifactCount: 4,
				Summary:       "Found 1 issue(s):",
				Violations: []*primary.Violation{
					{Code: "BrokenChain", Gate: "orphan", ArtifactID: "UC-002", Ref: "FT-009", Expected: "existing parent", Actual: "missing"},
				},
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewArtifactAdapter(mock, &buf)

	report, err := adapter.Validate(context.Background())

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(report.Violations))
	}
	want := "[orphan] BrokenChain UC-002 (FT-009): expected existing parent, got missing"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("expected output to contain '%s', got '%s'", want, buf.String())
	}
}

func TestFormatViolation_Path(t *testing.T) {
	got := FormatViolation(&primary.Violation{Code: "CyclicDependency", Gate: "cycle", ArtifactID: "TSK-001", Path: []string{"TSK-001", "TSK-002", "TSK-001"}})

	want := "[cycle] CyclicDependency TSK-001 [TSK-001 -> TSK-002 -> TSK-001]"
	if got != want {
		t.Errorf("expected '%s', got '%s'", want, got)
	}
}
