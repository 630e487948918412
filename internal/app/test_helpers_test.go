package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/blueprint/internal/adapters/sqlite"
	"github.com/example/blueprint/internal/core/gate"
	"github.com/example/blueprint/internal/db"
	"github.com/example/blueprint/internal/ports/primary"
)

// testEnv wires every service onto one file-backed store.
type testEnv struct {
	engine    *Engine
	artifacts *ArtifactServiceImpl
	sprints   *SprintServiceImpl
	knowledge *KnowledgeServiceImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithOptions(t, gate.DefaultOptions())
}

func newTestEnvWithOptions(t *testing.T, opts gate.Options) *testEnv {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "blueprint.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := NewEngine(sqlite.NewStore(conn), gate.NewValidator(opts), logger, nil)
	return &testEnv{
		engine:    engine,
		artifacts: NewArtifactService(engine),
		sprints:   NewSprintService(engine),
		knowledge: NewKnowledgeService(engine),
	}
}

// create stores an artifact and returns its ID.
func (e *testEnv) create(t *testing.T, req primary.CreateArtifactRequest) string {
	t.Helper()
	resp, err := e.artifacts.CreateArtifact(context.Background(), req)
	require.NoError(t, err)
	return resp.ArtifactID
}

// advance walks an artifact through the given statuses.
func (e *testEnv) advance(t *testing.T, id string, statuses ...string) {
	t.Helper()
	for _, st := range statuses {
		_, err := e.artifacts.UpdateStatus(context.Background(), primary.UpdateStatusRequest{ArtifactID: id, Status: st})
		require.NoError(t, err, "%s -> %s", id, st)
	}
}

func (e *testEnv) approve(t *testing.T, id string) {
	t.Helper()
	e.advance(t, id, "REVIEW", "APPROVED")
}

// approvedChain creates GL-001 -> FT-001 -> UC-001, all APPROVED.
func (e *testEnv) approvedChain(t *testing.T) {
	t.Helper()
	gl := e.create(t, primary.CreateArtifactRequest{Type: "Goal", Title: "Ship the engine"})
	e.approve(t, gl)
	ft := e.create(t, primary.CreateArtifactRequest{Type: "Feature", Title: "Gates", ParentID: gl})
	e.approve(t, ft)
	uc := e.create(t, primary.CreateArtifactRequest{Type: "UseCase", Title: "Reject orphans", ParentID: ft})
	e.approve(t, uc)
}

// approvedTask creates an APPROVED task under UC-001.
func (e *testEnv) approvedTask(t *testing.T, title string, deps ...string) string {
	t.Helper()
	id := e.create(t, primary.CreateArtifactRequest{Type: "Task", Title: title, ParentID: "UC-001", Dependencies: deps})
	e.approve(t, id)
	return id
}

func (e *testEnv) get(t *testing.T, id string) *primary.Artifact {
	t.Helper()
	a, err := e.artifacts.GetArtifact(context.Background(), id)
	require.NoError(t, err)
	return a
}

func ids(as []*primary.Artifact) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}
