package app

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/blueprint/internal/core/gate"
	"github.com/example/blueprint/internal/core/violation"
	"github.com/example/blueprint/internal/ports/primary"
)

func strPtr(s string) *string { return &s }

func TestCreateArtifact_AssignsSequentialIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.artifacts.CreateArtifact(ctx, primary.CreateArtifactRequest{Type: "goal", Title: "One"})
	require.NoError(t, err)
	second, err := env.artifacts.CreateArtifact(ctx, primary.CreateArtifactRequest{Type: "Goal", Title: "Two"})
	require.NoError(t, err)

	assert.Equal(t, "GL-001", first.ArtifactID)
	assert.Equal(t, "GL-002", second.ArtifactID)
	assert.Equal(t, "Goal", first.Artifact.Type)
	assert.Equal(t, "DRAFT", first.Artifact.Status)
	assert.Equal(t, 1, first.Artifact.RevisionCount)

	history, err := env.artifacts.GetHistory(ctx, "GL-001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "create", history[0].Action)
	assert.Equal(t, "DRAFT", history[0].NewValue)
}

func TestCreateArtifact_GateRejections(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, primary.CreateArtifactRequest{Type: "Goal", Title: "Draft goal"})

	tests := []struct {
		name string
		req  primary.CreateArtifactRequest
		want error
	}{
		{"prefix mismatch", primary.CreateArtifactRequest{ID: "FT-002", Type: "Goal", Title: "x"}, violation.ErrPrefixMismatch},
		{"unknown type", primary.CreateArtifactRequest{Type: "Epic", Title: "x"}, violation.ErrPrefixMismatch},
		{"missing title", primary.CreateArtifactRequest{Type: "Goal", Title: "  "}, violation.ErrMissingRequiredField},
		{"orphan", primary.CreateArtifactRequest{Type: "Feature", Title: "x", ParentID: "GL-404"}, violation.ErrBrokenChain},
		{"parent not approved", primary.CreateArtifactRequest{Type: "Feature", Title: "x", ParentID: "GL-001"}, violation.ErrParentNotApproved},
		{"duplicate", primary.CreateArtifactRequest{ID: "GL-001", Type: "Goal", Title: "x"}, violation.ErrDuplicateID},
		{"gap", primary.CreateArtifactRequest{ID: "GL-005", Type: "Goal", Title: "x"}, violation.ErrNonSequentialID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.artifacts.CreateArtifact(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.want)

			var verr *violation.Error
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Gate)
		})
	}

	// nothing but the seed was stored
	all, err := env.artifacts.SearchArtifacts(context.Background(), primary.ArtifactFilters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"GL-001"}, ids(all))
}

func TestCreateArtifact_ResearchRequired(t *testing.T) {
	run := func(t *testing.T, opts gate.Options, verdict string) error {
		env := newTestEnvWithOptions(t, opts)
		gl := env.create(t, primary.CreateArtifactRequest{Type: "Goal", Title: "g"})
		env.approve(t, gl)
		ft := env.create(t, primary.CreateArtifactRequest{
			Type: "Feature", Title: "f", ParentID: gl,
			Attributes: map[string]string{"research_required": "true"},
		})
		env.approve(t, ft)

		_, err := env.artifacts.CreateArtifact(context.Background(), primary.CreateArtifactRequest{Type: "UseCase", Title: "uc", ParentID: ft})
		require.ErrorIs(t, err, violation.ErrResearchRequiredUnmet)

		env.create(t, primary.CreateArtifactRequest{
			Type: "Research", Title: "spike", ParentID: ft,
			Attributes: map[string]string{"hypothesis": "it works", "verdict": verdict},
		})
		_, err = env.artifacts.CreateArtifact(context.Background(), primary.CreateArtifactRequest{Type: "UseCase", Title: "uc", ParentID: ft})
		return err
	}

	t.Run("success verdict", func(t *testing.T) {
		assert.NoError(t, run(t, gate.DefaultOptions(), "SUCCESS"))
	})
	t.Run("pending accepted by default", func(t *testing.T) {
		assert.NoError(t, run(t, gate.DefaultOptions(), "PENDING"))
	})
	t.Run("pending refused when strict", func(t *testing.T) {
		assert.ErrorIs(t, run(t, gate.Options{ResearchPendingSatisfies: false}, "PENDING"), violation.ErrResearchRequiredUnmet)
	})
	t.Run("failure verdict", func(t *testing.T) {
		assert.ErrorIs(t, run(t, gate.DefaultOptions(), "FAILURE"), violation.ErrResearchRequiredUnmet)
	})
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, primary.CreateArtifactRequest{Type: "Goal", Title: "g"})

	_, err := env.artifacts.UpdateStatus(ctx, primary.UpdateStatusRequest{ArtifactID: id, Status: "DONE"})
	require.ErrorIs(t, err, violation.ErrForbiddenTransition)
	assert.Equal(t, 1, env.get(t, id).RevisionCount, "rejected transition leaves the revision alone")

	got, err := env.artifacts.UpdateStatus(ctx, primary.UpdateStatusRequest{ArtifactID: id, Status: "review", Note: "ready"})
	require.NoError(t, err)
	assert.Equal(t, "REVIEW", got.Status)
	assert.Equal(t, 2, got.RevisionCount)

	env.advance(t, id, "NEEDS_FIX", "REVIEW", "APPROVED", "DONE")
	final := env.get(t, id)
	assert.Equal(t, "DONE", final.Status)
	assert.Equal(t, 6, final.RevisionCount)

	_, err = env.artifacts.UpdateStatus(ctx, primary.UpdateStatusRequest{ArtifactID: id, Status: "ARCHIVED"})
	assert.ErrorIs(t, err, violation.ErrForbiddenTransition, "DONE is terminal")

	history, err := env.artifacts.GetHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 6)
	assert.Equal(t, "DRAFT", history[1].OldValue)
	assert.Equal(t, "REVIEW", history[1].NewValue)
	assert.Equal(t, "ready", history[1].Note)

	_, err = env.artifacts.UpdateStatus(ctx, primary.UpdateStatusRequest{ArtifactID: "GL-404", Status: "REVIEW"})
	assert.ErrorIs(t, err, violation.ErrNotFound)
}

func TestUpdateStatus_TaskDoneNeedsLiveUseCase(t *testing.T) {
	env := newTestEnv(t)
	env.approvedChain(t)
	task := env.approvedTask(t, "build it")

	env.advance(t, "UC-001", "ARCHIVED")

	_, err := env.artifacts.UpdateStatus(context.Background(), primary.UpdateStatusRequest{ArtifactID: task, Status: "DONE"})
	require.ErrorIs(t, err, violation.ErrParentNotApproved)
	assert.Equal(t, "APPROVED", env.get(t, task).Status)
}

func TestUpdateArtifact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.approvedChain(t)
	first := env.approvedTask(t, "first")
	second := env.approvedTask(t, "second", first)

	t.Run("edits bump the revision once", func(t *testing.T) {
		got, err := env.artifacts.UpdateArtifact(ctx, primary.UpdateArtifactRequest{
			ArtifactID: first,
			Title:      strPtr("first, renamed"),
			Attributes: map[string]string{"estimate": "3"},
		})
		require.NoError(t, err)
		assert.Equal(t, "first, renamed", got.Title)
		assert.Equal(t, map[string]string{"estimate": "3"}, got.Attributes)
		assert.Equal(t, 4, got.RevisionCount)

		history, err := env.artifacts.GetHistory(ctx, first)
		require.NoError(t, err)
		last := history[len(history)-2:]
		assert.Equal(t, "title", last[0].FieldName)
		assert.Equal(t, "attributes.estimate", last[1].FieldName)
	})

	t.Run("no-op keeps the revision", func(t *testing.T) {
		got, err := env.artifacts.UpdateArtifact(ctx, primary.UpdateArtifactRequest{ArtifactID: first, Title: strPtr("first, renamed")})
		require.NoError(t, err)
		assert.Equal(t, 4, got.RevisionCount)
	})

	t.Run("empty attribute removes the key", func(t *testing.T) {
		got, err := env.artifacts.UpdateArtifact(ctx, primary.UpdateArtifactRequest{ArtifactID: first, Attributes: map[string]string{"estimate": ""}})
		require.NoError(t, err)
		assert.Empty(t, got.Attributes)
	})

	t.Run("dependency cycle rejected", func(t *testing.T) {
		deps := []string{second}
		_, err := env.artifacts.UpdateArtifact(ctx, primary.UpdateArtifactRequest{ArtifactID: first, Dependencies: &deps})
		require.ErrorIs(t, err, violation.ErrCyclicDependency)

		var verr *violation.Error
		require.ErrorAs(t, err, &verr)
		assert.NotEmpty(t, verr.Path)
		assert.Empty(t, env.get(t, first).Dependencies)
	})

	t.Run("unknown dependency rejected", func(t *testing.T) {
		deps := []string{"TSK-404"}
		_, err := env.artifacts.UpdateArtifact(ctx, primary.UpdateArtifactRequest{ArtifactID: first, Dependencies: &deps})
		assert.ErrorIs(t, err, violation.ErrBrokenChain)
	})

	t.Run("terminal artifacts are frozen", func(t *testing.T) {
		env.advance(t, first, "DONE")
		_, err := env.artifacts.UpdateArtifact(ctx, primary.UpdateArtifactRequest{ArtifactID: first, Body: strPtr("late edit")})
		assert.ErrorIs(t, err, violation.ErrForbiddenTransition)
	})
}

func TestReadOperations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.approvedChain(t)
	task := env.create(t, primary.CreateArtifactRequest{Type: "Task", Title: "draft task", ParentID: "UC-001"})
	env.advance(t, task, "REVIEW")

	trace, err := env.artifacts.GetTraceabilityTree(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, []string{"TSK-001", "UC-001", "FT-001", "GL-001"}, ids(trace.Path))

	_, err = env.artifacts.GetTraceabilityTree(ctx, "TSK-404")
	assert.ErrorIs(t, err, violation.ErrNotFound)

	children, err := env.artifacts.GetChildren(ctx, "UC-001")
	require.NoError(t, err)
	assert.Equal(t, []string{"TSK-001"}, ids(children))

	pending, err := env.artifacts.ListPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"TSK-001"}, ids(pending))

	found, err := env.artifacts.SearchArtifacts(ctx, primary.ArtifactFilters{Type: "usecase"})
	require.NoError(t, err)
	assert.Equal(t, []string{"UC-001"}, ids(found))

	_, err = env.artifacts.GetHistory(ctx, "GL-404")
	assert.ErrorIs(t, err, violation.ErrNotFound)

	report, err := env.artifacts.ValidateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, report.ArtifactCount)
	assert.Empty(t, report.Violations)
	assert.Equal(t, "All artifacts are valid. No traceability issues found.", report.Summary)
}

// Concurrent creators never collide on an ID and never skip one.
func TestCreateArtifact_Concurrent(t *testing.T) {
	env := newTestEnv(t)
	const n = 10

	var wg sync.WaitGroup
	results := make(chan string, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := env.artifacts.CreateArtifact(context.Background(), primary.CreateArtifactRequest{Type: "Goal", Title: fmt.Sprintf("goal %d", i)})
			if err != nil {
				errs <- err
				return
			}
			results <- resp.ArtifactID
		}(i)
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[string]bool{}
	for id := range results {
		seen[id] = true
	}
	for i := 1; i <= n; i++ {
		assert.True(t, seen[fmt.Sprintf("GL-%03d", i)], "GL-%03d missing", i)
	}
}

func TestGraphCache_RebuildsOnlyAfterWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, primary.CreateArtifactRequest{Type: "Goal", Title: "g"})

	_, err := env.artifacts.ListPending(ctx)
	require.NoError(t, err)
	before := env.engine.Cache().Builds()

	_, err = env.artifacts.ListPending(ctx)
	require.NoError(t, err)
	_, err = env.artifacts.ValidateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, env.engine.Cache().Builds(), "reads reuse the snapshot")

	env.create(t, primary.CreateArtifactRequest{Type: "Goal", Title: "g2"})
	_, err = env.artifacts.ListPending(ctx)
	require.NoError(t, err)
	assert.Greater(t, env.engine.Cache().Builds(), before)
}
