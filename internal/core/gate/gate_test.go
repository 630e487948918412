package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/blueprint/internal/core/artifact"
	"github.com/example/blueprint/internal/core/graph"
	"github.com/example/blueprint/internal/core/violation"
)

func newArtifact(id string, status artifact.Status, parent string, deps ...string) *artifact.Artifact {
	t, _ := artifact.TypeFromID(id)
	a := &artifact.Artifact{
		ID:           id,
		Type:         t,
		Status:       status,
		Title:        "title of " + id,
		ParentID:     parent,
		Dependencies: deps,
	}
	if t == artifact.TypeResearch {
		a.Attributes = map[string]string{
			artifact.AttrHypothesis: "it works",
			artifact.AttrVerdict:    artifact.VerdictPending,
		}
	}
	return a
}

// approvedChain is GL-001 <- FT-001 <- UC-001 <- TSK-001, all APPROVED.
func approvedChain() []*artifact.Artifact {
	return []*artifact.Artifact{
		newArtifact("GL-001", artifact.StatusApproved, ""),
		newArtifact("FT-001", artifact.StatusApproved, "GL-001"),
		newArtifact("UC-001", artifact.StatusApproved, "FT-001"),
		newArtifact("TSK-001", artifact.StatusApproved, "UC-001"),
	}
}

func requireViolation(t *testing.T, err error, code error, gate string) *violation.Error {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, code)
	var verr *violation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, gate, verr.Gate)
	return verr
}

func TestCheckCreate(t *testing.T) {
	v := NewValidator(DefaultOptions())

	tests := []struct {
		name      string
		existing  []*artifact.Artifact
		candidate *artifact.Artifact
		filename  string
		wantCode  error
		wantGate  string
		wantRef   string
	}{
		{
			name:      "first goal",
			candidate: newArtifact("GL-001", artifact.StatusDraft, ""),
		},
		{
			name:      "next task under approved use case",
			existing:  approvedChain(),
			candidate: newArtifact("TSK-002", artifact.StatusDraft, "UC-001", "TSK-001"),
		},
		{
			name:      "prefix does not match type",
			candidate: &artifact.Artifact{ID: "FT-001", Type: artifact.TypeGoal, Title: "x"},
			wantCode:  violation.ErrPrefixMismatch,
			wantGate:  violation.GatePrefix,
			wantRef:   "id",
		},
		{
			name:      "non-canonical padding",
			candidate: newArtifact("GL-1", artifact.StatusDraft, ""),
			wantCode:  violation.ErrPrefixMismatch,
			wantGate:  violation.GatePrefix,
		},
		{
			name:      "filename differs from id",
			candidate: newArtifact("GL-001", artifact.StatusDraft, ""),
			filename:  "goals/GL-002.md",
			wantCode:  violation.ErrFilenameMismatch,
			wantGate:  violation.GatePrefix,
			wantRef:   "goals/GL-002.md",
		},
		{
			name:      "research without hypothesis",
			existing:  approvedChain(),
			candidate: &artifact.Artifact{ID: "RS-001", Type: artifact.TypeResearch, Title: "Spike", ParentID: "FT-001", Attributes: map[string]string{artifact.AttrVerdict: "PENDING"}},
			wantCode:  violation.ErrMissingRequiredField,
			wantGate:  violation.GateFields,
			wantRef:   artifact.AttrHypothesis,
		},
		{
			name:      "use case with missing parent",
			existing:  approvedChain(),
			candidate: newArtifact("UC-002", artifact.StatusDraft, "FT-999"),
			wantCode:  violation.ErrBrokenChain,
			wantGate:  violation.GateOrphan,
			wantRef:   "FT-999",
		},
		{
			name:      "task with no parent",
			existing:  approvedChain(),
			candidate: newArtifact("TSK-002", artifact.StatusDraft, ""),
			wantCode:  violation.ErrBrokenChain,
			wantGate:  violation.GateOrphan,
			wantRef:   "parent_id",
		},
		{
			name:      "dependency that does not exist",
			existing:  approvedChain(),
			candidate: newArtifact("TSK-002", artifact.StatusDraft, "UC-001", "TSK-050"),
			wantCode:  violation.ErrBrokenChain,
			wantGate:  violation.GateOrphan,
			wantRef:   "TSK-050",
		},
		{
			name: "feature under draft goal",
			existing: []*artifact.Artifact{
				newArtifact("GL-001", artifact.StatusDraft, ""),
			},
			candidate: newArtifact("FT-001", artifact.StatusDraft, "GL-001"),
			wantCode:  violation.ErrParentNotApproved,
			wantGate:  violation.GateParentStatus,
			wantRef:   "GL-001",
		},
		{
			name: "task under use case in review",
			existing: []*artifact.Artifact{
				newArtifact("GL-001", artifact.StatusApproved, ""),
				newArtifact("FT-001", artifact.StatusApproved, "GL-001"),
				newArtifact("UC-001", artifact.StatusReview, "FT-001"),
			},
			candidate: newArtifact("TSK-001", artifact.StatusDraft, "UC-001"),
			wantCode:  violation.ErrParentNotApproved,
			wantGate:  violation.GateParentStatus,
			wantRef:   "UC-001",
		},
		{
			name: "research has no parent-status requirement",
			existing: []*artifact.Artifact{
				newArtifact("GL-001", artifact.StatusDraft, ""),
			},
			candidate: newArtifact("RS-001", artifact.StatusDraft, "GL-001"),
		},
		{
			name:      "duplicate id",
			existing:  approvedChain(),
			candidate: newArtifact("TSK-001", artifact.StatusDraft, "UC-001"),
			wantCode:  violation.ErrDuplicateID,
			wantGate:  violation.GateDuplicate,
		},
		{
			name:      "skipped number",
			existing:  approvedChain(),
			candidate: newArtifact("TSK-003", artifact.StatusDraft, "UC-001"),
			wantCode:  violation.ErrNonSequentialID,
			wantGate:  violation.GateMonotonic,
		},
		{
			name:      "self dependency",
			existing:  approvedChain(),
			candidate: newArtifact("TSK-002", artifact.StatusDraft, "UC-001", "TSK-002"),
			wantCode:  violation.ErrCyclicDependency,
			wantGate:  violation.GateCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.CheckCreate(CreateContext{
				Candidate: tt.candidate,
				Filename:  tt.filename,
				Graph:     graph.Build(tt.existing),
			})
			if tt.wantCode == nil {
				assert.NoError(t, err)
				return
			}
			verr := requireViolation(t, err, tt.wantCode, tt.wantGate)
			if tt.wantRef != "" {
				assert.Equal(t, tt.wantRef, verr.Ref)
			}
		})
	}
}

func TestCheckCreate_NonSequentialNamesExpectedID(t *testing.T) {
	v := NewValidator(DefaultOptions())
	err := v.CheckCreate(CreateContext{
		Candidate: newArtifact("GL-005", artifact.StatusDraft, ""),
		Graph:     graph.Build(approvedChain()),
	})

	verr := requireViolation(t, err, violation.ErrNonSequentialID, violation.GateMonotonic)
	assert.Equal(t, "GL-002", verr.Expected)
	assert.Equal(t, "GL-005", verr.Actual)
}

func TestCheckCreate_ResearchRequired(t *testing.T) {
	withFeature := func(extra ...*artifact.Artifact) *graph.Graph {
		arts := []*artifact.Artifact{
			newArtifact("GL-001", artifact.StatusApproved, ""),
			newArtifact("FT-001", artifact.StatusApproved, "GL-001"),
		}
		arts[1].Attributes = map[string]string{artifact.AttrResearchRequired: "true"}
		return graph.Build(append(arts, extra...))
	}
	research := func(verdict string) *artifact.Artifact {
		rs := newArtifact("RS-001", artifact.StatusReview, "FT-001")
		rs.Attributes[artifact.AttrVerdict] = verdict
		return rs
	}
	candidate := newArtifact("UC-001", artifact.StatusDraft, "FT-001")

	t.Run("no research spike", func(t *testing.T) {
		err := NewValidator(DefaultOptions()).CheckCreate(CreateContext{Candidate: candidate, Graph: withFeature()})
		verr := requireViolation(t, err, violation.ErrResearchRequiredUnmet, violation.GateParentStatus)
		assert.Equal(t, "FT-001", verr.Ref)
		assert.Equal(t, "no research", verr.Actual)
	})

	t.Run("successful spike", func(t *testing.T) {
		err := NewValidator(Options{}).CheckCreate(CreateContext{Candidate: candidate, Graph: withFeature(research("SUCCESS"))})
		assert.NoError(t, err)
	})

	t.Run("failed spike", func(t *testing.T) {
		err := NewValidator(DefaultOptions()).CheckCreate(CreateContext{Candidate: candidate, Graph: withFeature(research("FAILURE"))})
		verr := requireViolation(t, err, violation.ErrResearchRequiredUnmet, violation.GateParentStatus)
		assert.Equal(t, "RS-001=FAILURE", verr.Actual)
	})

	t.Run("pending spike accepted by default", func(t *testing.T) {
		err := NewValidator(DefaultOptions()).CheckCreate(CreateContext{Candidate: candidate, Graph: withFeature(research("PENDING"))})
		assert.NoError(t, err)
	})

	t.Run("pending spike rejected when strict", func(t *testing.T) {
		err := NewValidator(Options{ResearchPendingSatisfies: false}).CheckCreate(CreateContext{Candidate: candidate, Graph: withFeature(research("PENDING"))})
		requireViolation(t, err, violation.ErrResearchRequiredUnmet, violation.GateParentStatus)
	})

	t.Run("parent status is checked before research", func(t *testing.T) {
		g := withFeature(research("SUCCESS"))
		ft, _ := g.Get("FT-001")
		ft.Status = artifact.StatusReview
		err := NewValidator(DefaultOptions()).CheckCreate(CreateContext{Candidate: candidate, Graph: g})
		requireViolation(t, err, violation.ErrParentNotApproved, violation.GateParentStatus)
	})
}

func TestCheckTransition(t *testing.T) {
	v := NewValidator(DefaultOptions())

	t.Run("structural check comes first", func(t *testing.T) {
		// Orphaned and illegal: the forbidden transition is what gets reported.
		orphan := newArtifact("TSK-009", artifact.StatusDraft, "UC-404")
		err := v.CheckTransition(TransitionContext{Artifact: orphan, To: artifact.StatusDone, Graph: graph.Build(approvedChain())})
		verr := requireViolation(t, err, violation.ErrForbiddenTransition, violation.GateTransition)
		assert.Equal(t, "DRAFT -> DONE", verr.Expected)
	})

	t.Run("orphan blocks a legal move", func(t *testing.T) {
		orphan := newArtifact("TSK-009", artifact.StatusDraft, "UC-404")
		err := v.CheckTransition(TransitionContext{Artifact: orphan, To: artifact.StatusReview, Graph: graph.Build(approvedChain())})
		requireViolation(t, err, violation.ErrBrokenChain, violation.GateOrphan)
	})

	t.Run("task done needs approved use case", func(t *testing.T) {
		arts := approvedChain()
		arts[2].Status = artifact.StatusArchived
		g := graph.Build(arts)
		task, _ := g.Get("TSK-001")
		err := v.CheckTransition(TransitionContext{Artifact: task, To: artifact.StatusDone, Graph: g})
		verr := requireViolation(t, err, violation.ErrParentNotApproved, violation.GateParentStatus)
		assert.Equal(t, "UC-001", verr.Ref)
	})

	t.Run("task done under done use case", func(t *testing.T) {
		arts := approvedChain()
		arts[2].Status = artifact.StatusDone
		g := graph.Build(arts)
		task, _ := g.Get("TSK-001")
		assert.NoError(t, v.CheckTransition(TransitionContext{Artifact: task, To: artifact.StatusDone, Graph: g}))
	})

	t.Run("done is terminal", func(t *testing.T) {
		arts := approvedChain()
		arts[3].Status = artifact.StatusDone
		g := graph.Build(arts)
		task, _ := g.Get("TSK-001")
		err := v.CheckTransition(TransitionContext{Artifact: task, To: artifact.StatusDone, Graph: g})
		requireViolation(t, err, violation.ErrForbiddenTransition, violation.GateTransition)
	})
}

func TestCheckUpdate(t *testing.T) {
	v := NewValidator(DefaultOptions())
	arts := append(approvedChain(), newArtifact("TSK-002", artifact.StatusDraft, "UC-001", "TSK-001"))
	g := graph.Build(arts)
	before, _ := g.Get("TSK-001")

	t.Run("title change", func(t *testing.T) {
		after := before.Clone()
		after.Title = "renamed"
		assert.NoError(t, v.CheckUpdate(UpdateContext{Before: before, After: after, Graph: g}))
	})

	t.Run("dependency closing a cycle", func(t *testing.T) {
		after := before.Clone()
		after.Dependencies = []string{"TSK-002"}
		err := v.CheckUpdate(UpdateContext{Before: before, After: after, Graph: g})
		verr := requireViolation(t, err, violation.ErrCyclicDependency, violation.GateCycle)
		assert.Equal(t, []string{"TSK-001", "TSK-002", "TSK-001"}, verr.Path)
	})

	t.Run("unresolved dependency", func(t *testing.T) {
		after := before.Clone()
		after.Dependencies = []string{"TSK-404"}
		err := v.CheckUpdate(UpdateContext{Before: before, After: after, Graph: g})
		requireViolation(t, err, violation.ErrBrokenChain, violation.GateOrphan)
	})

	t.Run("parent is immutable", func(t *testing.T) {
		after := before.Clone()
		after.ParentID = "UC-002"
		err := v.CheckUpdate(UpdateContext{Before: before, After: after, Graph: g})
		requireViolation(t, err, violation.ErrBrokenChain, violation.GateOrphan)
	})

	t.Run("blank title", func(t *testing.T) {
		after := before.Clone()
		after.Title = " "
		err := v.CheckUpdate(UpdateContext{Before: before, After: after, Graph: g})
		requireViolation(t, err, violation.ErrMissingRequiredField, violation.GateFields)
	})
}

func TestCheckDependencyReadiness(t *testing.T) {
	arts := append(approvedChain(),
		newArtifact("TSK-002", artifact.StatusApproved, "UC-001", "TSK-001"),
	)
	g := graph.Build(arts)
	task, _ := g.Get("TSK-002")

	verr := CheckDependencyReadiness(g, task, nil)
	require.NotNil(t, verr)
	assert.ErrorIs(t, verr, violation.ErrDependencyNotReady)
	assert.Equal(t, "TSK-001", verr.Ref)
	assert.Equal(t, "APPROVED", verr.Actual)

	assert.Nil(t, CheckDependencyReadiness(g, task, map[string]bool{"TSK-001": true}))

	dep, _ := g.Get("TSK-001")
	dep.Status = artifact.StatusDone
	assert.Nil(t, CheckDependencyReadiness(g, task, nil))
}
