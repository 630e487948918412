package app

import (
	"context"
	"fmt"

	"github.com/example/blueprint/internal/core/artifact"
	"github.com/example/blueprint/internal/core/gate"
	"github.com/example/blueprint/internal/core/graph"
	coresprint "github.com/example/blueprint/internal/core/sprint"
	"github.com/example/blueprint/internal/ports/secondary"
)

// History actions.
const (
	actionCreate   = "create"
	actionStatus   = "status"
	actionUpdate   = "update"
	actionSchedule = "schedule"
)

type transitionResult struct {
	artifact *secondary.ArtifactRecord
	sprint   *secondary.SprintRecord // sprint whose checkmark was ticked, if any
	closed   bool
}

// transition moves a through the lifecycle inside a write transaction. A
// sprint task that reaches DONE or ARCHIVED is resolved: its checkmark is
// ticked and the sprint closes with its last checkmark.
func (e *Engine) transition(ctx context.Context, repos secondary.Repositories, g *graph.Graph, a *artifact.Artifact, to artifact.Status, note string) (*transitionResult, error) {
	if err := e.validator.CheckTransition(gate.TransitionContext{Artifact: a, To: to, Graph: g}); err != nil {
		return nil, err
	}

	next := a.Clone()
	next.Status = to
	record := artifactToRecord(next)
	if err := repos.Artifacts.Update(ctx, record, a.RevisionCount); err != nil {
		return nil, err
	}
	if err := repos.History.Append(ctx, &secondary.HistoryRecord{
		ArtifactID: a.ID,
		Action:     actionStatus,
		FieldName:  "status",
		OldValue:   string(a.Status),
		NewValue:   string(to),
		Note:       note,
		Revision:   record.RevisionCount,
	}); err != nil {
		return nil, fmt.Errorf("failed to record transition: %w", err)
	}

	result := &transitionResult{artifact: record}
	if a.SprintID != "" && (to == artifact.StatusDone || to == artifact.StatusArchived) {
		sprint, closed, err := tickSprint(ctx, repos, a.SprintID, a.ID)
		if err != nil {
			return nil, err
		}
		result.sprint, result.closed = sprint, closed
	}
	return result, nil
}

// tickSprint checks taskID off and closes the sprint when nothing remains.
func tickSprint(ctx context.Context, repos secondary.Repositories, sprintID, taskID string) (*secondary.SprintRecord, bool, error) {
	record, err := repos.Sprints.GetByID(ctx, sprintID)
	if err != nil {
		return nil, false, err
	}
	if coresprint.Status(record.Status) == coresprint.StatusClosed {
		return record, false, nil
	}

	if err := repos.Sprints.CheckTask(ctx, sprintID, taskID); err != nil {
		return nil, false, err
	}
	record, err = repos.Sprints.GetByID(ctx, sprintID)
	if err != nil {
		return nil, false, err
	}
	if !sprintRecordToCore(record).IsComplete() {
		return record, false, nil
	}

	if err := repos.Sprints.Close(ctx, sprintID); err != nil {
		return nil, false, err
	}
	record, err = repos.Sprints.GetByID(ctx, sprintID)
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}
