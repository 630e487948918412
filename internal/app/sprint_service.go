package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/blueprint/internal/core/artifact"
	"github.com/example/blueprint/internal/core/graph"
	coresprint "github.com/example/blueprint/internal/core/sprint"
	"github.com/example/blueprint/internal/core/violation"
	"github.com/example/blueprint/internal/ports/primary"
	"github.com/example/blueprint/internal/ports/secondary"
)

// SprintServiceImpl implements the SprintService interface.
type SprintServiceImpl struct {
	engine *Engine
}

// NewSprintService creates a new SprintService on a shared engine.
func NewSprintService(engine *Engine) *SprintServiceImpl {
	return &SprintServiceImpl{engine: engine}
}

// GetBacklog returns the tasks ready to be pulled into a sprint, by ID number.
// Readiness is computed on every call from the committed graph.
func (s *SprintServiceImpl) GetBacklog(ctx context.Context) ([]*primary.Artifact, error) {
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return artifactsToPort(coresprint.ReadyBacklog(g)), nil
}

// StartSprint validates the batch, orders it and commits it as the current
// sprint: the sprint record and every task stamp land in one transaction.
func (s *SprintServiceImpl) StartSprint(ctx context.Context, req primary.StartSprintRequest) (*primary.Sprint, error) {
	var created *secondary.SprintRecord
	var snapshot *graph.Graph
	err := s.engine.mutate(ctx, "start_sprint", func(ctx context.Context, repos secondary.Repositories, g *graph.Graph) error {
		snapshot = g
		current, err := currentSprint(ctx, repos)
		if err != nil {
			return err
		}

		order, err := coresprint.Plan(coresprint.PlanContext{
			Graph:   g,
			TaskIDs: req.TaskIDs,
			Current: sprintRecordToCore(current),
		})
		if err != nil {
			return err
		}

		id, err := repos.Sprints.GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate sprint ID: %w", err)
		}
		record := &secondary.SprintRecord{ID: id, Goal: strings.TrimSpace(req.Goal)}
		for _, taskID := range order {
			record.Tasks = append(record.Tasks, secondary.SprintTaskRecord{TaskID: taskID})
		}
		if err := repos.Sprints.Create(ctx, record); err != nil {
			return err
		}

		for _, taskID := range order {
			task, _ := g.Get(taskID)
			stamped := task.Clone()
			stamped.SprintID = id
			rec := artifactToRecord(stamped)
			if err := repos.Artifacts.Update(ctx, rec, task.RevisionCount); err != nil {
				return err
			}
			if err := repos.History.Append(ctx, &secondary.HistoryRecord{
				ArtifactID: taskID,
				Action:     actionSchedule,
				FieldName:  "sprint_id",
				NewValue:   id,
				Revision:   rec.RevisionCount,
			}); err != nil {
				return fmt.Errorf("failed to record scheduling: %w", err)
			}
		}

		created, err = repos.Sprints.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.engine.logger.Info("sprint started", "sprint_id", created.ID, "tasks", len(created.Tasks))
	return sprintToPort(created, titleLookup(snapshot)), nil
}

// CompleteTask moves a task to DONE through the lifecycle gates and ticks
// its sprint checkmark. The last checkmark closes the sprint.
func (s *SprintServiceImpl) CompleteTask(ctx context.Context, req primary.CompleteTaskRequest) (*primary.CompleteTaskResponse, error) {
	var res *transitionResult
	var snapshot *graph.Graph
	err := s.engine.mutate(ctx, "complete_task", func(ctx context.Context, repos secondary.Repositories, g *graph.Graph) error {
		snapshot = g
		task, ok := g.Get(req.TaskID)
		if !ok {
			return violation.NotFound(req.TaskID)
		}
		if task.Type != artifact.TypeTask {
			return violation.New(violation.ErrNotSchedulable, violation.GateSprint, task.ID).
				WithRef("type").
				Want(string(artifact.TypeTask), string(task.Type))
		}

		var err error
		res, err = s.engine.transition(ctx, repos, g, task, artifact.StatusDone, req.Note)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := &primary.CompleteTaskResponse{
		Task:         recordToPort(res.artifact),
		SprintClosed: res.closed,
	}
	if res.sprint != nil {
		resp.Sprint = sprintToPort(res.sprint, titleLookup(snapshot))
	}
	s.engine.logger.Info("task completed", "artifact_id", req.TaskID, "sprint_id", res.artifact.SprintID, "sprint_closed", res.closed)
	return resp, nil
}

// GetCurrentSprint returns the most recent sprint.
func (s *SprintServiceImpl) GetCurrentSprint(ctx context.Context) (*primary.Sprint, error) {
	record, err := s.engine.store.Repositories().Sprints.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return sprintToPort(record, titleLookup(g)), nil
}

// ListSprints returns every sprint, newest first.
func (s *SprintServiceImpl) ListSprints(ctx context.Context) ([]*primary.Sprint, error) {
	records, err := s.engine.store.Repositories().Sprints.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sprints: %w", err)
	}
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*primary.Sprint, len(records))
	for i, r := range records {
		out[i] = sprintToPort(r, titleLookup(g))
	}
	return out, nil
}

func currentSprint(ctx context.Context, repos secondary.Repositories) (*secondary.SprintRecord, error) {
	current, err := repos.Sprints.GetCurrent(ctx)
	if errors.Is(err, violation.ErrNotFound) {
		return nil, nil
	}
	return current, err
}

func titleLookup(g *graph.Graph) func(string) string {
	return func(id string) string {
		if a, ok := g.Get(id); ok {
			return a.Title
		}
		return ""
	}
}

// Ensure SprintServiceImpl implements the interface
var _ primary.SprintService = (*SprintServiceImpl)(nil)
