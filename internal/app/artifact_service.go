package app

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/example/blueprint/internal/core/artifact"
	"github.com/example/blueprint/internal/core/gate"
	"github.com/example/blueprint/internal/core/graph"
	"github.com/example/blueprint/internal/core/violation"
	"github.com/example/blueprint/internal/ports/primary"
	"github.com/example/blueprint/internal/ports/secondary"
)

// ArtifactServiceImpl implements the ArtifactService interface.
type ArtifactServiceImpl struct {
	engine *Engine
}

// NewArtifactService creates a new ArtifactService on a shared engine.
func NewArtifactService(engine *Engine) *ArtifactServiceImpl {
	return &ArtifactServiceImpl{engine: engine}
}

// CreateArtifact validates and stores a new artifact in DRAFT. When no ID is
// given the next one for the type is assigned.
func (s *ArtifactServiceImpl) CreateArtifact(ctx context.Context, req primary.CreateArtifactRequest) (*primary.CreateArtifactResponse, error) {
	t := artifact.Type(strings.TrimSpace(req.Type))
	if parsed, ok := artifact.ParseType(req.Type); ok {
		t = parsed
	}

	var created *secondary.ArtifactRecord
	err := s.engine.mutate(ctx, "create_artifact", func(ctx context.Context, repos secondary.Repositories, g *graph.Graph) error {
		id := strings.TrimSpace(req.ID)
		if id == "" && artifact.Prefix(t) != "" {
			id = artifact.NextID(t, g.MaxNumber(artifact.Prefix(t)))
		}

		candidate := &artifact.Artifact{
			ID:           id,
			Type:         t,
			Status:       artifact.InitialStatus(),
			Title:        strings.TrimSpace(req.Title),
			ParentID:     strings.TrimSpace(req.ParentID),
			Dependencies: artifact.NormalizeDependencies(req.Dependencies),
			Body:         req.Body,
			Attributes:   copyAttributes(req.Attributes),
		}
		if err := s.engine.validator.CheckCreate(gate.CreateContext{Candidate: candidate, Graph: g}); err != nil {
			return err
		}

		record := artifactToRecord(candidate)
		if err := repos.Artifacts.Create(ctx, record); err != nil {
			return err
		}
		if err := repos.History.Append(ctx, &secondary.HistoryRecord{
			ArtifactID: id,
			Action:     actionCreate,
			FieldName:  "status",
			NewValue:   record.Status,
			Revision:   record.RevisionCount,
		}); err != nil {
			return fmt.Errorf("failed to record creation: %w", err)
		}
		created = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.engine.logger.Info("artifact created", "artifact_id", created.ID, "type", created.Type, "parent_id", created.ParentID)
	return &primary.CreateArtifactResponse{
		ArtifactID: created.ID,
		Artifact:   recordToPort(created),
	}, nil
}

// UpdateStatus moves an artifact through the lifecycle.
func (s *ArtifactServiceImpl) UpdateStatus(ctx context.Context, req primary.UpdateStatusRequest) (*primary.Artifact, error) {
	to := artifact.Status(strings.ToUpper(strings.TrimSpace(req.Status)))

	var res *transitionResult
	var from artifact.Status
	err := s.engine.mutate(ctx, "update_status", func(ctx context.Context, repos secondary.Repositories, g *graph.Graph) error {
		a, ok := g.Get(req.ArtifactID)
		if !ok {
			return violation.NotFound(req.ArtifactID)
		}
		from = a.Status

		var err error
		res, err = s.engine.transition(ctx, repos, g, a, to, req.Note)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.engine.logger.Info("artifact transitioned", "artifact_id", req.ArtifactID, "from", from, "to", to, "revision", res.artifact.RevisionCount)
	if res.closed {
		s.engine.logger.Info("sprint closed", "sprint_id", res.sprint.ID)
	}
	return recordToPort(res.artifact), nil
}

// UpdateArtifact edits title, body, dependencies and attributes. The parent
// never changes. A request that changes nothing returns the artifact as is
// without a new revision.
func (s *ArtifactServiceImpl) UpdateArtifact(ctx context.Context, req primary.UpdateArtifactRequest) (*primary.Artifact, error) {
	var result *secondary.ArtifactRecord
	var changed []string
	err := s.engine.mutate(ctx, "update_artifact", func(ctx context.Context, repos secondary.Repositories, g *graph.Graph) error {
		before, ok := g.Get(req.ArtifactID)
		if !ok {
			return violation.NotFound(req.ArtifactID)
		}

		after, changes := applyUpdate(before, req)
		if len(changes) == 0 {
			result = artifactToRecord(before)
			return errNoChange
		}
		if err := s.engine.validator.CheckUpdate(gate.UpdateContext{Before: before, After: after, Graph: g}); err != nil {
			return err
		}

		record := artifactToRecord(after)
		if err := repos.Artifacts.Update(ctx, record, before.RevisionCount); err != nil {
			return err
		}
		for _, c := range changes {
			c.ArtifactID = before.ID
			c.Action = actionUpdate
			c.Revision = record.RevisionCount
			if err := repos.History.Append(ctx, c); err != nil {
				return fmt.Errorf("failed to record update: %w", err)
			}
			changed = append(changed, c.FieldName)
		}
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		s.engine.logger.Info("artifact updated", "artifact_id", result.ID, "fields", changed, "revision", result.RevisionCount)
	}
	return recordToPort(result), nil
}

// applyUpdate returns the edited copy of a and one history entry per field
// that actually changed.
func applyUpdate(a *artifact.Artifact, req primary.UpdateArtifactRequest) (*artifact.Artifact, []*secondary.HistoryRecord) {
	after := a.Clone()
	var changes []*secondary.HistoryRecord
	record := func(field, from, to string) {
		changes = append(changes, &secondary.HistoryRecord{FieldName: field, OldValue: from, NewValue: to})
	}

	if req.Title != nil {
		if title := strings.TrimSpace(*req.Title); title != a.Title {
			after.Title = title
			record("title", a.Title, title)
		}
	}
	if req.Body != nil && *req.Body != a.Body {
		after.Body = *req.Body
		record("body", a.Body, *req.Body)
	}
	if req.Dependencies != nil {
		deps := artifact.NormalizeDependencies(*req.Dependencies)
		if !slices.Equal(deps, a.Dependencies) {
			after.Dependencies = deps
			record("dependencies", strings.Join(a.Dependencies, ","), strings.Join(deps, ","))
		}
	}

	keys := make([]string, 0, len(req.Attributes))
	for k := range req.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.TrimSpace(req.Attributes[k])
		old, had := a.Attributes[k]
		switch {
		case v == "" && had:
			delete(after.Attributes, k)
			record("attributes."+k, old, "")
		case v != "" && v != old:
			if after.Attributes == nil {
				after.Attributes = make(map[string]string)
			}
			after.Attributes[k] = v
			record("attributes."+k, old, v)
		}
	}
	return after, changes
}

// GetArtifact retrieves an artifact by ID.
func (s *ArtifactServiceImpl) GetArtifact(ctx context.Context, id string) (*primary.Artifact, error) {
	record, err := s.engine.store.Repositories().Artifacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return recordToPort(record), nil
}

// SearchArtifacts lists artifacts with optional filters.
func (s *ArtifactServiceImpl) SearchArtifacts(ctx context.Context, filters primary.ArtifactFilters) ([]*primary.Artifact, error) {
	typ := filters.Type
	if parsed, ok := artifact.ParseType(typ); ok {
		typ = string(parsed)
	}
	records, err := s.engine.store.Repositories().Artifacts.List(ctx, secondary.ArtifactFilters{
		Type:     typ,
		Status:   strings.ToUpper(filters.Status),
		ParentID: filters.ParentID,
		Query:    filters.Query,
		Limit:    filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	out := make([]*primary.Artifact, len(records))
	for i, r := range records {
		out[i] = recordToPort(r)
	}
	return out, nil
}

// GetTraceabilityTree returns the chain from an artifact up to its root.
func (s *ArtifactServiceImpl) GetTraceabilityTree(ctx context.Context, id string) (*primary.TraceResult, error) {
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return nil, err
	}
	chain, err := g.ReversePath(id)
	if err != nil {
		return nil, err
	}
	return &primary.TraceResult{ArtifactID: id, Path: artifactsToPort(chain)}, nil
}

// GetChildren returns the direct children of an artifact.
func (s *ArtifactServiceImpl) GetChildren(ctx context.Context, id string) ([]*primary.Artifact, error) {
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return nil, err
	}
	if !g.Has(id) {
		return nil, violation.NotFound(id)
	}
	return artifactsToPort(g.Children(id)), nil
}

// ListPending returns artifacts waiting on review, in hierarchy order.
func (s *ArtifactServiceImpl) ListPending(ctx context.Context) ([]*primary.Artifact, error) {
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return nil, err
	}
	var pending []*artifact.Artifact
	for _, a := range g.All() {
		if a.Status == artifact.StatusReview || a.Status == artifact.StatusNeedsFix {
			pending = append(pending, a)
		}
	}
	return artifactsToPort(pending), nil
}

// GetHistory returns an artifact's history, oldest first.
func (s *ArtifactServiceImpl) GetHistory(ctx context.Context, id string) ([]*primary.HistoryEntry, error) {
	repos := s.engine.store.Repositories()
	if _, err := repos.Artifacts.GetByID(ctx, id); err != nil {
		return nil, err
	}
	records, err := repos.History.ListByArtifact(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	out := make([]*primary.HistoryEntry, len(records))
	for i, r := range records {
		out[i] = historyToPort(r)
	}
	return out, nil
}

// ValidateAll runs every gate over the committed artifact set. It reads a
// snapshot and never writes.
func (s *ArtifactServiceImpl) ValidateAll(ctx context.Context) (*primary.ValidationReport, error) {
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return nil, err
	}
	report := s.engine.validator.ValidateAll(g)
	if report.HasErrors() {
		s.engine.logger.Warn("validation found issues", "count", len(report.Violations))
	}
	return reportToPort(report, g.Len()), nil
}

// Ensure ArtifactServiceImpl implements the interface
var _ primary.ArtifactService = (*ArtifactServiceImpl)(nil)
