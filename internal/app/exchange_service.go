package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/blueprint/internal/core/artifact"
	"github.com/example/blueprint/internal/core/gate"
	"github.com/example/blueprint/internal/core/graph"
	coresprint "github.com/example/blueprint/internal/core/sprint"
	"github.com/example/blueprint/internal/core/violation"
	"github.com/example/blueprint/internal/ports/primary"
	"github.com/example/blueprint/internal/ports/secondary"
)

// ExchangeServiceImpl implements the ExchangeService interface.
type ExchangeServiceImpl struct {
	engine *Engine
	docs   secondary.DocumentStore
}

// NewExchangeService creates a new ExchangeService.
func NewExchangeService(engine *Engine, docs secondary.DocumentStore) *ExchangeServiceImpl {
	return &ExchangeServiceImpl{engine: engine, docs: docs}
}

// ExportIndex returns the whole artifact set in hierarchy order.
func (s *ExchangeServiceImpl) ExportIndex(ctx context.Context) ([]*primary.Artifact, error) {
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return artifactsToPort(g.All()), nil
}

// ExportMarkdown writes one markdown file per artifact under dir.
func (s *ExchangeServiceImpl) ExportMarkdown(ctx context.Context, dir string) (*primary.ExportResult, error) {
	g, err := s.engine.Graph(ctx)
	if err != nil {
		return nil, err
	}

	all := g.All()
	records := make([]*secondary.ArtifactRecord, len(all))
	for i, a := range all {
		records[i] = artifactToRecord(a)
	}
	files, err := s.docs.Write(ctx, dir, records)
	if err != nil {
		return nil, fmt.Errorf("failed to export: %w", err)
	}

	s.engine.logger.Info("artifacts exported", "dir", dir, "files", len(files))
	return &primary.ExportResult{Dir: dir, Files: files}, nil
}

// ImportMarkdown reads a markdown tree and validates the new artifacts
// together with the stored ones. Files whose ID is already stored are
// skipped. Nothing is written when any new artifact fails a gate or the
// request is a dry run; otherwise every new artifact is created, parents and
// dependencies first, keeping its status. Sprint stamps are not imported.
func (s *ExchangeServiceImpl) ImportMarkdown(ctx context.Context, req primary.ImportRequest) (*primary.ImportResult, error) {
	docs, err := s.docs.Read(ctx, req.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.Dir, err)
	}

	result := &primary.ImportResult{Parsed: len(docs), DryRun: req.DryRun}
	err = s.engine.mutate(ctx, "import", func(ctx context.Context, repos secondary.Repositories, g *graph.Graph) error {
		report := &violation.Report{}
		var fresh []*artifact.Artifact
		paths := make(map[string]string)

		for _, doc := range docs {
			a := importedArtifact(doc.Artifact)
			if g.Has(a.ID) {
				result.Skipped = append(result.Skipped, a.ID)
				continue
			}
			if verr := gate.CheckPrefix(a, doc.Path); verr != nil {
				report.Add(verr)
			}
			if _, ok := artifact.ParseStatus(string(a.Status)); !ok {
				report.Add(violation.New(violation.ErrForbiddenTransition, violation.GateTransition, a.ID).
					WithRef("status").
					Want("lifecycle status", string(a.Status)))
			}
			if _, seen := paths[a.ID]; !seen {
				paths[a.ID] = doc.Path
			}
			fresh = append(fresh, a)
		}

		combined := graph.Build(append(g.All(), fresh...))
		for _, v := range s.engine.validator.ValidateAll(combined).Violations {
			if _, isNew := paths[v.ArtifactID]; isNew {
				report.Add(v)
			}
		}
		report.Sort()
		result.Report = reportToPort(report, len(fresh))
		if report.HasErrors() {
			return errNoChange
		}

		order := importOrder(combined, paths)
		if req.DryRun {
			result.Created = order
			return errNoChange
		}
		for _, id := range order {
			a, _ := combined.Get(id)
			record := artifactToRecord(a)
			if err := repos.Artifacts.Create(ctx, record); err != nil {
				return err
			}
			if err := repos.History.Append(ctx, &secondary.HistoryRecord{
				ArtifactID: id,
				Action:     actionCreate,
				FieldName:  "status",
				NewValue:   record.Status,
				Note:       "imported from " + paths[id],
				Revision:   record.RevisionCount,
			}); err != nil {
				return fmt.Errorf("failed to record import: %w", err)
			}
		}
		result.Created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if n := len(result.Report.Violations); n > 0 {
		s.engine.logger.Warn("import rejected", "dir", req.Dir, "issues", n)
	} else if !req.DryRun {
		s.engine.logger.Info("artifacts imported", "dir", req.Dir, "created", len(result.Created), "skipped", len(result.Skipped))
	}
	return result, nil
}

// importedArtifact normalizes a parsed file into a candidate artifact.
func importedArtifact(r *secondary.ArtifactRecord) *artifact.Artifact {
	a := recordToArtifact(r)
	a.ID = strings.TrimSpace(a.ID)
	if t, ok := artifact.ParseType(string(a.Type)); ok {
		a.Type = t
	}
	if st, ok := artifact.ParseStatus(string(a.Status)); ok {
		a.Status = st
	}
	a.Dependencies = artifact.NormalizeDependencies(a.Dependencies)
	a.SprintID = ""
	return a
}

// importOrder lists the new IDs so that every parent and dependency that is
// also new comes first.
func importOrder(g *graph.Graph, fresh map[string]string) []string {
	var ids []string
	for _, a := range g.All() {
		if _, ok := fresh[a.ID]; ok {
			ids = append(ids, a.ID)
		}
	}
	return coresprint.TopoOrder(ids, func(id string) []string {
		a, _ := g.Get(id)
		var before []string
		if _, ok := fresh[a.ParentID]; ok {
			before = append(before, a.ParentID)
		}
		for _, d := range a.Dependencies {
			if _, ok := fresh[d]; ok {
				before = append(before, d)
			}
		}
		return before
	})
}

// Ensure ExchangeServiceImpl implements the interface
var _ primary.ExchangeService = (*ExchangeServiceImpl)(nil)
