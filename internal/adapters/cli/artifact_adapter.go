package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/example/blueprint/internal/ports/primary"
)

// ArtifactAdapter translates artifact commands into ArtifactService calls.
type ArtifactAdapter struct {
	service primary.ArtifactService
	out     io.Writer
}

// NewArtifactAdapter creates a new ArtifactAdapter with the given service.
func NewArtifactAdapter(service primary.ArtifactService, out io.Writer) *ArtifactAdapter {
	return &ArtifactAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a new artifact in DRAFT.
func (a *ArtifactAdapter) Create(ctx context.Context, req primary.CreateArtifactRequest) error {
	resp, err := a.service.CreateArtifact(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Created %s %s: %s\n", okMark, resp.Artifact.Type, resp.ArtifactID, resp.Artifact.Title)
	if resp.Artifact.ParentID != "" {
		fmt.Fprintf(a.out, "  Parent: %s\n", resp.Artifact.ParentID)
	}
	return nil
}

// Show displays one artifact.
func (a *ArtifactAdapter) Show(ctx context.Context, id string) (*primary.Artifact, error) {
	art, err := a.service.GetArtifact(ctx, id)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\n%s: %s\n", art.Type, art.ID)
	fmt.Fprintf(a.out, "Title:    %s\n", art.Title)
	fmt.Fprintf(a.out, "Status:   %s\n", statusColor(art.Status))
	fmt.Fprintf(a.out, "Revision: %d\n", art.RevisionCount)
	if art.ParentID != "" {
		fmt.Fprintf(a.out, "Parent:   %s\n", art.ParentID)
	}
	if len(art.Dependencies) > 0 {
		fmt.Fprintf(a.out, "Depends:  %s\n", strings.Join(art.Dependencies, ", "))
	}
	if art.SprintID != "" {
		fmt.Fprintf(a.out, "Sprint:   %s\n", art.SprintID)
	}
	if len(art.Attributes) > 0 {
		keys := make([]string, 0, len(art.Attributes))
		for k := range art.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(a.out, "Attributes:")
		for _, k := range keys {
			fmt.Fprintf(a.out, "  %s: %s\n", k, art.Attributes[k])
		}
	}
	fmt.Fprintf(a.out, "Created:  %s\n", art.CreatedAt)
	fmt.Fprintf(a.out, "Updated:  %s\n", art.UpdatedAt)
	if art.Body != "" {
		fmt.Fprintf(a.out, "\n%s\n", art.Body)
	}
	fmt.Fprintln(a.out)

	return art, nil
}

// List lists artifacts matching the filters.
func (a *ArtifactAdapter) List(ctx context.Context, filters primary.ArtifactFilters) error {
	artifacts, err := a.service.SearchArtifacts(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list artifacts: %w", err)
	}

	if len(artifacts) == 0 {
		fmt.Fprintln(a.out, "No artifacts found")
		return nil
	}
	printArtifactTable(a.out, artifacts)
	return nil
}

// SetStatus moves an artifact through its lifecycle.
func (a *ArtifactAdapter) SetStatus(ctx context.Context, req primary.UpdateStatusRequest) error {
	art, err := a.service.UpdateStatus(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s %s is now %s (revision %d)\n", okMark, art.ID, statusColor(art.Status), art.RevisionCount)
	return nil
}

// Edit changes an artifact's content fields.
func (a *ArtifactAdapter) Edit(ctx context.Context, req primary.UpdateArtifactRequest) error {
	if req.Title == nil && req.Body == nil && req.Dependencies == nil && len(req.Attributes) == 0 {
		return fmt.Errorf("must specify at least one of --title, --body, --depends or --attr")
	}

	art, err := a.service.UpdateArtifact(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s %s updated (revision %d)\n", okMark, art.ID, art.RevisionCount)
	return nil
}

// Trace prints the chain from the root goal down to the artifact.
func (a *ArtifactAdapter) Trace(ctx context.Context, id string) error {
	trace, err := a.service.GetTraceabilityTree(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out)
	for depth := len(trace.Path) - 1; depth >= 0; depth-- {
		art := trace.Path[depth]
		indent := strings.Repeat("  ", len(trace.Path)-1-depth)
		connector := ""
		if depth < len(trace.Path)-1 {
			connector = "└─ "
		}
		fmt.Fprintf(a.out, "%s%s%s [%s] %s\n", indent, connector, art.ID, statusColor(art.Status), art.Title)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Children lists the direct children of an artifact.
func (a *ArtifactAdapter) Children(ctx context.Context, id string) error {
	children, err := a.service.GetChildren(ctx, id)
	if err != nil {
		return err
	}

	if len(children) == 0 {
		fmt.Fprintf(a.out, "%s has no children\n", id)
		return nil
	}
	printArtifactTable(a.out, children)
	return nil
}

// History prints the audit trail of an artifact.
func (a *ArtifactAdapter) History(ctx context.Context, id string) error {
	entries, err := a.service.GetHistory(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nHistory of %s\n", id)
	fmt.Fprintln(a.out, rule)
	for _, e := range entries {
		change := e.NewValue
		if e.OldValue != "" {
			change = e.OldValue + " -> " + e.NewValue
		}
		line := fmt.Sprintf("r%-3d %s %-8s %s", e.Revision, e.CreatedAt, e.Action, e.ActorID)
		if e.FieldName != "" {
			line += fmt.Sprintf("  %s: %s", e.FieldName, change)
		}
		if e.Note != "" {
			line += fmt.Sprintf("  (%s)", e.Note)
		}
		fmt.Fprintln(a.out, line)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Pending lists artifacts waiting for a reviewer.
func (a *ArtifactAdapter) Pending(ctx context.Context) error {
	pending, err := a.service.ListPending(ctx)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		fmt.Fprintln(a.out, "Nothing awaiting review")
		return nil
	}
	printArtifactTable(a.out, pending)
	return nil
}

// Validate audits the whole artifact set. The report is returned so the
// caller can pick an exit status.
func (a *ArtifactAdapter) Validate(ctx context.Context) (*primary.ValidationReport, error) {
	report, err := a.service.ValidateAll(ctx)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "Checked %d artifact(s)\n", report.ArtifactCount)
	printReport(a.out, report)
	return report, nil
}
