package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/example/blueprint/internal/ports/primary"
)

// ExchangeAdapter translates export and import commands into ExchangeService calls.
type ExchangeAdapter struct {
	service primary.ExchangeService
	out     io.Writer
}

// NewExchangeAdapter creates a new ExchangeAdapter with the given service.
func NewExchangeAdapter(service primary.ExchangeService, out io.Writer) *ExchangeAdapter {
	return &ExchangeAdapter{
		service: service,
		out:     out,
	}
}

type indexEntry struct {
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	Status       string            `json:"status"`
	Title        string            `json:"title"`
	Parent       string            `json:"parent,omitempty"`
	Dependencies []string          `json:"dependencies,omitempty"`
	Revision     int               `json:"revision"`
	Sprint       string            `json:"sprint,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

// ExportJSON writes the artifact index as a JSON array.
func (a *ExchangeAdapter) ExportJSON(ctx context.Context) error {
	artifacts, err := a.service.ExportIndex(ctx)
	if err != nil {
		return err
	}

	index := make([]indexEntry, len(artifacts))
	for i, art := range artifacts {
		index[i] = indexEntry{
			ID:           art.ID,
			Type:         art.Type,
			Status:       art.Status,
			Title:        art.Title,
			Parent:       art.ParentID,
			Dependencies: art.Dependencies,
			Revision:     art.RevisionCount,
			Sprint:       art.SprintID,
			Attributes:   art.Attributes,
		}
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(index)
}

// ExportMarkdown writes one markdown file per artifact under dir.
func (a *ExchangeAdapter) ExportMarkdown(ctx context.Context, dir string) error {
	result, err := a.service.ExportMarkdown(ctx, dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Exported %d artifact(s) to %s\n", okMark, len(result.Files), result.Dir)
	return nil
}

// Import reads a markdown tree. The result is returned so the caller can
// pick an exit status.
func (a *ExchangeAdapter) Import(ctx context.Context, req primary.ImportRequest) (*primary.ImportResult, error) {
	result, err := a.service.ImportMarkdown(ctx, req)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "Parsed %d file(s)\n", result.Parsed)
	if len(result.Skipped) > 0 {
		fmt.Fprintf(a.out, "Skipped %d existing: %s\n", len(result.Skipped), strings.Join(result.Skipped, ", "))
	}
	if len(result.Report.Violations) > 0 {
		printReport(a.out, result.Report)
		fmt.Fprintln(a.out, "Nothing imported")
		return result, nil
	}

	verb := "Imported"
	if result.DryRun {
		verb = "Would import"
	}
	fmt.Fprintf(a.out, "%s %s %d artifact(s)\n", okMark, verb, len(result.Created))
	for _, id := range result.Created {
		fmt.Fprintf(a.out, "  %s\n", id)
	}
	return result, nil
}
