package primary

import "context"

// ExchangeService defines the primary port for moving the artifact set in
// and out of the store as files.
type ExchangeService interface {
	// ExportIndex returns the whole artifact set, in hierarchy order.
	ExportIndex(ctx context.Context) ([]*Artifact, error)

	// ExportMarkdown writes one markdown file per artifact under dir.
	ExportMarkdown(ctx context.Context, dir string) (*ExportResult, error)

	// ImportMarkdown reads a markdown tree, validates it as a whole and, unless
	// DryRun is set, stores every new artifact.
	ImportMarkdown(ctx context.Context, req ImportRequest) (*ImportResult, error)
}

// ExportResult lists the files written.
type ExportResult struct {
	Dir   string
	Files []string
}

// ImportRequest contains parameters for importing a markdown tree.
type ImportRequest struct {
	Dir    string
	DryRun bool
}

// ImportResult contains the outcome of an import.
type ImportResult struct {
	Parsed  int
	Created []string
	Skipped []string // already present with the same ID
	Report  *ValidationReport
	DryRun  bool
}
