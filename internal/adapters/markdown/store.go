package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/blueprint/internal/core/artifact"
	"github.com/example/blueprint/internal/ports/secondary"
)

// typeDirs groups artifacts the way a documentation tree reads: goals and
// research under brain/, features and use cases under logic/, tasks under
// execution/backlog.
var typeDirs = map[artifact.Type]string{
	artifact.TypeGoal:     "brain",
	artifact.TypeResearch: filepath.Join("brain", "R_D_Archive"),
	artifact.TypeFeature:  "logic",
	artifact.TypeUseCase:  "logic",
	artifact.TypeUMLModel: filepath.Join("logic", "uml"),
	artifact.TypeTask:     filepath.Join("execution", "backlog"),
}

// DirFor returns the directory (relative to the export root) for a type.
func DirFor(t string) string {
	if parsed, ok := artifact.ParseType(t); ok {
		return typeDirs[parsed]
	}
	return "unsorted"
}

// Store implements secondary.DocumentStore on the local filesystem.
type Store struct{}

// NewStore creates a markdown document store.
func NewStore() *Store {
	return &Store{}
}

// Write renders each artifact to <dir>/<type dir>/<ID>.md.
func (s *Store) Write(ctx context.Context, dir string, artifacts []*secondary.ArtifactRecord) ([]string, error) {
	var written []string
	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		rel := filepath.Join(DirFor(a.Type), a.ID+".md")
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return written, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}

		data, err := Render(a)
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, rel)
	}
	return written, nil
}

// Read parses every *.md file under dir, in path order. A file without
// front matter is an error: the tree is expected to hold artifacts only.
func (s *Store) Read(ctx context.Context, dir string) ([]*secondary.DocumentRecord, error) {
	var docs []*secondary.DocumentRecord
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		record, err := Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		docs = append(docs, &secondary.DocumentRecord{Path: rel, Artifact: record})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// Ensure Store implements the interface
var _ secondary.DocumentStore = (*Store)(nil)
