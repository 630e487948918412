package secondary

import "context"

// DocumentStore reads and writes artifacts as files outside the database.
type DocumentStore interface {
	// Write renders each artifact to one file under dir and returns the
	// paths written, relative to dir.
	Write(ctx context.Context, dir string, artifacts []*ArtifactRecord) ([]string, error)

	// Read parses every artifact file under dir.
	Read(ctx context.Context, dir string) ([]*DocumentRecord, error)
}

// DocumentRecord is an artifact parsed from a file.
type DocumentRecord struct {
	Path     string // relative to the directory read
	Artifact *ArtifactRecord
}
