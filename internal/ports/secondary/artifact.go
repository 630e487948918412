package secondary

import "context"

// ArtifactRepository defines the secondary port for artifact persistence.
// Artifacts are never deleted; ARCHIVED is the disposal state.
type ArtifactRepository interface {
	// Create persists a new artifact with revision_count = 1.
	Create(ctx context.Context, artifact *ArtifactRecord) error

	// GetByID retrieves an artifact by its ID.
	GetByID(ctx context.Context, id string) (*ArtifactRecord, error)

	// Update overwrites the mutable fields of an artifact and bumps its
	// revision in the same statement. It fails with a conflict when the stored
	// revision no longer equals expectedRevision.
	Update(ctx context.Context, artifact *ArtifactRecord, expectedRevision int) error

	// List retrieves artifacts matching the given filters, in ID order.
	List(ctx context.Context, filters ArtifactFilters) ([]*ArtifactRecord, error)

	// GetNextID returns the next available ID for a type prefix.
	GetNextID(ctx context.Context, artifactType string) (string, error)
}

// ArtifactRecord represents an artifact as stored in persistence.
type ArtifactRecord struct {
	ID            string
	Type          string
	Status        string
	Title         string
	ParentID      string
	Dependencies  []string
	RevisionCount int
	Body          string
	Attributes    map[string]string
	SprintID      string
	CreatedAt     string
	UpdatedAt     string
}

// ArtifactFilters contains filter options for querying artifacts.
type ArtifactFilters struct {
	Type     string
	Status   string
	ParentID string
	SprintID string
	// Query matches ID, title or body, case-insensitively.
	Query string
	Limit int
}

// HistoryRepository defines the secondary port for the append-only artifact
// history (creations, status transitions, content edits, sprint stamping).
type HistoryRepository interface {
	// Append writes one history entry. ID and CreatedAt are assigned when empty.
	Append(ctx context.Context, entry *HistoryRecord) error

	// ListByArtifact returns an artifact's history, oldest first.
	ListByArtifact(ctx context.Context, artifactID string) ([]*HistoryRecord, error)
}

// HistoryRecord represents one history entry.
type HistoryRecord struct {
	ID         string
	ArtifactID string
	Action     string // "create", "status", "update", "schedule"
	FieldName  string
	OldValue   string
	NewValue   string
	Note       string
	ActorID    string
	Revision   int
	CreatedAt  string
}

// GenerationCounter tracks the store generation: a number bumped by every
// committed write so derived views can tell whether they are stale.
type GenerationCounter interface {
	// Current returns the committed generation.
	Current(ctx context.Context) (int64, error)

	// Bump increments the generation and returns the new value.
	Bump(ctx context.Context) (int64, error)
}
