// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import "context"

// ArtifactService defines the primary port for artifact operations.
// Every mutation passes the gate validator before anything is stored; a
// rejected operation returns a *violation.Error and changes nothing.
type ArtifactService interface {
	// CreateArtifact validates and stores a new artifact in DRAFT.
	CreateArtifact(ctx context.Context, req CreateArtifactRequest) (*CreateArtifactResponse, error)

	// UpdateStatus moves an artifact through the lifecycle.
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Artifact, error)

	// UpdateArtifact edits title, body, dependencies or attributes.
	UpdateArtifact(ctx context.Context, req UpdateArtifactRequest) (*Artifact, error)

	// GetArtifact retrieves an artifact by ID.
	GetArtifact(ctx context.Context, id string) (*Artifact, error)

	// SearchArtifacts lists artifacts with optional filters.
	SearchArtifacts(ctx context.Context, filters ArtifactFilters) ([]*Artifact, error)

	// GetTraceabilityTree returns the chain from an artifact up to its root.
	GetTraceabilityTree(ctx context.Context, id string) (*TraceResult, error)

	// GetChildren returns the direct children of an artifact.
	GetChildren(ctx context.Context, id string) ([]*Artifact, error)

	// ListPending returns artifacts waiting on review (REVIEW or NEEDS_FIX).
	ListPending(ctx context.Context) ([]*Artifact, error)

	// GetHistory returns the recorded history of an artifact, oldest first.
	GetHistory(ctx context.Context, id string) ([]*HistoryEntry, error)

	// ValidateAll runs every gate over the whole store without mutating it.
	ValidateAll(ctx context.Context) (*ValidationReport, error)
}

// CreateArtifactRequest contains parameters for creating an artifact.
// ID is optional; when empty the next ID for the type is assigned.
type CreateArtifactRequest struct {
	ID           string
	Type         string
	Title        string
	ParentID     string
	Dependencies []string
	Body         string
	Attributes   map[string]string
}

// CreateArtifactResponse contains the result of creating an artifact.
type CreateArtifactResponse struct {
	ArtifactID string
	Artifact   *Artifact
}

// UpdateStatusRequest contains parameters for a status transition.
type UpdateStatusRequest struct {
	ArtifactID string
	Status     string
	Note       string
}

// UpdateArtifactRequest contains parameters for a content edit. Nil fields
// are left unchanged; Attributes are merged, an empty value removes a key.
type UpdateArtifactRequest struct {
	ArtifactID   string
	Title        *string
	Body         *string
	Dependencies *[]string
	Attributes   map[string]string
}

// Artifact represents an artifact at the port boundary.
type Artifact struct {
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

// ArtifactFilters contains filter options for listing artifacts.
type ArtifactFilters struct {
	Type     string
	Status   string
	ParentID string
	Query    string
	Limit    int
}

// TraceResult is the reverse path from an artifact to its root.
type TraceResult struct {
	ArtifactID string
	Path       []*Artifact // artifact first, root last
}

// HistoryEntry is one recorded change to an artifact.
type HistoryEntry struct {
	ID        string
	Action    string
	FieldName string
	OldValue  string
	NewValue  string
	Note      string
	ActorID   string
	Revision  int
	CreatedAt string
}

// ValidationReport is the outcome of a full diagnostic pass.
type ValidationReport struct {
	ArtifactCount int
	Violations    []*Violation
	Summary       string
}

// Violation is one gate failure at the port boundary.
type Violation struct {
	Code       string
	Gate       string
	ArtifactID string
	Ref        string
	Expected   string
	Actual     string
	Path       []string
	Message    string
}
