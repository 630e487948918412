package secondary

import "context"

// SprintRepository defines the secondary port for sprint persistence.
type SprintRepository interface {
	// Create persists a new sprint together with its ordered task list.
	Create(ctx context.Context, sprint *SprintRecord) error

	// GetByID retrieves a sprint and its task list.
	GetByID(ctx context.Context, id string) (*SprintRecord, error)

	// GetCurrent retrieves the most recently started sprint.
	GetCurrent(ctx context.Context) (*SprintRecord, error)

	// List retrieves every sprint, newest first.
	List(ctx context.Context) ([]*SprintRecord, error)

	// CheckTask ticks the checkmark of a task in a sprint.
	CheckTask(ctx context.Context, sprintID, taskID string) error

	// Close marks a sprint closed.
	Close(ctx context.Context, sprintID string) error

	// GetNextID returns the next available sprint ID.
	GetNextID(ctx context.Context) (string, error)
}

// SprintRecord represents a sprint as stored in persistence.
type SprintRecord struct {
	ID        string
	Goal      string
	Status    string
	Tasks     []SprintTaskRecord // execution order
	CreatedAt string
	ClosedAt  string
}

// SprintTaskRecord is one checkmark line of a sprint.
type SprintTaskRecord struct {
	TaskID    string
	Position  int
	Checked   bool
	CheckedAt string
}
