package primary

import "context"

// SprintService defines the primary port for backlog and sprint operations.
type SprintService interface {
	// GetBacklog returns the tasks ready to be pulled into a sprint.
	GetBacklog(ctx context.Context) ([]*Artifact, error)

	// StartSprint validates a batch of tasks, orders it and commits it as the
	// current sprint. All or nothing.
	StartSprint(ctx context.Context, req StartSprintRequest) (*Sprint, error)

	// CompleteTask moves a sprint task to DONE and ticks its checkmark.
	CompleteTask(ctx context.Context, req CompleteTaskRequest) (*CompleteTaskResponse, error)

	// GetCurrentSprint returns the most recent sprint.
	GetCurrentSprint(ctx context.Context) (*Sprint, error)

	// ListSprints returns every sprint, newest first.
	ListSprints(ctx context.Context) ([]*Sprint, error)
}

// StartSprintRequest contains parameters for starting a sprint.
type StartSprintRequest struct {
	TaskIDs []string
	Goal    string
}

// CompleteTaskRequest contains parameters for completing a sprint task.
type CompleteTaskRequest struct {
	TaskID string
	Note   string
}

// CompleteTaskResponse contains the result of completing a task.
type CompleteTaskResponse struct {
	Task         *Artifact
	Sprint       *Sprint
	SprintClosed bool
}

// Sprint represents a sprint at the port boundary.
type Sprint struct {
	ID        string
	Goal      string
	Status    string
	Tasks     []*SprintTask
	Done      int
	Total     int
	CreatedAt string
	ClosedAt  string
}

// SprintTask is one checkmark line of a sprint.
type SprintTask struct {
	TaskID    string
	Title     string
	Checked   bool
	CheckedAt string
}
