package secondary

import "context"

// Repositories groups the repositories that share one unit of work.
type Repositories struct {
	Artifacts  ArtifactRepository
	History    HistoryRepository
	Sprints    SprintRepository
	Knowledge  KnowledgeRepository
	Generation GenerationCounter
}

// Transactor runs work atomically against the store.
type Transactor interface {
	// Atomic runs fn inside one write transaction. The repositories handed to
	// fn are bound to that transaction; fn's error rolls everything back.
	Atomic(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error

	// Repositories returns repositories bound to the database outside any
	// transaction, for reads.
	Repositories() Repositories
}
