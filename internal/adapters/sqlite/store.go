// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/example/blueprint/internal/ports/secondary"
)

// DBTX is satisfied by *sql.DB and *sql.Tx, so every repository works the
// same inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const busyRetryMaxElapsed = 10 * time.Second

func newBusyBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxElapsedTime = busyRetryMaxElapsed
	return bo
}

// Store implements secondary.Transactor over one SQLite database.
type Store struct {
	db         *sql.DB
	newBackOff func() backoff.BackOff
}

// NewStore creates a Store. The database should be opened through db.Open so
// transactions begin IMMEDIATE.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, newBackOff: newBusyBackoff}
}

// Repositories returns repositories bound to the database, for reads.
func (s *Store) Repositories() secondary.Repositories {
	return repositoriesFor(s.db)
}

// Atomic runs fn in one write transaction. When SQLite reports the database
// busy or locked the whole unit of work is retried with exponential backoff,
// so fn must derive everything it writes from what it reads inside the
// transaction. Any other error rolls back and is returned as is.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, repos secondary.Repositories) error) error {
	return backoff.Retry(func() error {
		err := s.runTx(ctx, fn)
		if err != nil && isBusy(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(s.newBackOff(), ctx))
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, repos secondary.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, repositoriesFor(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

func repositoriesFor(q DBTX) secondary.Repositories {
	return secondary.Repositories{
		Artifacts:  NewArtifactRepository(q),
		History:    NewHistoryRepository(q),
		Sprints:    NewSprintRepository(q),
		Knowledge:  NewKnowledgeRepository(q),
		Generation: NewGenerationCounter(q),
	}
}

// Ensure Store implements the interface
var _ secondary.Transactor = (*Store)(nil)
