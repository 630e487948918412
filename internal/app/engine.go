package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/example/blueprint/internal/core/gate"
	"github.com/example/blueprint/internal/core/graph"
	"github.com/example/blueprint/internal/core/violation"
	"github.com/example/blueprint/internal/ports/secondary"
	"github.com/example/blueprint/internal/telemetry"
)

// Engine is the state every service shares: the store, the derived graph,
// the gate validator and the in-process write lock. All mutations in one
// process go through the same Engine.
type Engine struct {
	store     secondary.Transactor
	cache     *GraphCache
	validator *gate.Validator
	logger    *slog.Logger
	metrics   *telemetry.Instruments

	writeMu sync.Mutex
}

// NewEngine creates an Engine. A nil logger falls back to slog.Default and
// nil metrics record nothing.
func NewEngine(store secondary.Transactor, validator *gate.Validator, logger *slog.Logger, metrics *telemetry.Instruments) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = gate.NewValidator(gate.DefaultOptions())
	}
	return &Engine{
		store:     store,
		cache:     NewGraphCache(),
		validator: validator,
		logger:    logger,
		metrics:   metrics,
	}
}

// Graph returns the committed traceability graph.
func (e *Engine) Graph(ctx context.Context) (*graph.Graph, error) {
	return e.cache.Snapshot(ctx, e.store.Repositories())
}

// Cache exposes the graph cache.
func (e *Engine) Cache() *GraphCache {
	return e.cache
}

// errNoChange lets a unit of work end without writing: the transaction
// rolls back and the caller sees success.
var errNoChange = errors.New("no change")

// exclusive runs fn as one critical section: the in-process lock, then one
// write transaction.
func (e *Engine) exclusive(ctx context.Context, op string, fn func(ctx context.Context, repos secondary.Repositories) error) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	err := e.store.Atomic(ctx, fn)
	if errors.Is(err, errNoChange) {
		err = nil
	}
	e.observe(ctx, op, err)
	return err
}

// mutate is exclusive for writes that touch the artifact set: fn sees the
// graph as of the transaction start, and a successful fn bumps the store
// generation in the same transaction.
func (e *Engine) mutate(ctx context.Context, op string, fn func(ctx context.Context, repos secondary.Repositories, g *graph.Graph) error) error {
	return e.exclusive(ctx, op, func(ctx context.Context, repos secondary.Repositories) error {
		g, err := e.cache.SnapshotTx(ctx, repos)
		if err != nil {
			return err
		}
		if err := fn(ctx, repos, g); err != nil {
			return err
		}
		_, err = repos.Generation.Bump(ctx)
		return err
	})
}

// observe records the outcome of an operation in logs and metrics.
func (e *Engine) observe(ctx context.Context, op string, err error) {
	e.metrics.RecordOperation(ctx, op, err)
	if err == nil {
		return
	}
	if verr, ok := asViolation(err); ok {
		code := violation.CodeName(verr)
		e.metrics.RecordRejection(ctx, verr.Gate, code)
		e.logger.Warn("gate rejected operation",
			"operation", op,
			"gate", verr.Gate,
			"code", code,
			"artifact_id", verr.ArtifactID,
			"ref", verr.Ref,
		)
		return
	}
	e.logger.Error("operation failed", "operation", op, "error", err)
}
