package sqlite

import (
	"context"
	"fmt"

	"github.com/example/blueprint/internal/ports/secondary"
)

const generationKey = "generation"

// GenerationCounter implements secondary.GenerationCounter on store_meta.
type GenerationCounter struct {
	db DBTX
}

// NewGenerationCounter creates a new SQLite generation counter.
func NewGenerationCounter(db DBTX) *GenerationCounter {
	return &GenerationCounter{db: db}
}

// Current returns the stored generation.
func (g *GenerationCounter) Current(ctx context.Context) (int64, error) {
	var gen int64
	err := g.db.QueryRowContext(ctx, "SELECT value FROM store_meta WHERE key = ?", generationKey).Scan(&gen)
	if err != nil {
		return 0, wrapDBError("failed to read store generation", err)
	}
	return gen, nil
}

// Bump increments the generation and returns the new value.
func (g *GenerationCounter) Bump(ctx context.Context) (int64, error) {
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO store_meta (key, value) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET value = value + 1`,
		generationKey,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to bump store generation: %w", err)
	}
	return g.Current(ctx)
}

// Ensure GenerationCounter implements the interface
var _ secondary.GenerationCounter = (*GenerationCounter)(nil)
