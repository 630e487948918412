package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/example/blueprint/internal/core/graph"
	"github.com/example/blueprint/internal/ports/secondary"
)

// GraphCache holds the traceability graph for the latest store generation.
// The graph is a derived view: every lookup compares the cached generation
// with the store's and rebuilds from the artifact set when they differ.
type GraphCache struct {
	mu       sync.RWMutex
	snapshot *graph.Graph
	builds   int64
	group    singleflight.Group
}

// NewGraphCache creates an empty cache.
func NewGraphCache() *GraphCache {
	return &GraphCache{}
}

// Snapshot returns the graph at the committed generation. Concurrent readers
// that miss the cache on the same generation share one rebuild.
func (c *GraphCache) Snapshot(ctx context.Context, repos secondary.Repositories) (*graph.Graph, error) {
	gen, err := repos.Generation.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read store generation: %w", err)
	}
	if g := c.cached(gen); g != nil {
		return g, nil
	}

	v, err, _ := c.group.Do(fmt.Sprint(gen), func() (any, error) {
		return c.rebuild(ctx, repos, gen)
	})
	if err != nil {
		return nil, err
	}
	return v.(*graph.Graph), nil
}

// SnapshotTx returns the graph as seen by a write transaction. It must be
// called before the transaction writes anything, so the generation it reads
// still describes the artifact set it loads. Writers are serialized, so no
// coalescing is needed.
func (c *GraphCache) SnapshotTx(ctx context.Context, repos secondary.Repositories) (*graph.Graph, error) {
	gen, err := repos.Generation.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read store generation: %w", err)
	}
	if g := c.cached(gen); g != nil {
		return g, nil
	}
	return c.rebuild(ctx, repos, gen)
}

// Builds reports how many times the graph was rebuilt.
func (c *GraphCache) Builds() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.builds
}

func (c *GraphCache) cached(gen int64) *graph.Graph {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot != nil && c.snapshot.Generation() == gen {
		return c.snapshot
	}
	return nil
}

func (c *GraphCache) rebuild(ctx context.Context, repos secondary.Repositories, gen int64) (*graph.Graph, error) {
	g, err := LoadGraph(ctx, repos)
	if err != nil {
		return nil, err
	}
	g.WithGeneration(gen)

	c.mu.Lock()
	c.builds++
	if c.snapshot == nil || c.snapshot.Generation() <= gen {
		c.snapshot = g
	}
	c.mu.Unlock()
	return g, nil
}

// LoadGraph builds a graph from every stored artifact.
func LoadGraph(ctx context.Context, repos secondary.Repositories) (*graph.Graph, error) {
	records, err := repos.Artifacts.List(ctx, secondary.ArtifactFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}
	return graph.Build(recordsToArtifacts(records)), nil
}
