package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/blueprint/internal/adapters/sqlite"
	"github.com/example/blueprint/internal/db"
	"github.com/example/blueprint/internal/ports/secondary"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "blueprint.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return sqlite.NewStore(conn)
}

func TestStore_AtomicCommits(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	err := store.Atomic(ctx, func(ctx context.Context, repos secondary.Repositories) error {
		if err := repos.Artifacts.Create(ctx, &secondary.ArtifactRecord{ID: "GL-001", Type: "Goal", Status: "DRAFT", Title: "g"}); err != nil {
			return err
		}
		_, err := repos.Generation.Bump(ctx)
		return err
	})
	require.NoError(t, err)

	repos := store.Repositories()
	_, err = repos.Artifacts.GetByID(ctx, "GL-001")
	require.NoError(t, err)

	gen, err := repos.Generation.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
}

func TestStore_AtomicRollsBack(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Atomic(ctx, func(ctx context.Context, repos secondary.Repositories) error {
		if err := repos.Artifacts.Create(ctx, &secondary.ArtifactRecord{ID: "GL-001", Type: "Goal", Status: "DRAFT", Title: "g"}); err != nil {
			return err
		}
		if _, err := repos.Generation.Bump(ctx); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	repos := store.Repositories()
	list, err := repos.Artifacts.List(ctx, secondary.ArtifactFilters{})
	require.NoError(t, err)
	assert.Empty(t, list)

	gen, err := repos.Generation.Current(ctx)
	require.NoError(t, err)
	assert.Zero(t, gen)
}

// Concurrent writers serialize on BEGIN IMMEDIATE; every bump lands.
func TestStore_ConcurrentWriters(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Atomic(ctx, func(ctx context.Context, repos secondary.Repositories) error {
				_, err := repos.Generation.Bump(ctx)
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	gen, err := store.Repositories().Generation.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(writers), gen)
}
