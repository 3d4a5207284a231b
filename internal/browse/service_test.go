package browse

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taproom/internal/core/recipe"
	"github.com/colonyops/taproom/internal/core/window"
	"github.com/colonyops/taproom/internal/data/db"
	"github.com/colonyops/taproom/internal/data/stores"
	"github.com/colonyops/taproom/internal/source/exclude"
	"github.com/colonyops/taproom/internal/source/fixture"
)

type memRemovals struct {
	mu    sync.Mutex
	items []stores.RemovedItem
	err   error
}

func (m *memRemovals) Add(_ context.Context, items ...stores.RemovedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.items = append(m.items, items...)
	return nil
}

func (m *memRemovals) IDs(_ context.Context) ([]window.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]window.ID, 0, len(m.items))
	for _, item := range m.items {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

func recipeIDs(items []recipe.Recipe) []window.ID {
	out := make([]window.ID, len(items))
	for i, r := range items {
		out[i] = r.ID
	}
	return out
}

func newTestService(t *testing.T, removals Removals, opts Options) *Service {
	t.Helper()
	if opts.Size == 0 {
		opts.Size = 9
	}
	if opts.Parts == 0 {
		opts.Parts = 3
	}
	opts.Logger = zerolog.Nop()

	svc, err := New(context.Background(), fixture.New(30, 10), removals, opts)
	require.NoError(t, err)
	return svc
}

func TestService_EstablishAndSlide(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, Options{})

	snap, err := svc.Establish(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Established)
	assert.True(t, snap.AtStart)
	assert.Equal(t, []window.ID{1, 2, 3, 4, 5, 6, 7, 8, 9}, recipeIDs(snap.Items))
	assert.Equal(t, 9, snap.Size)
	assert.Equal(t, 3, snap.Step)

	snap, res, err := svc.Forward(ctx)
	require.NoError(t, err)
	assert.False(t, res.Overflow)
	assert.Equal(t, []window.ID{4, 5, 6, 7, 8, 9, 10, 11, 12}, recipeIDs(snap.Items))
	assert.False(t, snap.AtStart)

	snap, _, err = svc.Back(ctx)
	require.NoError(t, err)
	assert.Equal(t, []window.ID{1, 2, 3, 4, 5, 6, 7, 8, 9}, recipeIDs(snap.Items))
}

func TestService_SlideBeforeEstablishEstablishes(t *testing.T) {
	svc := newTestService(t, nil, Options{})

	snap, res, err := svc.Forward(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Overflow)
	assert.Equal(t, []window.ID{1, 2, 3, 4, 5, 6, 7, 8, 9}, recipeIDs(snap.Items))
}

func TestService_ForwardToEnd(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, Options{})

	_, err := svc.Establish(ctx)
	require.NoError(t, err)

	var (
		snap Snapshot
		res  window.SlideResult
	)
	for range 20 {
		snap, res, err = svc.Forward(ctx)
		require.NoError(t, err)
		if res.Overflow {
			break
		}
	}

	assert.True(t, res.Overflow)
	assert.Equal(t, window.BoundaryNoPage, res.Boundary)
	assert.True(t, snap.AtEnd)
	assert.Equal(t, window.ID(30), snap.Items[len(snap.Items)-1].ID)
}

func TestService_RemovePersists(t *testing.T) {
	ctx := context.Background()
	removals := &memRemovals{}
	svc := newTestService(t, removals, Options{})

	_, err := svc.Establish(ctx)
	require.NoError(t, err)

	snap, res, err := svc.Remove(ctx, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 2, res.Dropped)
	assert.Equal(t, []window.ID{1, 4, 5, 6, 7, 8, 9, 10, 11}, recipeIDs(snap.Items))
	assert.Equal(t, 2, snap.Removed)
	assert.True(t, svc.Removed(2))
	assert.False(t, svc.Removed(4))

	require.Len(t, removals.items, 2)
	assert.Equal(t, window.ID(2), removals.items[0].ID)
	assert.Equal(t, fixture.Recipe(2).Name, removals.items[0].Name)
	assert.False(t, removals.items[0].RemovedAt.IsZero())

	// A new service over the same store starts with the removals applied.
	again := newTestService(t, removals, Options{})
	snap, err = again.Establish(ctx)
	require.NoError(t, err)
	assert.Equal(t, []window.ID{1, 4, 5, 6, 7, 8, 9, 10, 11}, recipeIDs(snap.Items))
}

func TestService_RemoveNothing(t *testing.T) {
	removals := &memRemovals{}
	svc := newTestService(t, removals, Options{})

	_, res, err := svc.Remove(context.Background())
	require.NoError(t, err)
	assert.Equal(t, window.RemoveResult{}, res)
	assert.Empty(t, removals.items)
}

func TestService_RemovePersistFailureKeepsWindow(t *testing.T) {
	ctx := context.Background()
	removals := &memRemovals{err: errors.New("disk full")}
	svc := newTestService(t, removals, Options{})

	_, err := svc.Establish(ctx)
	require.NoError(t, err)

	snap, _, err := svc.Remove(ctx, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist removals")
	assert.NotContains(t, recipeIDs(snap.Items), window.ID(1))
}

func TestService_Exclude(t *testing.T) {
	ctx := context.Background()
	m, err := exclude.New("*stout*")
	require.NoError(t, err)

	svc := newTestService(t, nil, Options{Exclude: m})

	_, err = svc.Establish(ctx)
	require.NoError(t, err)

	snap, _, err := svc.Forward(ctx)
	require.NoError(t, err)
	assert.Equal(t, []window.ID{4, 5, 6, 7, 8, 9, 10, 11, 23}, recipeIDs(snap.Items))
	for _, r := range snap.Items {
		assert.NotContains(t, strings.ToLower(r.Name), "stout")
	}
	assert.Equal(t, 0, snap.Removed)
}

func TestService_CancelledContext(t *testing.T) {
	svc := newTestService(t, nil, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Establish(ctx)
	require.Error(t, err)
	assert.True(t, IsCanceled(err))
	assert.False(t, svc.Snapshot().Established)
}

func TestService_WithRemovalStore(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	store := stores.NewRemovalStore(database)
	require.NoError(t, store.Add(ctx, stores.RemovedItem{ID: 1, Name: "gone"}))

	svc := newTestService(t, store, Options{})
	snap, err := svc.Establish(ctx)
	require.NoError(t, err)
	assert.Equal(t, []window.ID{2, 3, 4, 5, 6, 7, 8, 9, 10}, recipeIDs(snap.Items))

	_, _, err = svc.Remove(ctx, 5)
	require.NoError(t, err)

	ids, err := store.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []window.ID{1, 5}, ids)
}

func TestService_ConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, Options{})

	_, err := svc.Establish(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_, _, err := svc.Forward(ctx)
				assert.NoError(t, err)
			} else {
				_, _, err := svc.Back(ctx)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	snap := svc.Snapshot()
	assert.Len(t, snap.Items, 9)
}
