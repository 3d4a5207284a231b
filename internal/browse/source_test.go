package browse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taproom/internal/core/config"
	"github.com/colonyops/taproom/internal/core/recipe"
	"github.com/colonyops/taproom/internal/data/db"
	"github.com/colonyops/taproom/internal/data/stores"
	"github.com/colonyops/taproom/internal/source/fixture"
)

func testConfig(t *testing.T, kind config.SourceKind) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Source.Kind = kind
	cfg.Source.PerPage = 10
	cfg.Source.FixtureItems = 30
	cfg.Source.RetryMax = 0
	return &cfg
}

func newKVStore(t *testing.T) *stores.KVStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return stores.NewKVStore(database)
}

func TestNewStack_Fixture(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.SourceFixture)

	stack, err := NewStack(cfg, newKVStore(t), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "fixture", stack.Name)
	require.NotNil(t, stack.Persistent)

	items, err := stack.Source.FetchPage(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, items, 10)
	assert.Equal(t, fixture.Recipe(11), items[0])

	pages, err := stack.Persistent.Pages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, pages)

	_, err = stack.Source.FetchPage(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, stack.Last.Hits())
}

func TestNewStack_CacheDisabled(t *testing.T) {
	cfg := testConfig(t, config.SourceFixture)
	cfg.Cache.Disabled = true

	stack, err := NewStack(cfg, newKVStore(t), zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, stack.Persistent)

	stack, err = NewStack(testConfig(t, config.SourceFixture), nil, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, stack.Persistent)
}

func TestNewStack_UnknownKind(t *testing.T) {
	_, err := NewStack(testConfig(t, "ftp"), nil, zerolog.Nop())
	require.Error(t, err)
}

func TestNewStack_PunkAPIServesFromCache(t *testing.T) {
	ctx := context.Background()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 2 {
			_, _ = w.Write([]byte("[]"))
			return
		}
		items := []recipe.Recipe{fixture.Recipe(page*2 - 1), fixture.Recipe(page * 2)}
		_ = json.NewEncoder(w).Encode(items)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(t, config.SourcePunkAPI)
	cfg.Source.BaseURL = srv.URL
	store := newKVStore(t)

	stack, err := NewStack(cfg, store, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "punkapi", stack.Name)

	for _, page := range []int{1, 2, 1, 2} {
		items, err := stack.Source.FetchPage(ctx, page)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	}
	assert.Equal(t, int32(2), requests.Load())

	// A fresh stack over the same store does not hit the network.
	again, err := NewStack(cfg, store, zerolog.Nop())
	require.NoError(t, err)
	items, err := again.Source.FetchPage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Hazy IPA", items[0].Name)
	assert.Equal(t, int32(2), requests.Load())
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	src := fixture.New(30, 10)

	r, err := Find(ctx, src, 25)
	require.NoError(t, err)
	assert.Equal(t, fixture.Recipe(25), r)

	_, err = Find(ctx, src, 31)
	require.ErrorIs(t, err, ErrNotFound)
}
