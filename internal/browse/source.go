package browse

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/colonyops/taproom/internal/core/config"
	"github.com/colonyops/taproom/internal/core/kv"
	"github.com/colonyops/taproom/internal/core/recipe"
	"github.com/colonyops/taproom/internal/core/window"
	"github.com/colonyops/taproom/internal/source/cache"
	"github.com/colonyops/taproom/internal/source/fixture"
	"github.com/colonyops/taproom/internal/source/punkapi"
)

// ErrNotFound is returned by Find when no page holds the requested recipe.
var ErrNotFound = errors.New("recipe not found")

// Source is a page source of recipes.
type Source = window.PageSource[recipe.Recipe]

// Stack is the page source built from configuration: the origin, an optional
// persistent cache and a last-page cache in front of both.
type Stack struct {
	Source Source
	// Name identifies the origin in logs, e.g. "punkapi" or "fixture".
	Name string
	// Persistent is nil when the persistent cache is disabled or not backed
	// by a store.
	Persistent *cache.Persistent[recipe.Recipe]
	Last       *cache.LastPage[recipe.Recipe]
}

// NewStack builds the source stack described by cfg. store backs the
// persistent cache and may be nil.
func NewStack(cfg *config.Config, store kv.Store, log zerolog.Logger) (*Stack, error) {
	var (
		origin Source
		scope  string
	)

	switch cfg.Source.Kind {
	case config.SourcePunkAPI:
		origin = punkapi.New(punkapi.Options{
			BaseURL:  cfg.Source.BaseURL,
			PerPage:  cfg.Source.PerPage,
			Timeout:  cfg.Source.Timeout,
			RetryMax: cfg.Source.RetryMax,
			Logger:   log,
		})
		scope = cfg.Source.BaseURL + "?per_page=" + strconv.Itoa(cfg.Source.PerPage)
	case config.SourceFixture:
		origin = fixture.New(cfg.Source.FixtureItems, cfg.Source.PerPage)
		scope = "fixture:" + strconv.Itoa(cfg.Source.FixtureItems) + ":" + strconv.Itoa(cfg.Source.PerPage)
	default:
		return nil, fmt.Errorf("unsupported source kind %q", cfg.Source.Kind)
	}

	stack := &Stack{Name: string(cfg.Source.Kind)}

	src := origin
	if store != nil && !cfg.Cache.Disabled {
		stack.Persistent = cache.NewPersistent(origin, store, scope, cfg.Cache.TTL, log)
		src = stack.Persistent
	}

	stack.Last = cache.NewLastPage(src)
	stack.Source = stack.Last
	return stack, nil
}

// Find scans pages from the first until it finds the recipe with id. It
// stops at the first missing page, or at the first failed fetch which is
// returned.
func Find(ctx context.Context, src Source, id window.ID) (recipe.Recipe, error) {
	for page := 1; ; page++ {
		items, err := src.FetchPage(ctx, page)
		if err != nil {
			if errors.Is(err, window.ErrNoPage) {
				return recipe.Recipe{}, fmt.Errorf("%w: %d", ErrNotFound, id)
			}
			return recipe.Recipe{}, err
		}
		if len(items) == 0 {
			return recipe.Recipe{}, fmt.Errorf("%w: %d", ErrNotFound, id)
		}

		for _, r := range items {
			if r.ID == id {
				return r, nil
			}
		}
	}
}
