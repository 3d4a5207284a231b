package cache

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taproom/internal/core/kv"
	"github.com/colonyops/taproom/internal/core/window"
)

// Namespace is the key-value namespace pages are stored under.
const Namespace = "page"

// Persistent stores fetched pages in a key-value store so that later runs can
// browse without refetching. Entries expire after the configured TTL.
//
// Store failures never fail a fetch: they are logged and the source is used.
type Persistent[T window.Item] struct {
	src   window.PageSource[T]
	pages *kv.Bucket[[]T]
	log   zerolog.Logger
}

// NewPersistent wraps src with a cache kept in store. The scope separates
// caches of different sources sharing one store, e.g. the source URL.
func NewPersistent[T window.Item](src window.PageSource[T], store kv.Store, scope string, ttl time.Duration, log zerolog.Logger) *Persistent[T] {
	ns := Namespace
	if scope != "" {
		ns += ":" + scope
	}
	return &Persistent[T]{
		src:   src,
		pages: kv.NewBucket[[]T](store, ns, ttl),
		log:   log.With().Str("cmp", "page-cache").Logger(),
	}
}

// FetchPage returns the stored page if it has not expired, and otherwise
// fetches and stores it.
func (c *Persistent[T]) FetchPage(ctx context.Context, page int) ([]T, error) {
	key := strconv.Itoa(page)

	items, ok, err := c.pages.Load(ctx, key)
	switch {
	case ok:
		c.log.Debug().Int("page", page).Msg("page cache hit")
		return items, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		c.log.Warn().Err(err).Int("page", page).Msg("failed to read cached page")
	}

	items, err = c.src.FetchPage(ctx, page)
	if err != nil {
		return nil, err
	}

	if err := c.pages.Save(ctx, key, items); err != nil {
		c.log.Warn().Err(err).Int("page", page).Msg("failed to store page")
	}
	return items, nil
}

// Pages returns the page numbers currently stored.
func (c *Persistent[T]) Pages(ctx context.Context) ([]int, error) {
	keys, err := c.pages.Keys(ctx)
	if err != nil {
		return nil, err
	}

	pages := make([]int, 0, len(keys))
	for _, k := range keys {
		n, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		pages = append(pages, n)
	}
	slices.Sort(pages)
	return pages, nil
}

// Clear drops every stored page of this cache.
func (c *Persistent[T]) Clear(ctx context.Context) (int, error) {
	return c.pages.Purge(ctx)
}
