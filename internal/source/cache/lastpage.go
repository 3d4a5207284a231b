// Package cache wraps page sources with caches.
package cache

import (
	"context"
	"slices"
	"sync"

	"github.com/colonyops/taproom/internal/core/window"
)

// LastPage remembers the most recently fetched page. A slide reads the page
// at its leading edge twice in a row (once to warm it and once on the next
// slide), so a single entry absorbs most repeat fetches.
type LastPage[T window.Item] struct {
	src window.PageSource[T]

	mu     sync.Mutex
	number int
	items  []T
	hits   int
}

// NewLastPage wraps src with a single-entry cache.
func NewLastPage[T window.Item](src window.PageSource[T]) *LastPage[T] {
	return &LastPage[T]{src: src}
}

// FetchPage returns a copy of the cached page when it matches, and otherwise
// fetches it and replaces the cached entry. Failed fetches are not cached.
func (c *LastPage[T]) FetchPage(ctx context.Context, page int) ([]T, error) {
	c.mu.Lock()
	if c.items != nil && c.number == page {
		c.hits++
		items := slices.Clone(c.items)
		c.mu.Unlock()
		return items, nil
	}
	c.mu.Unlock()

	items, err := c.src.FetchPage(ctx, page)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.number = page
	c.items = slices.Clone(items)
	c.mu.Unlock()

	return items, nil
}

// Hits returns how many fetches were served from the cache.
func (c *LastPage[T]) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}
