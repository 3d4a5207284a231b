package window

import (
	"context"
	"errors"
	"slices"

	"github.com/rs/zerolog"
)

// page is one fetched page, before and after removal filtering.
type page[T Item] struct {
	number   int
	raw      []T
	items    []T
	boundary Boundary
	err      error
}

func (p page[T]) found() bool {
	return p.boundary == BoundaryNone
}

// pager fetches pages through a removal filter and an optional exclusion
// predicate.
type pager[T Item] struct {
	src    PageSource[T]
	filter *RemovalFilter
	skip   func(T) bool
	log    zerolog.Logger
}

func (p *pager[T]) withFilter(f *RemovalFilter) *pager[T] {
	return &pager[T]{src: p.src, filter: f, skip: p.skip, log: p.log}
}

// visible reports whether item survives both the removal filter and the
// exclusion predicate.
func (p *pager[T]) visible(item T) bool {
	if p.filter.Contains(item.ItemID()) {
		return false
	}
	return p.skip == nil || !p.skip(item)
}

// keep returns the visible items of page.
func (p *pager[T]) keep(page []T) []T {
	out := make([]T, 0, len(page))
	for _, item := range page {
		if p.visible(item) {
			out = append(out, item)
		}
	}
	return out
}

// fetch loads a page. A missing or failed page is reported through the
// boundary field; only a cancelled context is returned as an error.
func (p *pager[T]) fetch(ctx context.Context, number int) (page[T], error) {
	if number < 1 {
		return page[T]{number: number, boundary: BoundaryNoPage}, nil
	}

	raw, err := p.src.FetchPage(ctx, number)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return page[T]{}, ctxErr
		}
		if errors.Is(err, ErrNoPage) {
			p.log.Debug().Int("page", number).Msg("page does not exist")
			return page[T]{number: number, boundary: BoundaryNoPage}, nil
		}
		p.log.Warn().Err(err).Int("page", number).Msg("page fetch failed, treating as end of data")
		return page[T]{number: number, boundary: BoundaryFetchFailed, err: err}, nil
	}

	if len(raw) == 0 {
		p.log.Debug().Int("page", number).Msg("page is empty")
		return page[T]{number: number, boundary: BoundaryNoPage}, nil
	}

	return page[T]{number: number, raw: raw, items: p.keep(raw)}, nil
}

// Adjusted is the result of normalizing a cursor.
type Adjusted[T Item] struct {
	Cursor Cursor
	// Passed holds the items on newly entered pages that lie between the
	// cursor's original page and its final position, in global order.
	Passed []T
	// Boundary is BoundaryNone unless the walk ran out of pages.
	Boundary Boundary
	// Shortfall is how many positions the cursor pointed past the available
	// data before it was clamped.
	Shortfall int
}

// Exhausted reports whether the walk hit the edge of the data.
func (a Adjusted[T]) Exhausted() bool {
	return a.Boundary != BoundaryNone
}

// adjust walks c onto neighbouring pages until its index is in range. When no
// further page exists the cursor clamps to the nearest valid position: index 0
// walking back, MaxIndex walking forward.
func (p *pager[T]) adjust(ctx context.Context, c Cursor) (Adjusted[T], error) {
	var passed []T

	for {
		switch {
		case c.Index < 0:
			prev, err := p.fetch(ctx, c.Page-1)
			if err != nil {
				return Adjusted[T]{}, err
			}
			if !prev.found() {
				shortfall := -c.Index
				c.Index = 0
				p.log.Debug().Stringer("cursor", c).Int("shortfall", shortfall).Msg("cursor clamped at start of data")
				return Adjusted[T]{Cursor: c, Passed: passed, Boundary: prev.boundary, Shortfall: shortfall}, nil
			}

			n := len(prev.items)
			c = Cursor{Page: c.Page - 1, Index: n + c.Index, MaxIndex: n}
			passed = append(slices.Clone(prev.items[max(c.Index, 0):]), passed...)

		case c.pastEnd():
			next, err := p.fetch(ctx, c.Page+1)
			if err != nil {
				return Adjusted[T]{}, err
			}
			if !next.found() {
				shortfall := c.Index - c.MaxIndex
				c.Index = c.MaxIndex
				p.log.Debug().Stringer("cursor", c).Int("shortfall", shortfall).Msg("cursor clamped at end of data")
				return Adjusted[T]{Cursor: c, Passed: passed, Boundary: next.boundary, Shortfall: shortfall}, nil
			}

			n := len(next.items)
			c = Cursor{Page: c.Page + 1, Index: c.Index - c.MaxIndex, MaxIndex: n}
			passed = append(passed, next.items[:min(c.Index, n)]...)

		default:
			return Adjusted[T]{Cursor: c, Passed: passed}, nil
		}
	}
}
