package window

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RemoveResult describes a completed removal.
type RemoveResult struct {
	// Added is how many identifiers were new to the removal filter.
	Added int
	// Dropped is how many window items were removed.
	Dropped int
	// Refilled is how many items were pulled in to replace them.
	Refilled int
	// Overflow is true when refilling ran out of data.
	Overflow bool
	// Boundary tells a missing page apart from a failed fetch.
	Boundary Boundary
}

// Remove permanently excludes ids and refills the window from the items that
// follow it. The removal filter and the window change together: if the
// operation fails, neither does.
//
// Removing ids before any Establish call is an error. Removing an empty set
// does nothing.
func (e *Engine[T]) Remove(ctx context.Context, ids ...ID) (RemoveResult, error) {
	if len(ids) == 0 {
		return RemoveResult{}, nil
	}
	if e.size == 0 {
		return RemoveResult{}, ErrNotEstablished
	}
	if err := ctx.Err(); err != nil {
		return RemoveResult{}, err
	}

	staged := e.filter.clone()
	added := staged.add(ids...)

	if e.rng == nil || e.last == nil {
		// Nothing has been materialized; the filter applies from the next fetch.
		e.filter.add(ids...)
		return RemoveResult{Added: added}, nil
	}

	pg := e.pages.withFilter(staged)
	rng := *e.rng
	survivors := pg.keep(e.items)

	var (
		anchor located[T]
		found  bool
		err    error
	)
	if len(survivors) > 0 {
		anchor, found, err = locate(ctx, pg, rangePages(rng), survivors[0].ItemID(), false)
		if err != nil {
			return RemoveResult{}, err
		}
		if !found {
			return RemoveResult{}, fmt.Errorf("%w: item %d", ErrRelocate, survivors[0].ItemID())
		}
	} else {
		anchor, found, err = e.nextAfterLast(ctx, pg, rng)
		if err != nil {
			return RemoveResult{}, err
		}
	}

	var (
		next     Range
		items    []T
		boundary Boundary
	)
	if !found {
		// Every item from the old window onward is gone. The empty window
		// parks after the last page scanned.
		pos := rng.End
		if anchor.page.found() {
			n := len(anchor.page.items)
			pos = Cursor{Page: anchor.page.number, Index: n, MaxIndex: n}
		}
		next = Range{Start: pos, End: pos}
		boundary = anchor.boundary
	} else {
		items, next, boundary, err = e.refill(ctx, pg, anchor, survivors)
		if err != nil {
			return RemoveResult{}, err
		}
	}

	e.filter.add(ids...)
	dropped := len(e.items) - len(survivors)
	e.commit(next, items)
	e.atEnd = boundary != BoundaryNone

	res := RemoveResult{
		Added:    added,
		Dropped:  dropped,
		Refilled: len(items) - len(survivors),
		Overflow: boundary != BoundaryNone,
		Boundary: boundary,
	}

	e.log.Debug().
		Int("added", res.Added).
		Int("dropped", res.Dropped).
		Int("refilled", res.Refilled).
		Stringer("range", next).
		Bool("overflow", res.Overflow).
		Msg("items removed")
	return res, nil
}

// refill rebuilds the window starting at the anchor. The surviving items are
// kept and the slots after them are filled from the anchor's page and, once
// the end cursor is normalized, from the pages it passed over.
func (e *Engine[T]) refill(ctx context.Context, pg *pager[T], anchor located[T], survivors []T) ([]T, Range, Boundary, error) {
	data := anchor.page.items
	n := len(data)

	start := Cursor{Page: anchor.page.number, Index: anchor.index, MaxIndex: n}
	end := start.shift(e.size)

	adj, err := pg.adjust(ctx, end)
	if err != nil {
		return nil, Range{}, BoundaryNone, err
	}

	// Everything from the anchor up to the normalized end, in order. The
	// survivors are its prefix: they were contiguous before the removal and
	// the filter only took items out between them.
	fresh := make([]T, 0, e.size)
	fresh = append(fresh, data[anchor.index:min(anchor.index+e.size, n)]...)
	fresh = append(fresh, adj.Passed...)

	items := slices.Clone(survivors)
	if len(fresh) > len(items) {
		items = append(items, fresh[len(items):]...)
	}

	return items, Range{Start: start, End: adj.Cursor}, adj.Boundary, nil
}

// nextAfterLast finds the first still-valid item after the last item the
// window held, scanning the page holding that item and then the pages after
// it. When nothing valid remains, found is false and the returned page is the
// last one scanned.
func (e *Engine[T]) nextAfterLast(ctx context.Context, pg *pager[T], rng Range) (located[T], bool, error) {
	var (
		current page[T]
		from    int
	)

	if len(e.items) == 0 {
		// An empty window sits at the end of its page; scanning resumes on
		// the following pages.
		p, err := pg.fetch(ctx, rng.End.Page)
		if err != nil {
			return located[T]{}, false, err
		}
		if !p.found() {
			return located[T]{page: p, boundary: p.boundary}, false, nil
		}
		current, from = p, len(p.raw)
	} else {
		lastID := (*e.last).ItemID()
		at, found, err := locate(ctx, pg, rangePages(rng), lastID, true)
		if err != nil {
			return located[T]{}, false, err
		}
		if !found {
			return located[T]{}, false, fmt.Errorf("%w: item %d", ErrRelocate, lastID)
		}
		current, from = at.page, at.index+1
	}

	for {
		for _, item := range current.raw[from:] {
			if !pg.visible(item) {
				continue
			}
			idx := slices.IndexFunc(current.items, func(v T) bool { return v.ItemID() == item.ItemID() })
			return located[T]{page: current, index: idx}, true, nil
		}

		next, err := pg.fetch(ctx, current.number+1)
		if err != nil {
			return located[T]{}, false, err
		}
		if !next.found() {
			return located[T]{page: current, boundary: next.boundary}, false, nil
		}
		current, from = next, 0
	}
}

// located is a page together with the position of an item on it.
type located[T Item] struct {
	page     page[T]
	index    int
	boundary Boundary
}

// locate fetches the candidate pages concurrently and returns the first one
// found to contain id. raw selects whether removed items are searched too.
//
// The first goroutine to find the item claims the result and later finds are
// discarded. Pages never share an item, so at most one page can match unless
// the source breaks its immutability contract.
func locate[T Item](ctx context.Context, pg *pager[T], pages []int, id ID, raw bool) (located[T], bool, error) {
	var (
		mu  sync.Mutex
		hit *located[T]
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, number := range pages {
		g.Go(func() error {
			p, err := pg.fetch(gctx, number)
			if err != nil {
				return err
			}
			if !p.found() {
				return nil
			}

			list := p.items
			if raw {
				list = p.raw
			}
			idx := slices.IndexFunc(list, func(v T) bool { return v.ItemID() == id })
			if idx < 0 {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			if hit == nil {
				hit = &located[T]{page: p, index: idx}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return located[T]{}, false, err
	}
	if hit == nil {
		return located[T]{}, false, nil
	}
	return *hit, true, nil
}

// rangePages lists every page a range touches.
func rangePages(rng Range) []int {
	pages := make([]int, 0, max(0, rng.End.Page-rng.Start.Page+1))
	for p := rng.Start.Page; p <= rng.End.Page; p++ {
		pages = append(pages, p)
	}
	return pages
}
