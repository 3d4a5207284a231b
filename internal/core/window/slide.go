package window

import (
	"context"
	"slices"
)

// Direction is the way a window slides.
type Direction int

const (
	// Forward moves the window toward later items.
	Forward Direction = iota
	// Back moves the window toward earlier items.
	Back
)

func (d Direction) String() string {
	if d == Back {
		return "back"
	}
	return "forward"
}

// SlideResult describes a completed slide.
type SlideResult struct {
	// Overflow is true when the slide hit the edge of the data in its
	// direction. Hosts use it to stop sliding further that way.
	Overflow bool
	// Boundary tells a missing page apart from a failed fetch.
	Boundary Boundary
	// Revealed is the number of items added at the leading edge.
	Revealed int
	// Dropped is the number of items removed from the trailing edge.
	Dropped int
}

// SlideForward moves the window one step toward later items.
func (e *Engine[T]) SlideForward(ctx context.Context) (SlideResult, error) {
	return e.Slide(ctx, Forward)
}

// SlideBack moves the window one step toward earlier items.
func (e *Engine[T]) SlideBack(ctx context.Context) (SlideResult, error) {
	return e.Slide(ctx, Back)
}

// Slide moves the window one step in dir. The leading cursor advances a full
// step and the trailing cursor follows by however many items were revealed,
// so the window keeps its size. A window shorter than its target size (after
// removals near the end of the data) grows back before it starts dropping
// items.
//
// If Establish found no data the slide retries it instead and reports no
// overflow.
func (e *Engine[T]) Slide(ctx context.Context, dir Direction) (SlideResult, error) {
	if e.size == 0 {
		return SlideResult{}, ErrNotEstablished
	}
	if e.rng == nil {
		return SlideResult{}, e.Establish(ctx, e.size)
	}
	if err := ctx.Err(); err != nil {
		return SlideResult{}, err
	}

	var (
		res SlideResult
		err error
	)
	if dir == Forward {
		res, err = e.slideForward(ctx)
	} else {
		res, err = e.slideBack(ctx)
	}
	if err != nil {
		return SlideResult{}, err
	}

	e.log.Debug().
		Stringer("direction", dir).
		Stringer("range", e.rng).
		Int("revealed", res.Revealed).
		Int("dropped", res.Dropped).
		Bool("overflow", res.Overflow).
		Msg("window slid")
	return res, nil
}

func (e *Engine[T]) slideForward(ctx context.Context) (SlideResult, error) {
	rng := *e.rng

	leadPage, err := e.pages.fetch(ctx, rng.End.Page)
	if err != nil {
		return SlideResult{}, err
	}
	if !leadPage.found() {
		return SlideResult{Overflow: true, Boundary: leadPage.boundary}, nil
	}

	oldEnd := rng.End
	lead := oldEnd.shift(e.step)
	lead.MaxIndex = len(leadPage.items)

	direct := sliceWithin(leadPage.items, oldEnd.Index, lead.Index)

	adj, err := e.pages.adjust(ctx, lead)
	if err != nil {
		return SlideResult{}, err
	}

	revealed := len(direct) + len(adj.Passed)
	drop := e.dropCount(revealed)

	trail, err := e.pages.adjust(ctx, rng.Start.shift(drop))
	if err != nil {
		return SlideResult{}, err
	}

	items := make([]T, 0, len(e.items)-drop+revealed)
	items = append(items, e.items[drop:]...)
	items = append(items, direct...)
	items = append(items, adj.Passed...)

	next := Range{Start: trail.Cursor, End: adj.Cursor}
	if err := e.warm(ctx, next.End.Page); err != nil {
		return SlideResult{}, err
	}

	e.commit(next, items)
	e.atEnd = adj.Exhausted()
	if drop > 0 {
		e.atStart = false
	}

	return SlideResult{
		Overflow: adj.Exhausted(),
		Boundary: adj.Boundary,
		Revealed: revealed,
		Dropped:  drop,
	}, nil
}

func (e *Engine[T]) slideBack(ctx context.Context) (SlideResult, error) {
	rng := *e.rng

	leadPage, err := e.pages.fetch(ctx, rng.Start.Page)
	if err != nil {
		return SlideResult{}, err
	}
	if !leadPage.found() {
		return SlideResult{Overflow: true, Boundary: leadPage.boundary}, nil
	}

	oldStart := rng.Start
	lead := oldStart.shift(-e.step)
	lead.MaxIndex = len(leadPage.items)

	direct := sliceWithin(leadPage.items, lead.Index, oldStart.Index)

	adj, err := e.pages.adjust(ctx, lead)
	if err != nil {
		return SlideResult{}, err
	}

	revealed := len(direct) + len(adj.Passed)
	drop := e.dropCount(revealed)

	trail, err := e.pages.adjust(ctx, rng.End.shift(-drop))
	if err != nil {
		return SlideResult{}, err
	}

	items := make([]T, 0, len(e.items)-drop+revealed)
	items = append(items, adj.Passed...)
	items = append(items, direct...)
	items = append(items, e.items[:len(e.items)-drop]...)

	next := Range{Start: adj.Cursor, End: trail.Cursor}
	if err := e.warm(ctx, next.Start.Page); err != nil {
		return SlideResult{}, err
	}

	e.commit(next, items)
	e.atStart = adj.Exhausted() || next.Start.atOrigin()
	if drop > 0 {
		e.atEnd = false
	}

	return SlideResult{
		Overflow: adj.Exhausted(),
		Boundary: adj.Boundary,
		Revealed: revealed,
		Dropped:  drop,
	}, nil
}

// dropCount is how many trailing items leave the window when revealed items
// join it. A short window absorbs revealed items before anything is dropped.
func (e *Engine[T]) dropCount(revealed int) int {
	return max(0, len(e.items)+revealed-e.size)
}

// warm fetches the page the leading cursor now points at so the source's
// cache holds it for the next slide.
func (e *Engine[T]) warm(ctx context.Context, number int) error {
	_, err := e.pages.fetch(ctx, number)
	return err
}

// sliceWithin returns a copy of items[from:to] with both bounds clamped to
// the slice.
func sliceWithin[T any](items []T, from, to int) []T {
	from = min(max(from, 0), len(items))
	to = min(max(to, from), len(items))
	return slices.Clone(items[from:to])
}
