package window

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// DefaultParts is the number of equal steps a window is split into. A slide
// moves the window by one step.
const DefaultParts = 3

// Options configures an Engine.
type Options struct {
	// StartPage is the page the first window is taken from. Defaults to 1.
	StartPage int
	// Parts is the number of steps per window. Defaults to DefaultParts.
	Parts int
	// Removed seeds the removal filter, e.g. with identifiers persisted by a
	// previous run.
	Removed []ID
	// Logger receives debug traces of every operation. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.StartPage < 1 {
		o.StartPage = 1
	}
	if o.Parts == 0 {
		o.Parts = DefaultParts
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}

// NormalizeSize rounds size down to a multiple of parts and returns the
// adjusted size together with the slide step.
func NormalizeSize(size, parts int) (adjusted, step int, err error) {
	if parts < 2 {
		return 0, 0, fmt.Errorf("%w: parts must be at least 2, got %d", ErrInvalidWindowSize, parts)
	}
	if size < parts {
		return 0, 0, fmt.Errorf("%w: size %d cannot be split into %d steps", ErrInvalidWindowSize, size, parts)
	}
	step = size / parts
	return step * parts, step, nil
}

// Engine owns a render window, the range locating it and the removal filter.
//
// Engine does no locking of its own. Callers must not run Establish, Slide or
// Remove concurrently; read accessors may only race with nothing.
type Engine[T Item] struct {
	opts   Options
	log    zerolog.Logger
	filter *RemovalFilter
	pages  *pager[T]

	size int
	step int

	rng   *Range
	items []T
	last  *T

	atStart bool
	atEnd   bool
}

// New creates an engine reading from src.
func New[T Item](src PageSource[T], opts Options) *Engine[T] {
	opts = opts.withDefaults()
	filter := newRemovalFilter(opts.Removed...)
	log := opts.Logger.With().Str("cmp", "window").Logger()

	return &Engine[T]{
		opts:   opts,
		log:    log,
		filter: filter,
		pages:  &pager[T]{src: src, filter: filter, log: log},
	}
}

// ExcludeWhere hides items matching fn as if they had been removed, without
// adding them to the removal filter. Call it before Establish; pages already
// materialized are not revisited.
func (e *Engine[T]) ExcludeWhere(fn func(T) bool) {
	e.pages.skip = fn
}

// Establish materializes the first window of the given size from the start
// page, pulling in following pages when size exceeds one page.
//
// Once a range exists Establish does nothing: a window is never
// re-established. When the start page does not exist the engine stays
// unestablished and the next Slide tries again.
func (e *Engine[T]) Establish(ctx context.Context, size int) error {
	if e.rng != nil {
		e.log.Debug().Stringer("range", e.rng).Msg("window already established")
		return nil
	}

	w, step, err := NormalizeSize(size, e.opts.Parts)
	if err != nil {
		return err
	}
	if w != size {
		e.log.Warn().Int("requested", size).Int("size", w).Int("parts", e.opts.Parts).
			Msg("window size must split into equal steps, adjusted")
	}
	e.size, e.step = w, step

	if err := ctx.Err(); err != nil {
		return err
	}

	first, err := e.pages.fetch(ctx, e.opts.StartPage)
	if err != nil {
		return err
	}
	if !first.found() {
		e.log.Info().Int("page", e.opts.StartPage).Stringer("boundary", first.boundary).
			Msg("start page unavailable, window left empty")
		return nil
	}

	n := len(first.items)
	rng := Range{
		Start: Cursor{Page: first.number, Index: 0, MaxIndex: n},
		End:   Cursor{Page: first.number, Index: w, MaxIndex: n},
	}
	items := slices.Clone(first.items[:min(w, n)])

	adj, err := e.pages.adjust(ctx, rng.End)
	if err != nil {
		return err
	}
	rng.End = adj.Cursor
	items = append(items, adj.Passed...)

	e.commit(rng, items)
	e.atStart = rng.Start.atOrigin()
	e.atEnd = adj.Exhausted()

	e.log.Debug().Stringer("range", rng).Int("items", len(items)).Msg("window established")
	return nil
}

// Window returns a copy of the current window in global order.
func (e *Engine[T]) Window() []T {
	return slices.Clone(e.items)
}

// Range returns the current range and whether one has been established.
func (e *Engine[T]) Range() (Range, bool) {
	if e.rng == nil {
		return Range{}, false
	}
	return *e.rng, true
}

// Size returns the target window size, or 0 before Establish.
func (e *Engine[T]) Size() int { return e.size }

// Step returns how far a single slide moves the window.
func (e *Engine[T]) Step() int { return e.step }

// AtStart reports whether the window begins at the first item of page 1 or
// the last backward slide hit the start of the data.
func (e *Engine[T]) AtStart() bool { return e.atStart }

// AtEnd reports whether the window reached the end of the data.
func (e *Engine[T]) AtEnd() bool { return e.atEnd }

// Filter exposes the removal filter for reading.
func (e *Engine[T]) Filter() *RemovalFilter { return e.filter }

func (e *Engine[T]) commit(rng Range, items []T) {
	e.rng = &rng
	e.items = items
	if len(items) > 0 {
		last := items[len(items)-1]
		e.last = &last
	}
}
