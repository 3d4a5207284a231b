// Package window maintains a virtualized render window over a paginated item
// source. The window is a contiguous run of items that can slide forward and
// back across page boundaries and be refilled after items are removed, while
// fetching only the pages an operation needs.
package window

import (
	"context"
	"errors"
)

// ID identifies an item. Identifiers are unique and stable across fetches.
type ID = int64

// Item is anything the window can hold.
type Item interface {
	ItemID() ID
}

var (
	// ErrNoPage is returned by a PageSource when the requested page does not exist.
	ErrNoPage = errors.New("no such page")

	// ErrNotEstablished is returned when an operation requires a window that
	// was never established.
	ErrNotEstablished = errors.New("window not established")

	// ErrInvalidWindowSize is returned when a window size cannot be split into
	// the configured number of steps.
	ErrInvalidWindowSize = errors.New("invalid window size")

	// ErrRelocate is returned by Remove when the page holding a known window
	// item cannot be fetched again. The window is left untouched.
	ErrRelocate = errors.New("cannot relocate window item")
)

// PageSource returns the ordered items of a 1-based page. Pages are immutable
// once numbered: repeated calls for the same page return the same items in
// the same order. A missing page is reported with ErrNoPage; an empty page is
// treated the same way. Implementations must be safe for concurrent use.
type PageSource[T Item] interface {
	FetchPage(ctx context.Context, page int) ([]T, error)
}

// PageSourceFunc adapts a function to a PageSource.
type PageSourceFunc[T Item] func(ctx context.Context, page int) ([]T, error)

// FetchPage implements PageSource.
func (f PageSourceFunc[T]) FetchPage(ctx context.Context, page int) ([]T, error) {
	return f(ctx, page)
}

// Boundary describes why a cursor walk stopped before reaching its target.
type Boundary int

const (
	// BoundaryNone means the cursor landed inside available data.
	BoundaryNone Boundary = iota
	// BoundaryNoPage means the source reported that the next page does not exist.
	BoundaryNoPage
	// BoundaryFetchFailed means the fetch failed for another reason. It is
	// handled exactly like BoundaryNoPage; hosts that care can retry.
	BoundaryFetchFailed
)

func (b Boundary) String() string {
	switch b {
	case BoundaryNone:
		return "none"
	case BoundaryNoPage:
		return "no-page"
	case BoundaryFetchFailed:
		return "fetch-failed"
	default:
		return "unknown"
	}
}
