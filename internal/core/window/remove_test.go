package window

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slideToEnd slides forward until the engine reports overflow.
func slideToEnd(t *testing.T, e *Engine[testItem]) {
	t.Helper()
	for range 50 {
		res, err := e.SlideForward(context.Background())
		require.NoError(t, err)
		if res.Overflow {
			return
		}
	}
	t.Fatal("never reached the end of the data")
}

func TestRemove_EmptyIsNoop(t *testing.T) {
	src := newFakeSource(10, 100)
	e := newEstablished(t, src, 9, Options{})
	src.resetCalls()

	res, err := e.Remove(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RemoveResult{}, res)
	assert.Empty(t, src.fetched())
	assert.Equal(t, span(0, 8), ids(e.Window()))
}

func TestRemove_ItemJustPastWindow(t *testing.T) {
	ctx := context.Background()
	e := newEstablished(t, newFakeSource(10, 100), 9, Options{})

	res, err := e.Remove(ctx, 9)
	require.NoError(t, err)

	assert.Equal(t, span(0, 8), ids(e.Window()))
	assert.Equal(t, 1, res.Added)
	assert.Zero(t, res.Dropped)
	assert.Zero(t, res.Refilled)
	assert.True(t, e.Filter().Contains(9))

	_, err = e.SlideForward(ctx)
	require.NoError(t, err)

	assert.Equal(t, []ID{3, 4, 5, 6, 7, 8, 10, 11, 12}, ids(e.Window()))
}

func TestRemove_InsideWindowRefills(t *testing.T) {
	ctx := context.Background()
	e := newEstablished(t, newFakeSource(10, 100), 9, Options{})

	res, err := e.Remove(ctx, 2, 5)
	require.NoError(t, err)

	assert.Equal(t, []ID{0, 1, 3, 4, 6, 7, 8, 9, 10}, ids(e.Window()))
	assert.Equal(t, 2, res.Dropped)
	assert.Equal(t, 2, res.Refilled)
	assert.False(t, res.Overflow)

	rng, _ := e.Range()
	assert.Equal(t, Cursor{Page: 1, Index: 0, MaxIndex: 8}, rng.Start)
	assert.Equal(t, Cursor{Page: 2, Index: 1, MaxIndex: 10}, rng.End)

	_, err = e.SlideForward(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ID{4, 6, 7, 8, 9, 10, 11, 12, 13}, ids(e.Window()))

	_, err = e.SlideBack(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ID{0, 1, 3, 4, 6, 7, 8, 9, 10}, ids(e.Window()))
}

func TestRemove_WholeWindow(t *testing.T) {
	ctx := context.Background()
	e := newEstablished(t, newFakeSource(10, 100), 9, Options{})

	res, err := e.Remove(ctx, span(0, 8)...)
	require.NoError(t, err)

	assert.Equal(t, span(9, 17), ids(e.Window()))
	assert.Equal(t, 9, res.Dropped)
	assert.Equal(t, 9, res.Refilled)
}

func TestRemove_WholeWindowAndFollowingItems(t *testing.T) {
	ctx := context.Background()
	e := newEstablished(t, newFakeSource(10, 100), 9, Options{})

	_, err := e.Remove(ctx, span(0, 12)...)
	require.NoError(t, err)

	assert.Equal(t, span(13, 21), ids(e.Window()))
}

func TestRemove_ItemsBeforeWindow(t *testing.T) {
	ctx := context.Background()
	e := newEstablished(t, newFakeSource(10, 100), 9, Options{})

	_, err := e.SlideForward(ctx)
	require.NoError(t, err)
	require.Equal(t, span(3, 11), ids(e.Window()))

	_, err = e.Remove(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, span(3, 11), ids(e.Window()))

	res, err := e.SlideBack(ctx)
	require.NoError(t, err)
	assert.True(t, res.Overflow)
	assert.Equal(t, []ID{0, 2, 3, 4, 5, 6, 7, 8, 9}, ids(e.Window()))
}

func TestRemove_NearEndLeavesShortWindow(t *testing.T) {
	ctx := context.Background()
	e := newEstablished(t, newFakeSource(10, 20), 9, Options{})
	slideToEnd(t, e)
	require.Equal(t, span(11, 19), ids(e.Window()))

	res, err := e.Remove(ctx, 15)
	require.NoError(t, err)

	assert.Equal(t, []ID{11, 12, 13, 14, 16, 17, 18, 19}, ids(e.Window()))
	assert.True(t, res.Overflow)
	assert.True(t, e.AtEnd())

	slide, err := e.SlideForward(ctx)
	require.NoError(t, err)
	assert.True(t, slide.Overflow)
	assert.Len(t, e.Window(), 8)
}

func TestRemove_ShortWindowRegrowsOnSlideBack(t *testing.T) {
	ctx := context.Background()
	e := newEstablished(t, newFakeSource(10, 20), 9, Options{})
	slideToEnd(t, e)

	_, err := e.Remove(ctx, 15)
	require.NoError(t, err)

	_, err = e.SlideBack(ctx)
	require.NoError(t, err)

	assert.Equal(t, []ID{8, 9, 10, 11, 12, 13, 14, 16, 17}, ids(e.Window()))
}

func TestRemove_EverythingForwardEmptiesWindow(t *testing.T) {
	ctx := context.Background()
	e := newEstablished(t, newFakeSource(10, 20), 9, Options{})
	slideToEnd(t, e)

	res, err := e.Remove(ctx, span(11, 19)...)
	require.NoError(t, err)

	assert.Empty(t, e.Window())
	assert.True(t, res.Overflow)
	assert.Equal(t, BoundaryNoPage, res.Boundary)

	slide, err := e.SlideForward(ctx)
	require.NoError(t, err)
	assert.True(t, slide.Overflow)
	assert.Empty(t, e.Window())

	_, err = e.SlideBack(ctx)
	require.NoError(t, err)
	assert.Equal(t, span(8, 10), ids(e.Window()))

	for range 5 {
		_, err = e.SlideBack(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, span(0, 8), ids(e.Window()))
}

func TestRemove_RemovedItemsNeverReturn(t *testing.T) {
	ctx := context.Background()
	e := newEstablished(t, newFakeSource(7, 60), 9, Options{})

	_, err := e.Remove(ctx, 4, 12, 30, 31)
	require.NoError(t, err)

	seen := map[ID]bool{}
	for range 10 {
		_, err = e.SlideForward(ctx)
		require.NoError(t, err)
		for _, id := range ids(e.Window()) {
			seen[id] = true
		}
	}
	for range 10 {
		_, err = e.SlideBack(ctx)
		require.NoError(t, err)
		for _, id := range ids(e.Window()) {
			seen[id] = true
		}
	}

	for _, id := range []ID{4, 12, 30, 31} {
		assert.False(t, seen[id], "removed id %d reappeared", id)
	}
}

func TestRemove_RelocateFailureLeavesStateUnchanged(t *testing.T) {
	src := newFakeSource(10, 100)
	e := newEstablished(t, src, 9, Options{})
	src.failPage(1, errors.New("timeout"))

	_, err := e.Remove(context.Background(), 3)
	require.ErrorIs(t, err, ErrRelocate)

	assert.False(t, e.Filter().Contains(3))
	assert.Equal(t, span(0, 8), ids(e.Window()))
}

func TestRemove_BeforeAnyData(t *testing.T) {
	src := newFakeSource(10, 0)
	e := newEstablished(t, src, 9, Options{})

	res, err := e.Remove(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)

	src.total = 20
	_, err = e.SlideForward(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []ID{0, 3, 4, 5, 6, 7, 8, 9, 10}, ids(e.Window()))
}

func TestRemove_CancelledContextLeavesStateUnchanged(t *testing.T) {
	src := newFakeSource(10, 100)
	e := newEstablished(t, src, 9, Options{})
	before, _ := e.Range()

	ctx, cancel := context.WithCancel(context.Background())
	e.pages.src = PageSourceFunc[testItem](func(ctx context.Context, page int) ([]testItem, error) {
		if page == 2 {
			cancel()
			return nil, ctx.Err()
		}
		return src.FetchPage(ctx, page)
	})

	// Removing the whole first page forces a scan onto page 2.
	_, err := e.Remove(ctx, span(0, 9)...)
	require.ErrorIs(t, err, context.Canceled)

	after, _ := e.Range()
	assert.Equal(t, before, after)
	assert.Equal(t, span(0, 8), ids(e.Window()))
	assert.Zero(t, e.Filter().Len())
}
