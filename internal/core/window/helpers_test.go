package window

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type testItem struct {
	id ID
}

func (i testItem) ItemID() ID { return i.id }

// fakeSource serves total items with ids 0..total-1 in pages of pageSize.
type fakeSource struct {
	pageSize int
	total    int

	mu    sync.Mutex
	fail  map[int]error
	calls []int
}

func newFakeSource(pageSize, total int) *fakeSource {
	return &fakeSource{pageSize: pageSize, total: total, fail: map[int]error{}}
}

func (s *fakeSource) FetchPage(_ context.Context, page int) ([]testItem, error) {
	s.mu.Lock()
	s.calls = append(s.calls, page)
	err := s.fail[page]
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	start := (page - 1) * s.pageSize
	if page < 1 || start >= s.total {
		return nil, ErrNoPage
	}

	end := min(start+s.pageSize, s.total)
	items := make([]testItem, 0, end-start)
	for id := start; id < end; id++ {
		items = append(items, testItem{id: ID(id)})
	}
	return items, nil
}

func (s *fakeSource) failPage(page int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[page] = err
}

func (s *fakeSource) resetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *fakeSource) fetched() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

func ids(items []testItem) []ID {
	out := make([]ID, len(items))
	for i, item := range items {
		out[i] = item.id
	}
	return out
}

func span(from, to ID) []ID {
	out := make([]ID, 0, to-from+1)
	for id := from; id <= to; id++ {
		out = append(out, id)
	}
	return out
}

func newEstablished(t *testing.T, src *fakeSource, size int, opts Options) *Engine[testItem] {
	t.Helper()
	e := New[testItem](src, opts)
	require.NoError(t, e.Establish(context.Background(), size))
	return e
}
