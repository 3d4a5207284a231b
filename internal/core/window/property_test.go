package window

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRandomOperations drives engines over random catalogues with random
// operation sequences and checks the window invariants after every step.
func TestRandomOperations(t *testing.T) {
	for seed := range uint64(40) {
		rng := rand.New(rand.NewPCG(seed, 0x7a9))

		pageSize := 1 + rng.IntN(12)
		total := rng.IntN(90)
		size := []int{3, 6, 9, 12, 15}[rng.IntN(5)]

		src := newFakeSource(pageSize, total)
		e := New[testItem](src, Options{})
		ctx := context.Background()
		require.NoError(t, e.Establish(ctx, size))

		removed := map[ID]bool{}
		checkInvariants(t, seed, "establish", e, total, removed)

		for step := range 150 {
			switch op := rng.IntN(10); {
			case op < 4:
				_, err := e.SlideForward(ctx)
				require.NoError(t, err)
				checkInvariants(t, seed, "forward", e, total, removed)

			case op < 8:
				_, err := e.SlideBack(ctx)
				require.NoError(t, err)
				checkInvariants(t, seed, "back", e, total, removed)

			case op < 9:
				checkRoundTrip(t, seed, e)
				checkInvariants(t, seed, "round trip", e, total, removed)

			default:
				victims := pickVictims(rng, e, total)
				for _, id := range victims {
					removed[id] = true
				}
				_, err := e.Remove(ctx, victims...)
				require.NoError(t, err, "seed %d step %d", seed, step)
				checkInvariants(t, seed, "remove", e, total, removed)
			}
		}
	}
}

func pickVictims(rng *rand.Rand, e *Engine[testItem], total int) []ID {
	if total == 0 {
		return []ID{0}
	}

	window := e.Window()
	n := 1 + rng.IntN(3)
	victims := make([]ID, 0, n)
	for range n {
		if len(window) > 0 && rng.IntN(2) == 0 {
			victims = append(victims, window[rng.IntN(len(window))].id)
			continue
		}
		victims = append(victims, ID(rng.IntN(total)))
	}
	return victims
}

func checkRoundTrip(t *testing.T, seed uint64, e *Engine[testItem]) {
	t.Helper()
	ctx := context.Background()

	before := ids(e.Window())
	full := len(before) == e.Size()

	fwd, err := e.SlideForward(ctx)
	require.NoError(t, err)
	back, err := e.SlideBack(ctx)
	require.NoError(t, err)

	if full && !fwd.Overflow && !back.Overflow {
		require.Equal(t, before, ids(e.Window()), "seed %d: forward then back changed the window", seed)
	}
}

func checkInvariants(t *testing.T, seed uint64, op string, e *Engine[testItem], total int, removed map[ID]bool) {
	t.Helper()

	var valid []ID
	for id := range ID(total) {
		if !removed[id] {
			valid = append(valid, id)
		}
	}

	window := ids(e.Window())
	require.LessOrEqual(t, len(window), e.Size(), "seed %d after %s: window too large", seed, op)

	seen := map[ID]bool{}
	for _, id := range window {
		require.False(t, seen[id], "seed %d after %s: duplicate id %d in %v", seed, op, id, window)
		require.False(t, removed[id], "seed %d after %s: removed id %d in %v", seed, op, id, window)
		seen[id] = true
	}

	if rng, ok := e.Range(); ok {
		require.True(t, rng.Start.Normalized(), "seed %d after %s: start %s", seed, op, rng.Start)
		require.True(t, rng.End.Normalized(), "seed %d after %s: end %s", seed, op, rng.End)
	}

	for id := range removed {
		require.True(t, e.Filter().Contains(id), "seed %d after %s: filter lost %d", seed, op, id)
	}

	if len(window) == 0 {
		return
	}

	first := slices.Index(valid, window[0])
	require.GreaterOrEqual(t, first, 0, "seed %d after %s: unknown id %d", seed, op, window[0])
	require.LessOrEqual(t, first+len(window), len(valid), "seed %d after %s: window runs past data", seed, op)
	require.Equal(t, valid[first:first+len(window)], window, "seed %d after %s: window is not contiguous", seed, op)

	if len(window) < e.Size() {
		require.Equal(t, valid[len(valid)-1], window[len(window)-1],
			"seed %d after %s: short window %v does not reach the end of the data", seed, op, window)
	}
}
