package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taproom/internal/browse"
	"github.com/colonyops/taproom/internal/core/recipe"
	"github.com/colonyops/taproom/internal/core/window"
	"github.com/colonyops/taproom/internal/source/fixture"
	"github.com/colonyops/taproom/pkg/tuitest"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	svc, err := browse.New(context.Background(), fixture.New(30, 10), nil, browse.Options{
		Size:   9,
		Parts:  3,
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	m := New(context.Background(), svc, Options{Title: "fixture"})
	return settle(t, m, m.establishCmd())
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	require.True(t, ok)
	return mm, cmd
}

// settle runs a window command and feeds its result back into the model.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	return m
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		var cmd tea.Cmd
		m, cmd = update(t, m, msg)
		require.Nil(t, cmd, "unexpected command")
	}
	return m
}

func itemIDs(items []recipe.Recipe) []window.ID {
	out := make([]window.ID, len(items))
	for i, r := range items {
		out[i] = r.ID
	}
	return out
}

func currentID(t *testing.T, m Model) window.ID {
	t.Helper()
	item, ok := m.current()
	require.True(t, ok)
	return item.ID
}

func TestModel_Establish(t *testing.T) {
	m := newTestModel(t)

	assert.False(t, m.busy)
	assert.True(t, m.atStart)
	assert.Equal(t, []window.ID{1, 2, 3, 4, 5, 6, 7, 8, 9}, itemIDs(m.items))
	assert.Equal(t, window.ID(1), currentID(t, m))

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "taproom · fixture")
	assert.Contains(t, view, "start of catalogue")
	assert.Contains(t, view, "9 shown · 0 removed")
	assert.Contains(t, view, fixture.Recipe(1).Name)
}

func TestModel_DownPastLastRowSlidesForward(t *testing.T) {
	m := newTestModel(t)

	for range 8 {
		m = press(t, m, tuitest.KeyDown())
	}
	assert.Equal(t, window.ID(9), currentID(t, m))

	m, cmd := update(t, m, tuitest.KeyDown())
	assert.True(t, m.busy)

	// Input is ignored while the slide is in flight.
	m = press(t, m, tuitest.KeyDown(), tuitest.KeyPress(' '))
	assert.Equal(t, 0, m.selected.Cardinality())

	m = settle(t, m, cmd)
	assert.False(t, m.busy)
	assert.Equal(t, []window.ID{4, 5, 6, 7, 8, 9, 10, 11, 12}, itemIDs(m.items))
	assert.Equal(t, window.ID(10), currentID(t, m))
	assert.False(t, m.atStart)
}

func TestModel_UpOnFirstRowSlidesBack(t *testing.T) {
	m := newTestModel(t)

	// No slide at the start of the data.
	m = press(t, m, tuitest.KeyUp())
	assert.Equal(t, window.ID(1), currentID(t, m))

	for range 8 {
		m = press(t, m, tuitest.KeyDown())
	}
	m, cmd := update(t, m, tuitest.KeyDown())
	m = settle(t, m, cmd)

	for range 6 {
		m = press(t, m, tuitest.KeyUp())
	}
	assert.Equal(t, window.ID(4), currentID(t, m))

	m, cmd = update(t, m, tuitest.KeyUp())
	m = settle(t, m, cmd)
	assert.Equal(t, []window.ID{1, 2, 3, 4, 5, 6, 7, 8, 9}, itemIDs(m.items))
	assert.Equal(t, window.ID(3), currentID(t, m))
	assert.True(t, m.atStart)
}

func TestModel_SelectAndRemove(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, tuitest.Keys("space down space")...)
	assert.Equal(t, []window.ID{1, 2}, m.selectedIDs())

	m = press(t, m, tuitest.KeyPress('d'))
	assert.Equal(t, stateConfirming, m.state)
	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "Remove 2 recipes?")
	assert.Contains(t, view, fixture.Recipe(1).Name)
	assert.Contains(t, view, fixture.Recipe(2).Name)

	m, cmd := update(t, m, tuitest.KeyPress('y'))
	assert.Equal(t, stateBrowsing, m.state)
	assert.True(t, m.busy)

	m = settle(t, m, cmd)
	assert.Equal(t, []window.ID{3, 4, 5, 6, 7, 8, 9, 10, 11}, itemIDs(m.items))
	assert.Equal(t, 0, m.selected.Cardinality())
	assert.Equal(t, 2, m.removed)
	assert.Equal(t, window.ID(4), currentID(t, m))
	assert.Contains(t, tuitest.StripANSI(m.View()), "removed 2")
}

func TestModel_RemoveCurrentWithoutSelection(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, tuitest.KeyDown(), tuitest.KeyPress('d'))
	assert.Equal(t, []window.ID{2}, m.pending)
	assert.Equal(t, "Remove 1 recipe?", m.confirm.Title())

	m, cmd := update(t, m, tuitest.KeyEnter())
	m = settle(t, m, cmd)
	assert.NotContains(t, itemIDs(m.items), window.ID(2))
}

func TestModel_RemoveCancelled(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, tuitest.Keys("d n")...)
	assert.Equal(t, stateBrowsing, m.state)
	assert.Nil(t, m.pending)
	assert.Len(t, m.items, 9)
	assert.Equal(t, 0, m.removed)
}

func TestModel_Detail(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, tuitest.KeyDown(), tuitest.KeyEnter())
	require.Equal(t, stateDetail, m.state)
	assert.Contains(t, tuitest.StripANSI(m.View()), fixture.Recipe(2).Name)

	m = press(t, m, tuitest.KeyEsc())
	assert.Equal(t, stateBrowsing, m.state)
}

func TestModel_HelpToggle(t *testing.T) {
	m := newTestModel(t)
	assert.False(t, m.help.ShowAll)

	m = press(t, m, tuitest.KeyPress('?'))
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, tuitest.StripANSI(m.View()), "retry edges")
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)

	m, cmd := update(t, m, tuitest.KeyPress('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

// failingBrowser fails every slide with a fetch error at the edge.
type failingBrowser struct {
	snap browse.Snapshot
}

func (f *failingBrowser) Establish(context.Context) (browse.Snapshot, error) {
	return f.snap, nil
}

func (f *failingBrowser) Forward(context.Context) (browse.Snapshot, window.SlideResult, error) {
	snap := f.snap
	snap.AtEnd = true
	return snap, window.SlideResult{Overflow: true, Boundary: window.BoundaryFetchFailed}, nil
}

func (f *failingBrowser) Back(context.Context) (browse.Snapshot, window.SlideResult, error) {
	return f.snap, window.SlideResult{}, errors.New("relocate failed")
}

func (f *failingBrowser) Remove(context.Context, ...window.ID) (browse.Snapshot, window.RemoveResult, error) {
	return f.snap, window.RemoveResult{}, nil
}

func TestModel_FetchFailureAndRetry(t *testing.T) {
	b := &failingBrowser{snap: browse.Snapshot{
		Items:       []recipe.Recipe{fixture.Recipe(5), fixture.Recipe(6)},
		Established: true,
	}}
	m := New(context.Background(), b, Options{})
	m = settle(t, m, m.establishCmd())

	m = press(t, m, tuitest.KeyDown())
	m, cmd := update(t, m, tuitest.KeyDown())
	m = settle(t, m, cmd)

	assert.True(t, m.atEnd)
	assert.Contains(t, tuitest.StripANSI(m.View()), "press r to retry")

	// At the end, further down presses do nothing until the edges are cleared.
	m = press(t, m, tuitest.KeyDown())
	m = press(t, m, tuitest.KeyPress('r'))
	assert.False(t, m.atEnd)

	m, cmd = update(t, m, tuitest.KeyDown())
	m = settle(t, m, cmd)
	assert.True(t, m.atEnd)

	// An operation error is shown and the window is kept.
	m = press(t, m, tuitest.KeyUp())
	assert.Equal(t, 0, m.cursor)
	m, cmd = update(t, m, tuitest.KeyUp())
	m = settle(t, m, cmd)
	require.Error(t, m.err)
	assert.Contains(t, tuitest.StripANSI(m.View()), "error: relocate failed")
	assert.Len(t, m.items, 2)
}
