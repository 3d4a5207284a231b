// Package tui implements the Bubble Tea recipe browser.
package tui

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/taproom/internal/browse"
	"github.com/colonyops/taproom/internal/core/recipe"
	"github.com/colonyops/taproom/internal/core/styles"
	"github.com/colonyops/taproom/internal/core/window"
	"github.com/colonyops/taproom/internal/tui/components"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateBrowsing UIState = iota
	stateConfirming
	stateDetail
)

// Browser is the window the TUI drives.
type Browser interface {
	Establish(ctx context.Context) (browse.Snapshot, error)
	Forward(ctx context.Context) (browse.Snapshot, window.SlideResult, error)
	Back(ctx context.Context) (browse.Snapshot, window.SlideResult, error)
	Remove(ctx context.Context, ids ...window.ID) (browse.Snapshot, window.RemoveResult, error)
}

// Options configures the TUI.
type Options struct {
	// Title is shown in the header, usually the page source name.
	Title string
}

// windowMsg carries the outcome of a window operation.
type windowMsg struct {
	op       string
	snap     browse.Snapshot
	boundary window.Boundary
	// focus is the item the cursor should follow, moved by delta rows.
	focus    window.ID
	hasFocus bool
	delta    int
	removed  []window.ID
	err      error
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx     context.Context
	browser Browser
	title   string

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	detail  viewport.Model
	confirm components.RemovalPrompt
	state   UIState

	items    []recipe.Recipe
	cursor   int
	selected mapset.Set[window.ID]
	pending  []window.ID
	atStart  bool
	atEnd    bool
	removed  int

	busy   bool
	status string
	err    error

	width    int
	height   int
	quitting bool
}

// New creates a browser model. The window is established by Init.
func New(ctx context.Context, browser Browser, opts Options) Model {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.TextPrimaryBoldStyle),
	)

	return Model{
		ctx:      ctx,
		browser:  browser,
		title:    opts.Title,
		keys:     defaultKeys(),
		help:     help.New(),
		spinner:  sp,
		detail:   viewport.New(80, 20),
		selected: mapset.NewSet[window.ID](),
		busy:     true,
		status:   "loading recipes",
	}
}

// Run starts the TUI and blocks until it exits.
func Run(ctx context.Context, browser Browser, opts Options) error {
	p := tea.NewProgram(New(ctx, browser, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && !browse.IsCanceled(err) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.establishCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.detail.Width = msg.Width
		m.detail.Height = max(msg.Height-2, 1)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case windowMsg:
		return m.handleWindow(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case stateConfirming:
		return m.handleConfirm(msg)
	case stateDetail:
		if key.Matches(msg, m.keys.Close) {
			m.state = stateBrowsing
			return m, nil
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	// Only one window operation runs at a time.
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		return m.moveUp()
	case key.Matches(msg, m.keys.Down):
		return m.moveDown()
	case key.Matches(msg, m.keys.Select):
		if item, ok := m.current(); ok {
			if !m.selected.Add(item.ID) {
				m.selected.Remove(item.ID)
			}
		}
	case key.Matches(msg, m.keys.Remove):
		ids := m.selectedIDs()
		if len(ids) == 0 {
			item, ok := m.current()
			if !ok {
				return m, nil
			}
			ids = []window.ID{item.ID}
		}
		m.pending = ids
		m.confirm = components.NewRemovalPrompt(m.names(ids))
		m.state = stateConfirming
	case key.Matches(msg, m.keys.Open):
		if item, ok := m.current(); ok {
			m = m.openDetail(item)
		}
	case key.Matches(msg, m.keys.Retry):
		m.atStart, m.atEnd = false, false
		m.err = nil
		m.status = "edges cleared"
	}

	return m, nil
}

func (m Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirm = m.confirm.Update(msg)
	switch m.confirm.Answer() {
	case components.Yes:
		m.state = stateBrowsing
		ids := m.pending
		m.pending = nil
		return m.start("removing", m.removeCmd(ids))
	case components.No:
		m.state = stateBrowsing
		m.pending = nil
	}
	return m, nil
}

// moveUp moves the cursor, sliding the window back when the cursor is on
// the first row.
func (m Model) moveUp() (tea.Model, tea.Cmd) {
	if m.cursor > 0 {
		m.cursor--
		return m, nil
	}
	if m.atStart || len(m.items) == 0 {
		return m, nil
	}
	return m.start("loading earlier recipes", m.slideCmd(window.Back, m.items[0].ID, -1))
}

// moveDown moves the cursor, sliding the window forward when the cursor is
// on the last row.
func (m Model) moveDown() (tea.Model, tea.Cmd) {
	if m.cursor < len(m.items)-1 {
		m.cursor++
		return m, nil
	}
	if m.atEnd {
		return m, nil
	}
	if len(m.items) == 0 {
		return m.start("loading recipes", m.slideCmd(window.Forward, 0, 0))
	}
	return m.start("loading more recipes", m.slideCmd(window.Forward, m.items[m.cursor].ID, 1))
}

func (m Model) start(status string, cmd tea.Cmd) (Model, tea.Cmd) {
	m.busy = true
	m.status = status
	m.err = nil
	return m, cmd
}

func (m Model) establishCmd() tea.Cmd {
	ctx, b := m.ctx, m.browser
	return func() tea.Msg {
		snap, err := b.Establish(ctx)
		return windowMsg{op: "establish", snap: snap, err: err}
	}
}

func (m Model) slideCmd(dir window.Direction, focus window.ID, delta int) tea.Cmd {
	ctx, b := m.ctx, m.browser
	return func() tea.Msg {
		slide := b.Forward
		if dir == window.Back {
			slide = b.Back
		}
		snap, res, err := slide(ctx)
		return windowMsg{
			op:       "slide-" + dir.String(),
			snap:     snap,
			boundary: res.Boundary,
			focus:    focus,
			hasFocus: delta != 0,
			delta:    delta,
			err:      err,
		}
	}
}

func (m Model) removeCmd(ids []window.ID) tea.Cmd {
	ctx, b := m.ctx, m.browser
	return func() tea.Msg {
		snap, res, err := b.Remove(ctx, ids...)
		return windowMsg{op: "remove", snap: snap, boundary: res.Boundary, removed: ids, err: err}
	}
}

func (m Model) handleWindow(msg windowMsg) Model {
	m.busy = false
	m.status = ""

	m.items = msg.snap.Items
	m.atStart = msg.snap.AtStart
	m.atEnd = msg.snap.AtEnd
	m.removed = msg.snap.Removed

	if msg.err != nil {
		log.Error().Err(msg.err).Str("op", msg.op).Msg("window operation failed")
		m.err = msg.err
	}

	if msg.hasFocus {
		if idx := slices.IndexFunc(m.items, func(r recipe.Recipe) bool { return r.ID == msg.focus }); idx >= 0 {
			m.cursor = idx + msg.delta
		}
	}
	m.cursor = min(max(m.cursor, 0), max(len(m.items)-1, 0))

	switch {
	case msg.op == "remove" && msg.err == nil:
		for _, id := range msg.removed {
			m.selected.Remove(id)
		}
		m.status = fmt.Sprintf("removed %d", len(msg.removed))
	case msg.boundary == window.BoundaryFetchFailed:
		m.status = "could not load more recipes, press r to retry"
	}

	return m
}

func (m Model) current() (recipe.Recipe, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return recipe.Recipe{}, false
	}
	return m.items[m.cursor], true
}

// names returns the display names of ids, falling back to "#id" for
// recipes no longer in the window.
func (m Model) names(ids []window.ID) []string {
	byID := make(map[window.ID]string, len(m.items))
	for _, item := range m.items {
		byID[item.ID] = item.Name
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name, ok := byID[id]
		if !ok {
			name = fmt.Sprintf("#%d", id)
		}
		names = append(names, name)
	}
	return names
}

// selectedIDs returns the selected ids in ascending order.
func (m Model) selectedIDs() []window.ID {
	ids := m.selected.ToSlice()
	slices.Sort(ids)
	return ids
}
