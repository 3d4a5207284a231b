package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/taproom/internal/core/recipe"
	"github.com/colonyops/taproom/internal/core/styles"
)

const nameWidth = 34

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case stateDetail:
		return m.detail.View() + "\n" + m.help.ShortHelpView([]key.Binding{m.keys.Close, m.keys.Up, m.keys.Down})
	case stateConfirming:
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.confirm.View())
		}
		return m.confirm.View()
	}

	var b strings.Builder

	title := "taproom"
	if m.title != "" {
		title += " · " + m.title
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")

	if m.atStart {
		b.WriteString(styles.EdgeMarkerStyle.Render("  ── start of catalogue ──"))
	} else {
		b.WriteString(styles.MutedStyle.Render("  ↑ earlier recipes"))
	}
	b.WriteString("\n")

	if len(m.items) == 0 && !m.busy {
		b.WriteString(styles.MutedStyle.Render("  no recipes"))
		b.WriteString("\n")
	}
	for i, r := range m.items {
		b.WriteString(m.renderRow(i, r))
		b.WriteString("\n")
	}

	if m.atEnd {
		b.WriteString(styles.EdgeMarkerStyle.Render("  ── end of catalogue ──"))
	} else {
		b.WriteString(styles.MutedStyle.Render("  ↓ more recipes"))
	}
	b.WriteString("\n")

	b.WriteString(styles.StatusBarStyle.Render(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) renderRow(i int, r recipe.Recipe) string {
	mark := "○"
	if m.selected.Contains(r.ID) {
		mark = styles.SelectedStyle.Render("●")
	}

	name := r.Name
	if lipgloss.Width(name) > nameWidth {
		name = string([]rune(name)[:nameWidth-1]) + "…"
	}

	line := fmt.Sprintf("%4d  %-*s  %6s  %s", r.ID, nameWidth, name, formatABV(r.ABV), r.Tagline)

	if i == m.cursor {
		return "› " + mark + " " + styles.CursorRowStyle.Render(line)
	}
	return "  " + mark + " " + styles.RowStyle.Render(line)
}

func (m Model) statusLine() string {
	var parts []string

	switch {
	case m.busy:
		parts = append(parts, m.spinner.View()+" "+m.status)
	case m.err != nil:
		parts = append(parts, styles.ErrorStyle.Render("error: "+m.err.Error()))
	case m.status != "":
		parts = append(parts, m.status)
	}

	counts := fmt.Sprintf("%d shown · %d removed", len(m.items), m.removed)
	if n := m.selected.Cardinality(); n > 0 {
		counts += fmt.Sprintf(" · %d selected", n)
	}
	parts = append(parts, counts)

	return strings.Join(parts, "  ")
}

func formatABV(abv *float64) string {
	if abv == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *abv)
}
