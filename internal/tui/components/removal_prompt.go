// Package components holds TUI widgets shared by the browser views.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/taproom/internal/core/styles"
)

// maxListed caps how many names the prompt lists before summarizing.
const maxListed = 5

// Answer is the user's response to a prompt.
type Answer int

const (
	Pending Answer = iota
	Yes
	No
)

var (
	yesKeys = key.NewBinding(key.WithKeys("y", "Y", "enter"))
	noKeys  = key.NewBinding(key.WithKeys("n", "N", "esc", "q"))
)

// RemovalPrompt asks whether the named recipes should be removed.
type RemovalPrompt struct {
	names  []string
	answer Answer
}

// NewRemovalPrompt returns a prompt for removing the recipes with the given
// names.
func NewRemovalPrompt(names []string) RemovalPrompt {
	return RemovalPrompt{names: names}
}

// Update records a yes or no key press. Other messages are ignored.
func (p RemovalPrompt) Update(msg tea.Msg) RemovalPrompt {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || p.answer != Pending {
		return p
	}

	switch {
	case key.Matches(keyMsg, yesKeys):
		p.answer = Yes
	case key.Matches(keyMsg, noKeys):
		p.answer = No
	}
	return p
}

// Answer returns the recorded answer.
func (p RemovalPrompt) Answer() Answer {
	return p.answer
}

// Title is the question, e.g. "Remove 2 recipes?".
func (p RemovalPrompt) Title() string {
	if len(p.names) == 1 {
		return "Remove 1 recipe?"
	}
	return fmt.Sprintf("Remove %d recipes?", len(p.names))
}

func (p RemovalPrompt) View() string {
	var b strings.Builder
	b.WriteString(styles.ConfirmMessageStyle.Render(p.Title()))
	b.WriteString("\n")

	for i, name := range p.names {
		if i == maxListed {
			fmt.Fprintf(&b, "\n%s", styles.MutedStyle.Render(fmt.Sprintf("  and %d more", len(p.names)-maxListed)))
			break
		}
		fmt.Fprintf(&b, "\n  • %s", name)
	}

	b.WriteString("\n\n")
	b.WriteString(styles.TextPrimaryBoldStyle.Render("Removed recipes stay hidden. Continue? (y/n)"))
	return styles.ModalStyle.Render(b.String())
}
