// Package tuitest provides testing utilities for TUI components.
package tuitest

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes ANSI escape codes and trailing whitespace so rendered
// views can be compared as plain text.
func StripANSI(s string) string {
	s = ansi.Strip(s)
	lines := strings.Split(s, "\n")
	var result []string
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " ")
		result = append(result, trimmed)
	}
	return strings.TrimRight(strings.Join(result, "\n"), "\n")
}

// KeyPress creates a key press message for a single rune.
func KeyPress(key rune) tea.Msg {
	if key == ' ' {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{key}}
}

// KeyDown creates a down arrow key press message.
func KeyDown() tea.Msg {
	return tea.KeyMsg{Type: tea.KeyDown}
}

// KeyUp creates an up arrow key press message.
func KeyUp() tea.Msg {
	return tea.KeyMsg{Type: tea.KeyUp}
}

// KeyEnter creates an enter key press message.
func KeyEnter() tea.Msg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

// KeyEsc creates an escape key press message.
func KeyEsc() tea.Msg {
	return tea.KeyMsg{Type: tea.KeyEsc}
}

// WindowSize creates a window size message.
func WindowSize(w, h int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: w, Height: h}
}

// Keys turns a space separated key script such as "j j space d y" into key
// messages. The names up, down, enter, esc and space map to their keys;
// anything else is typed rune by rune.
func Keys(script string) []tea.Msg {
	var msgs []tea.Msg
	for _, word := range strings.Fields(script) {
		switch word {
		case "up":
			msgs = append(msgs, KeyUp())
		case "down":
			msgs = append(msgs, KeyDown())
		case "enter":
			msgs = append(msgs, KeyEnter())
		case "esc":
			msgs = append(msgs, KeyEsc())
		case "space":
			msgs = append(msgs, KeyPress(' '))
		default:
			for _, r := range word {
				msgs = append(msgs, KeyPress(r))
			}
		}
	}
	return msgs
}

// Lines returns the plain text lines of a rendered view.
func Lines(view string) []string {
	return strings.Split(StripANSI(view), "\n")
}
