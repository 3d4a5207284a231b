package tuitest

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestStripANSI(t *testing.T) {
	in := "\x1b[1mbold\x1b[0m   \nplain\n\n"
	assert.Equal(t, "bold\nplain", StripANSI(in))
}

func TestKeyPress(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.Msg
		want string
	}{
		{"rune", KeyPress('d'), "d"},
		{"space", KeyPress(' '), " "},
		{"down", KeyDown(), "down"},
		{"up", KeyUp(), "up"},
		{"enter", KeyEnter(), "enter"},
		{"esc", KeyEsc(), "esc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := tt.msg.(tea.KeyMsg)
			assert.True(t, ok)
			assert.Equal(t, tt.want, key.String())
		})
	}
}

func TestKeys(t *testing.T) {
	msgs := Keys("down space dy esc")

	got := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		got = append(got, msg.(tea.KeyMsg).String())
	}
	assert.Equal(t, []string{"down", " ", "d", "y", "esc"}, got)
	assert.Empty(t, Keys("  "))
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Lines("\x1b[31ma\x1b[0m  \nb\n"))
}
