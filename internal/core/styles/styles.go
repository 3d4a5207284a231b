package styles

import "github.com/charmbracelet/lipgloss"

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style
	MutedStyle         lipgloss.Style
	SuccessStyle       lipgloss.Style
	WarningStyle       lipgloss.Style
	ErrorStyle         lipgloss.Style

	// Browser styles.
	TitleStyle      lipgloss.Style
	RowStyle        lipgloss.Style
	CursorRowStyle  lipgloss.Style
	SelectedStyle   lipgloss.Style
	StatusBarStyle  lipgloss.Style
	EdgeMarkerStyle lipgloss.Style

	// Modal styles.
	ModalStyle           lipgloss.Style
	ModalTitleStyle      lipgloss.Style
	ModalHelpStyle       lipgloss.Style
	ConfirmMessageStyle  lipgloss.Style
	TextPrimaryBoldStyle lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	DividerStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	MutedStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	SuccessStyle = lipgloss.NewStyle().
		Foreground(p.Success)
	WarningStyle = lipgloss.NewStyle().
		Foreground(p.Warning)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(p.Error).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Primary).
		Bold(true).
		Padding(0, 1)
	RowStyle = lipgloss.NewStyle().
		Foreground(p.Foreground)
	CursorRowStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Background(p.Surface).
		Bold(true)
	SelectedStyle = lipgloss.NewStyle().
		Foreground(p.Success)
	StatusBarStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		MarginTop(1)
	EdgeMarkerStyle = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Italic(true)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Foreground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		MarginTop(1)
	ConfirmMessageStyle = lipgloss.NewStyle().
		Foreground(p.Warning)
	TextPrimaryBoldStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
