// Package themes holds the styles of the terminal views.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Normal      lipgloss.Style
	Selected    lipgloss.Style
	Footer      lipgloss.Style
	BorderedBox lipgloss.Style
	Border      lipgloss.Color
}

var (
	foreground = lipgloss.Color("#fafafa")
	muted      = lipgloss.Color("#737373")
	border     = lipgloss.Color("#404040")
	highlight  = lipgloss.Color("#2e8b57")
)

// Default is the theme every view starts with.
var Default = Theme{
	Border: border,

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(foreground).
		MarginBottom(1),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(foreground),
	// Selected marks the installment under the cursor.
	Selected: lipgloss.NewStyle().
		Background(highlight).
		Foreground(foreground).
		Bold(true),
	Footer: lipgloss.NewStyle().
		Foreground(muted).
		MarginTop(1),
	BorderedBox: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(border),
}
