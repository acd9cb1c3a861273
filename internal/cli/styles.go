// Package cli renders the book on the terminal: styled messages, tables and prompts.
package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Palette.
var (
	PrimaryColor = lipgloss.Color("#2E8B57")
	SuccessColor = lipgloss.Color("#4ECDC4")
	WarningColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	InfoColor    = lipgloss.Color("#95E1D3")
)

var (
	// TitleStyle heads every report.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	// ErrorStyle is also used for negative amounts.
	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle  = lipgloss.NewStyle().Foreground(InfoColor)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86"))

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	BookIcon    = "📒"
)

func message(style lipgloss.Style, icon, text string) string {
	return style.Render(icon + " " + text)
}

// FormatSuccess formats a message about a change that was saved.
func FormatSuccess(text string) string { return message(SuccessStyle, SuccessIcon, text) }

// FormatError formats an error for the final line of output.
func FormatError(text string) string { return message(ErrorStyle, ErrorIcon, text) }

// FormatWarning formats something the user should look at but that did not fail.
func FormatWarning(text string) string { return message(WarningStyle, WarningIcon, text) }

// FormatInfo formats a neutral notice.
func FormatInfo(text string) string { return message(InfoStyle, InfoIcon, text) }

// FormatTitle formats a report heading.
func FormatTitle(title string) string { return message(TitleStyle, BookIcon, title) }

// FormatPrompt formats a question waiting for input.
func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// FormatMoney renders an amount with two decimals, red when negative.
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.IsNegative() {
		return ErrorStyle.Render(s)
	}
	return s
}
