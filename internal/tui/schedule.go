package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/amortization"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultHeight = 20
	// Title, subtitle, table border and footer lines.
	chromeHeight = 9
	paidMark     = "✓"
)

// ScheduleModel is a scrollable view of a loan's amortization table.
type ScheduleModel struct {
	asOf     time.Time
	theme    themes.Theme
	help     help.Model
	loan     model.Loan
	summary  amortization.Summary
	keymap   KeyMap
	table    table.Model
	width    int
	height   int
	quitting bool
}

// NewScheduleModel builds a viewer for loan. asOf decides which installment
// the next-due shortcut jumps to.
func NewScheduleModel(loan model.Loan, asOf time.Time) ScheduleModel {
	theme := themes.Default

	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Date", Width: 10},
		{Title: "Interest", Width: 12},
		{Title: "Principal", Width: 12},
		{Title: "Payment", Width: 12},
		{Title: "Balance", Width: 14},
		{Title: "Paid", Width: 4},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(scheduleRows(loan)),
		table.WithFocused(true),
		table.WithHeight(min(defaultHeight, len(loan.Schedule)+1)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(false)
	s.Cell = s.Cell.Inherit(theme.Normal)
	s.Selected = theme.Selected
	t.SetStyles(s)

	return ScheduleModel{
		asOf:    asOf,
		theme:   theme,
		help:    help.New(),
		loan:    loan,
		summary: amortization.Summarize(loan.Schedule),
		keymap:  DefaultKeyMap(),
		table:   t,
		width:   80,
		height:  defaultHeight + chromeHeight,
	}
}

func scheduleRows(loan model.Loan) []table.Row {
	rows := make([]table.Row, 0, len(loan.Schedule))
	for _, inst := range loan.Schedule {
		paid := ""
		if loan.IsPaid(inst.Number) {
			paid = paidMark
		}
		rows = append(rows, table.Row{
			fmt.Sprint(inst.Number),
			inst.Date.Format(model.DateLayout),
			inst.Interest.StringFixed(2),
			inst.PrincipalPortion.StringFixed(2),
			inst.TotalPayment.StringFixed(2),
			inst.RemainingBalance.StringFixed(2),
			paid,
		})
	}
	return rows
}

// Init implements tea.Model.
func (m ScheduleModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ScheduleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(3, min(m.height-chromeHeight, len(m.loan.Schedule)+1)))
	}
	return m, nil
}

func (m ScheduleModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit), key.Matches(msg, m.keymap.ForceQuit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Up):
		m.table.MoveUp(1)
	case key.Matches(msg, m.keymap.Down):
		m.table.MoveDown(1)
	case key.Matches(msg, m.keymap.PageUp):
		m.table.MoveUp(m.table.Height())
	case key.Matches(msg, m.keymap.PageDown):
		m.table.MoveDown(m.table.Height())
	case key.Matches(msg, m.keymap.Home):
		m.table.GotoTop()
	case key.Matches(msg, m.keymap.End):
		m.table.GotoBottom()
	case key.Matches(msg, m.keymap.NextDue):
		if inst, ok := m.loan.NextDue(m.asOf); ok {
			m.table.SetCursor(inst.Number - 1)
		}
	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// Cursor returns the zero-based index of the highlighted installment.
func (m ScheduleModel) Cursor() int {
	return m.table.Cursor()
}

// View implements tea.Model.
func (m ScheduleModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.loan.Name))
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf("%s principal at %s%% over %d months (%s)",
		m.loan.Principal.StringFixed(2), m.loan.AnnualRatePct.String(), m.loan.TermMonths, m.loan.Method)))
	b.WriteString("\n\n")
	b.WriteString(m.theme.BorderedBox.Render(m.table.View()))
	b.WriteString("\n")

	paid := len(m.loan.PaidInstallments)
	footer := fmt.Sprintf("Paid %d/%d  Total paid %s  Interest %s  Outstanding %s",
		paid, m.summary.Installments,
		m.summary.TotalPayment.StringFixed(2),
		m.summary.TotalInterest.StringFixed(2),
		m.loan.OutstandingBalance().StringFixed(2),
	)
	b.WriteString(m.theme.Footer.Render(footer))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keymap))
	return b.String()
}
