package tui

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/amortization"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoan(t *testing.T, paid ...int) model.Loan {
	t.Helper()
	principal := decimal.RequireFromString("120000")
	rate := decimal.RequireFromString("12")
	start := model.NewDate(2025, time.January, 1)
	schedule, err := amortization.ComputeSchedule(principal, rate, 12, start, model.MethodFrench)
	require.NoError(t, err)
	return model.Loan{
		ID:               "loan-car",
		Name:             "Car",
		Method:           model.MethodFrench,
		Principal:        principal,
		AnnualRatePct:    rate,
		TermMonths:       12,
		FirstPaymentDate: start,
		Schedule:         schedule,
		PaidInstallments: paid,
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m ScheduleModel, msgs ...tea.Msg) ScheduleModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(ScheduleModel)
		require.True(t, ok)
	}
	return m
}

func TestScheduleModel_Navigation(t *testing.T) {
	asOf := model.NewDate(2025, time.March, 15)

	tests := []struct {
		name string
		keys []tea.Msg
		want int
	}{
		{name: "starts at first installment", want: 0},
		{name: "down", keys: []tea.Msg{keyRunes("j"), tea.KeyMsg{Type: tea.KeyDown}}, want: 2},
		{name: "down then up", keys: []tea.Msg{keyRunes("j"), keyRunes("j"), keyRunes("k")}, want: 1},
		{name: "up stops at top", keys: []tea.Msg{keyRunes("k")}, want: 0},
		{name: "end", keys: []tea.Msg{keyRunes("G")}, want: 11},
		{name: "end then home", keys: []tea.Msg{tea.KeyMsg{Type: tea.KeyEnd}, keyRunes("g")}, want: 0},
		{name: "next unpaid on or after as-of", keys: []tea.Msg{keyRunes("n")}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(t, NewScheduleModel(testLoan(t, 1, 2, 3), asOf), tt.keys...)
			assert.Equal(t, tt.want, m.Cursor())
		})
	}
}

func TestScheduleModel_NextDueFallsBackToEarliestUnpaid(t *testing.T) {
	m := NewScheduleModel(testLoan(t, 1, 3), model.NewDate(2026, time.June, 1))
	m = press(t, m, keyRunes("n"))
	assert.Equal(t, 1, m.Cursor())
}

func TestScheduleModel_View(t *testing.T) {
	m := NewScheduleModel(testLoan(t, 1), model.NewDate(2025, time.January, 1))
	m = press(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	assert.Contains(t, view, "Car")
	assert.Contains(t, view, "120000.00 principal at 12% over 12 months (french)")
	assert.Contains(t, view, "10661.85")
	assert.Contains(t, view, "110538.15")
	assert.Contains(t, view, paidMark)
	assert.Contains(t, view, "Paid 1/12")
	assert.Contains(t, view, "Total paid 127942.26")
	assert.Contains(t, view, "Interest 7942.26")
	assert.Contains(t, view, "Outstanding 110538.15")
}

func TestScheduleModel_ToggleHelp(t *testing.T) {
	m := NewScheduleModel(testLoan(t), time.Now())
	assert.NotContains(t, m.View(), "force quit")

	m = press(t, m, keyRunes("?"))
	assert.Contains(t, m.View(), "force quit")

	m = press(t, m, keyRunes("?"))
	assert.NotContains(t, m.View(), "force quit")
}

func TestScheduleModel_Quit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{keyRunes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		t.Run(msg.String(), func(t *testing.T) {
			next, cmd := NewScheduleModel(testLoan(t), time.Now()).Update(msg)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.Empty(t, next.View())
		})
	}
}

func TestRunSchedule_RejectsEmptyLoan(t *testing.T) {
	err := RunSchedule(context.Background(), model.Loan{Name: "Empty"})
	require.Error(t, err)
}
