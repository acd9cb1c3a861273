package sheets

import (
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/budget"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// ScheduleHeader names the columns of a schedule tab.
var ScheduleHeader = []any{"number", "date", "interest", "principalPortion", "totalPayment", "remainingBalance", "paid"}

// Tab holds the rows destined for one sheet.
type Tab struct {
	Title string
	Rows  [][]any
	// CurrencyColumns are zero-based column indexes formatted as money.
	CurrencyColumns []int64
	// HeaderRows are the row indexes rendered bold.
	HeaderRows []int64
}

func money(d decimal.Decimal) string {
	return d.StringFixed(model.CurrencyPlaces)
}

// ScheduleTitle returns the tab title for a loan.
func ScheduleTitle(loan model.Loan) string {
	return "Loan - " + loan.Name
}

// ScheduleTab lays out a loan's amortization schedule followed by its totals.
func ScheduleTab(loan model.Loan) Tab {
	rows := make([][]any, 0, len(loan.Schedule)+8)
	rows = append(rows,
		[]any{loan.Name, string(loan.Method)},
		[]any{"principal", money(loan.Principal), "annualRatePct", loan.AnnualRatePct.String(), "termMonths", loan.TermMonths},
		[]any{},
		ScheduleHeader,
	)

	for _, inst := range loan.Schedule {
		paid := ""
		if loan.IsPaid(inst.Number) {
			paid = "yes"
		}
		rows = append(rows, []any{
			inst.Number,
			inst.Date.Format(model.DateLayout),
			money(inst.Interest),
			money(inst.PrincipalPortion),
			money(inst.TotalPayment),
			money(inst.RemainingBalance),
			paid,
		})
	}

	rows = append(rows,
		[]any{},
		[]any{"Total interest", money(loan.TotalInterest())},
		[]any{"Total paid", money(loan.TotalPaid())},
		[]any{"Outstanding", money(loan.OutstandingBalance())},
	)

	return Tab{
		Title:           ScheduleTitle(loan),
		Rows:            rows,
		CurrencyColumns: []int64{2, 3, 4, 5},
		HeaderRows:      []int64{0, 3},
	}
}

// BudgetTitle returns the tab title for a budget period.
func BudgetTitle(summary budget.Summary) string {
	return fmt.Sprintf("Budget %s", summary.Start.Format("2006-01"))
}

// BudgetTab lays out the 50/30/20 comparison and the category breakdown.
func BudgetTab(summary budget.Summary) Tab {
	rows := [][]any{
		{"Budget", fmt.Sprintf("%s - %s", summary.Start.Format("Jan 2, 2006"), summary.End.AddDate(0, 0, -1).Format("Jan 2, 2006"))},
		{},
		{"Income", money(summary.Income)},
		{"Expenses", money(summary.Expenses)},
		{"Net", money(summary.Net)},
		{},
		{"Class", "Spent", "Target", "Remaining"},
	}
	headers := []int64{0, 6}

	for _, class := range model.BudgetClasses {
		rows = append(rows, []any{
			string(class),
			money(summary.ByClass[class]),
			money(summary.Targets[class]),
			money(summary.Remaining(class)),
		})
	}

	rows = append(rows, []any{}, []any{"Category", "Spent"})
	headers = append(headers, int64(len(rows)-1))
	for _, ct := range budget.SortedCategories(summary.ByCategory) {
		rows = append(rows, []any{ct.Category, money(ct.Amount)})
	}

	return Tab{
		Title:           BudgetTitle(summary),
		Rows:            rows,
		CurrencyColumns: []int64{1, 2, 3},
		HeaderRows:      headers,
	}
}
