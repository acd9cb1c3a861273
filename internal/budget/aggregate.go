package budget

import (
	"sort"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// Uncategorized is the category key used for expenses without a category.
const Uncategorized = "Uncategorized"

// TargetShares is the 50/30/20 split of income across budget classes.
var TargetShares = map[model.BudgetClass]decimal.Decimal{
	model.ClassNeed:   decimal.RequireFromString("0.50"),
	model.ClassWant:   decimal.RequireFromString("0.30"),
	model.ClassSaving: decimal.RequireFromString("0.20"),
}

// AggregateByClass sums expenses dated in [start, end) by budget class.
// Every class is present in the result. Expenses without a class are skipped.
func AggregateByClass(transactions []model.Transaction, start, end time.Time) map[model.BudgetClass]decimal.Decimal {
	totals := make(map[model.BudgetClass]decimal.Decimal, len(model.BudgetClasses))
	for _, c := range model.BudgetClasses {
		totals[c] = decimal.Zero
	}

	for _, tx := range transactions {
		if !tx.IsExpense() || !tx.InPeriod(start, end) {
			continue
		}
		if _, ok := totals[tx.BudgetClass]; !ok {
			continue
		}
		totals[tx.BudgetClass] = totals[tx.BudgetClass].Add(tx.Amount)
	}
	return totals
}

// AggregateByCategory sums expenses dated in [start, end) by category.
func AggregateByCategory(transactions []model.Transaction, start, end time.Time) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if !tx.IsExpense() || !tx.InPeriod(start, end) {
			continue
		}
		key := tx.Category
		if key == "" {
			key = Uncategorized
		}
		totals[key] = totals[key].Add(tx.Amount)
	}
	return totals
}

// CategoryTotal is one row of a category breakdown.
type CategoryTotal struct {
	Amount   decimal.Decimal
	Category string
}

// SortedCategories returns category totals largest first, ties by name.
func SortedCategories(byCategory map[string]decimal.Decimal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(byCategory))
	for c, amt := range byCategory {
		out = append(out, CategoryTotal{Category: c, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Amount.Cmp(out[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthRange returns the [start, end) bounds of a calendar month in UTC.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := model.NewDate(year, month, 1)
	return start, start.AddDate(0, 1, 0)
}

// Summary is a read-only budget report for a period.
type Summary struct {
	Start      time.Time
	End        time.Time
	Income     decimal.Decimal
	Expenses   decimal.Decimal
	Net        decimal.Decimal
	ByClass    map[model.BudgetClass]decimal.Decimal
	Targets    map[model.BudgetClass]decimal.Decimal
	ByCategory map[string]decimal.Decimal
}

// Remaining returns how much of the class target is still unspent.
// The value is negative when the class is over budget.
func (s Summary) Remaining(class model.BudgetClass) decimal.Decimal {
	return s.Targets[class].Sub(s.ByClass[class])
}

// Summarize builds the budget report for [start, end).
func Summarize(transactions []model.Transaction, start, end time.Time) Summary {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, tx := range transactions {
		if !tx.InPeriod(start, end) {
			continue
		}
		if tx.IsIncome() {
			income = income.Add(tx.Amount)
		} else {
			expenses = expenses.Add(tx.Amount)
		}
	}

	targets := make(map[model.BudgetClass]decimal.Decimal, len(TargetShares))
	for c, share := range TargetShares {
		targets[c] = model.Cents(income.Mul(share))
	}

	return Summary{
		Start:      start,
		End:        end,
		Income:     income,
		Expenses:   expenses,
		Net:        income.Sub(expenses),
		ByClass:    AggregateByClass(transactions, start, end),
		Targets:    targets,
		ByCategory: AggregateByCategory(transactions, start, end),
	}
}
