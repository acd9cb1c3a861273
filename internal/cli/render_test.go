package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/amortization"
	"github.com/Veraticus/the-books-must-balance/internal/budget"
	"github.com/Veraticus/the-books-must-balance/internal/envelope"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func frenchLoan(t *testing.T) model.Loan {
	t.Helper()
	start := model.NewDate(2025, time.January, 1)
	schedule, err := amortization.ComputeSchedule(dec("120000"), dec("12"), 12, start, model.MethodFrench)
	require.NoError(t, err)
	return model.Loan{
		ID: "loan-1", Name: "Mortgage", Method: model.MethodFrench,
		Principal: dec("120000"), AnnualRatePct: dec("12"), TermMonths: 12,
		FirstPaymentDate: start, Schedule: schedule, PaidInstallments: []int{1},
	}
}

func TestRenderSchedule(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSchedule(&buf, frenchLoan(t)))
	out := buf.String()

	assert.Contains(t, out, "Mortgage")
	assert.Contains(t, out, "12% over 12 months (french)")
	assert.Contains(t, out, "2025-01-01")
	assert.Contains(t, out, "1200.00")
	assert.Contains(t, out, "10661.85")
	assert.Contains(t, out, "110538.15")
	assert.Contains(t, out, "2025-12-01")
	assert.Contains(t, out, "Total paid 127942.26, interest 7942.26, outstanding 110538.15")
	assert.Equal(t, 1, strings.Count(out, SuccessIcon), "only the first installment is paid")
}

func TestRenderLoans(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderLoans(&buf, []model.Loan{frenchLoan(t)}, model.NewDate(2025, time.March, 15)))
	out := buf.String()

	assert.Contains(t, out, "Mortgage")
	assert.Contains(t, out, "1/12")
	assert.Contains(t, out, "#4 2025-04-01 10661.85")
}

func TestRenderAccounts(t *testing.T) {
	accounts := []model.Account{
		{ID: "a", Name: "Checking", Kind: model.AccountBank, OpeningBalance: dec("100"), Balance: dec("250.5")},
		{ID: "b", Name: "Visa", Kind: model.AccountCreditCard, Balance: dec("-200"), CreditLimit: dec("1000"), MinPaymentPct: dec("5")},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderAccounts(&buf, accounts))
	out := buf.String()

	assert.Contains(t, out, "Checking")
	assert.Contains(t, out, "250.50")
	assert.Contains(t, out, "800.00", "available credit")
	assert.Contains(t, out, "10.00", "minimum payment")
}

func TestRenderEnvelopes(t *testing.T) {
	envs := []model.Envelope{
		{Code: "E01", Name: "Rent", Kind: model.EnvelopeFixed, Limit: dec("800"), Balance: dec("800"), Spent: decimal.Zero, Priority: model.PriorityHigh},
		{Code: "E02", Name: "Fun", Kind: model.EnvelopeVariable, Balance: decimal.Zero, Spent: dec("40")},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderEnvelopes(&buf, envs))
	out := buf.String()

	assert.Contains(t, out, "E01")
	assert.Contains(t, out, "full")
	assert.Contains(t, out, "depleted")
	assert.Contains(t, out, "40.00")
}

func TestRenderAllocation(t *testing.T) {
	alloc := envelope.Allocation{
		Leftover: dec("5"),
		Given: []envelope.Credit{
			{Code: "E01", Amount: dec("60")},
			{Code: "E02", Amount: dec("35")},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderAllocation(&buf, alloc))
	assert.Contains(t, buf.String(), "Allocated 95.00, leftover 5.00")
}

func TestRenderTransactions(t *testing.T) {
	txs := []model.Transaction{
		{ID: "t1", Kind: model.KindIncome, Amount: dec("1000"), Date: model.NewDate(2025, time.May, 1)},
		{ID: "t2", Kind: model.KindExpense, Amount: dec("12.3"), Date: model.NewDate(2025, time.May, 2), Category: "Dining", Note: "pizza"},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderTransactions(&buf, txs))
	out := buf.String()

	assert.Contains(t, out, "1000.00")
	assert.Contains(t, out, "-12.30")
	assert.Contains(t, out, "pizza")
}

func TestRenderBudgetAndCategories(t *testing.T) {
	start, end := budget.MonthRange(2025, time.June)
	txs := []model.Transaction{
		{ID: "1", Kind: model.KindIncome, Amount: dec("3000"), Date: model.NewDate(2025, time.June, 1)},
		{ID: "2", Kind: model.KindExpense, Amount: dec("1600"), Date: model.NewDate(2025, time.June, 3), Category: "Rent", BudgetClass: model.ClassNeed},
	}
	s := budget.Summarize(txs, start, end)

	var buf bytes.Buffer
	require.NoError(t, RenderBudget(&buf, s))
	out := buf.String()
	assert.Contains(t, out, "Budget 2025-06-01 to 2025-06-30")
	assert.Contains(t, out, "Income 3000.00")
	assert.Contains(t, out, "1500.00")
	assert.Contains(t, out, "-100.00", "need is over target")

	buf.Reset()
	require.NoError(t, RenderCategories(&buf, s.ByCategory))
	assert.Contains(t, buf.String(), "Rent")
	assert.Contains(t, buf.String(), "1600.00")
}

func TestRenderReconciliation(t *testing.T) {
	accounts := []model.Account{{ID: "a", Name: "Checking"}}
	recs := []ledger.Reconciliation{{AccountID: "a", Expected: dec("10"), Actual: dec("12"), Difference: dec("2"), Transactions: 3}}

	var buf bytes.Buffer
	require.NoError(t, RenderReconciliation(&buf, accounts, recs))
	out := buf.String()
	assert.Contains(t, out, "Checking")
	assert.Contains(t, out, "2.00")
	assert.Contains(t, out, ErrorIcon)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "10.50", FormatMoney(dec("10.5")))
	assert.Contains(t, FormatMoney(dec("-3")), "-3.00")
}
