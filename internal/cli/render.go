package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/amortization"
	"github.com/Veraticus/the-books-must-balance/internal/budget"
	"github.com/Veraticus/the-books-must-balance/internal/envelope"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// table wraps a tabwriter and remembers the first write error.
type table struct {
	tw  *tabwriter.Writer
	err error
}

func newTable(w io.Writer, headers ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = TableHeaderStyle.Render(h)
		rules[i] = strings.Repeat("-", len(h))
	}
	t.row(styled...)
	t.row(rules...)
	return t
}

func (t *table) row(cols ...string) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintln(t.tw, strings.Join(cols, "\t"))
}

func (t *table) flush() error {
	if t.err != nil {
		return t.err
	}
	return t.tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// RenderSchedule prints a loan's amortization table with totals.
func RenderSchedule(w io.Writer, loan model.Loan) error {
	if _, err := fmt.Fprintf(w, "%s\n%s %s at %s%% over %d months (%s)\n\n",
		FormatTitle(loan.Name),
		FormatMoney(loan.Principal), "principal", loan.AnnualRatePct.String(), loan.TermMonths, loan.Method,
	); err != nil {
		return err
	}

	t := newTable(w, "#", "Date", "Interest", "Principal", "Payment", "Balance", "Paid")
	for _, inst := range loan.Schedule {
		paid := ""
		if loan.IsPaid(inst.Number) {
			paid = SuccessIcon
		}
		t.row(
			fmt.Sprint(inst.Number),
			inst.Date.Format(model.DateLayout),
			FormatMoney(inst.Interest),
			FormatMoney(inst.PrincipalPortion),
			FormatMoney(inst.TotalPayment),
			FormatMoney(inst.RemainingBalance),
			paid,
		)
	}
	if err := t.flush(); err != nil {
		return err
	}

	sum := amortization.Summarize(loan.Schedule)
	_, err := fmt.Fprintf(w, "\nTotal paid %s, interest %s, outstanding %s\n",
		FormatMoney(sum.TotalPayment), FormatMoney(sum.TotalInterest), FormatMoney(loan.OutstandingBalance()))
	return err
}

// RenderLoans prints one line per loan with its next due installment.
func RenderLoans(w io.Writer, loans []model.Loan, asOf time.Time) error {
	t := newTable(w, "Name", "Method", "Principal", "Rate", "Paid", "Outstanding", "Next due")
	for _, l := range loans {
		next := "-"
		if inst, ok := l.NextDue(asOf); ok {
			next = fmt.Sprintf("#%d %s %s", inst.Number, inst.Date.Format(model.DateLayout), FormatMoney(inst.TotalPayment))
		}
		t.row(
			l.Name,
			string(l.Method),
			FormatMoney(l.Principal),
			l.AnnualRatePct.String()+"%",
			fmt.Sprintf("%d/%d", len(l.PaidInstallments), len(l.Schedule)),
			FormatMoney(l.OutstandingBalance()),
			next,
		)
	}
	return t.flush()
}

// RenderAccounts prints balances, with credit details for cards.
func RenderAccounts(w io.Writer, accounts []model.Account) error {
	t := newTable(w, "Name", "Kind", "Opening", "Balance", "Available", "Min payment")
	for _, a := range accounts {
		available, minimum := "-", "-"
		if a.IsCreditCard() {
			available = FormatMoney(a.AvailableCredit())
			minimum = FormatMoney(a.MinimumPayment())
		}
		t.row(a.Name, string(a.Kind), FormatMoney(a.OpeningBalance), FormatMoney(a.Balance), available, minimum)
	}
	return t.flush()
}

// RenderEnvelopes prints envelopes in funding order.
func RenderEnvelopes(w io.Writer, envelopes []model.Envelope) error {
	t := newTable(w, "Code", "Name", "Kind", "Priority", "Limit", "Balance", "Spent", "Status")
	for _, e := range envelopes {
		limit := "-"
		if e.IsFixed() || e.Limit.IsPositive() {
			limit = FormatMoney(e.Limit)
		}
		t.row(e.Code, e.Name, string(e.Kind), orDash(string(e.Priority)), limit, FormatMoney(e.Balance), FormatMoney(e.Spent), e.Status())
	}
	return t.flush()
}

// RenderAllocation prints where an income amount went.
func RenderAllocation(w io.Writer, alloc envelope.Allocation) error {
	t := newTable(w, "Envelope", "Credited")
	for _, c := range alloc.Given {
		t.row(orDash(c.Code), FormatMoney(c.Amount))
	}
	if err := t.flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nAllocated %s, leftover %s\n", FormatMoney(alloc.Allocated()), FormatMoney(alloc.Leftover))
	return err
}

// RenderTransactions prints transactions with signed amounts.
func RenderTransactions(w io.Writer, txs []model.Transaction) error {
	t := newTable(w, "Date", "ID", "Kind", "Amount", "Category", "Class", "Account", "Note")
	for _, tx := range txs {
		t.row(
			tx.Date.Format(model.DateLayout),
			tx.ID,
			string(tx.Kind),
			FormatMoney(tx.SignedAmount()),
			orDash(tx.Category),
			orDash(string(tx.BudgetClass)),
			orDash(tx.AccountID),
			tx.Note,
		)
	}
	return t.flush()
}

// RenderBudget prints the 50/30/20 comparison for a period.
func RenderBudget(w io.Writer, s budget.Summary) error {
	if _, err := fmt.Fprintf(w, "%s\nIncome %s  Expenses %s  Net %s\n\n",
		FormatTitle(fmt.Sprintf("Budget %s to %s", s.Start.Format(model.DateLayout), s.End.AddDate(0, 0, -1).Format(model.DateLayout))),
		FormatMoney(s.Income), FormatMoney(s.Expenses), FormatMoney(s.Net),
	); err != nil {
		return err
	}

	t := newTable(w, "Class", "Spent", "Target", "Remaining")
	for _, c := range model.BudgetClasses {
		t.row(string(c), FormatMoney(s.ByClass[c]), FormatMoney(s.Targets[c]), FormatMoney(s.Remaining(c)))
	}
	return t.flush()
}

// RenderCategories prints category totals largest first.
func RenderCategories(w io.Writer, byCategory map[string]decimal.Decimal) error {
	t := newTable(w, "Category", "Spent")
	for _, ct := range budget.SortedCategories(byCategory) {
		t.row(ct.Category, FormatMoney(ct.Amount))
	}
	return t.flush()
}

// RenderReconciliation prints the balance check of every account.
func RenderReconciliation(w io.Writer, accounts []model.Account, recs []ledger.Reconciliation) error {
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	t := newTable(w, "Account", "Transactions", "Expected", "Actual", "Difference", "")
	for _, r := range recs {
		mark := SuccessStyle.Render(SuccessIcon)
		if !r.Balanced {
			mark = ErrorStyle.Render(ErrorIcon)
		}
		t.row(orDash(names[r.AccountID]), fmt.Sprint(r.Transactions), FormatMoney(r.Expected), FormatMoney(r.Actual), FormatMoney(r.Difference), mark)
	}
	return t.flush()
}
