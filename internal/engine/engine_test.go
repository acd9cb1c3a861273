package engine

import (
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/budget"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/envelope"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var march = model.NewDate(2025, time.March, 5)

func testEngine() *Engine {
	return NewWithConfig(Config{
		Method: envelope.MethodEqual,
		Now:    func() time.Time { return march },
	})
}

func seedBook(t *testing.T, e *Engine) model.Book {
	t.Helper()

	book, _, err := e.AddAccount(model.Book{}, model.Account{ID: "bank", Name: "Checking", Kind: model.AccountBank, OpeningBalance: dec("1000")})
	require.NoError(t, err)
	book, _, err = e.AddAccount(book, model.Account{ID: "cash", Name: "Wallet", Kind: model.AccountCash, OpeningBalance: dec("50")})
	require.NoError(t, err)

	book, _, err = e.AddEnvelope(book, model.Envelope{
		ID: "rent", Name: "Rent", Kind: model.EnvelopeFixed, Limit: dec("800"),
		Priority: model.PriorityHigh, LinkedCategory: "Housing",
	})
	require.NoError(t, err)
	book, _, err = e.AddEnvelope(book, model.Envelope{
		ID: "food", Name: "Food", Kind: model.EnvelopeVariable, LinkedCategory: "Groceries",
	})
	require.NoError(t, err)
	return book
}

func balanceOf(book model.Book, id string) string {
	a, _ := book.FindAccount(id)
	return a.Balance.StringFixed(2)
}

func envelopeOf(book model.Book, id string) model.Envelope {
	e, _ := book.FindEnvelope(id)
	return e
}

func TestAddEnvelope_AssignsCodes(t *testing.T) {
	e := testEngine()
	book := seedBook(t, e)

	assert.Equal(t, "E01", envelopeOf(book, "rent").Code)
	assert.Equal(t, "E02", envelopeOf(book, "food").Code)

	_, _, err := e.AddEnvelope(book, model.Envelope{Name: "Bad", Kind: "weird"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestAddAccount_RejectsDuplicates(t *testing.T) {
	e := testEngine()
	book := seedBook(t, e)

	_, _, err := e.AddAccount(book, model.Account{Name: "Checking", Kind: model.AccountBank})
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestRecordTransaction_Income(t *testing.T) {
	e := testEngine()
	book := seedBook(t, e)

	res, err := e.RecordTransaction(book, model.Transaction{
		Kind: model.KindIncome, Amount: dec("1000"), AccountID: "bank", Note: "Salary",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusApplied, res.Account)
	assert.Equal(t, model.StatusApplied, res.Envelope)
	require.NotNil(t, res.Allocation)
	assert.True(t, res.Allocation.Leftover.IsZero())

	assert.Equal(t, "2000.00", balanceOf(res.Book, "bank"))
	assert.Equal(t, "800.00", envelopeOf(res.Book, "rent").Balance.StringFixed(2))
	assert.Equal(t, "200.00", envelopeOf(res.Book, "food").Balance.StringFixed(2))
	assert.Equal(t, march, res.Transaction.Date)
	assert.NotEmpty(t, res.Transaction.ID)
	require.Len(t, res.Book.Transactions, 1)

	// original book is untouched
	assert.Equal(t, "1000.00", balanceOf(book, "bank"))
	assert.Empty(t, book.Transactions)
}

func TestRecordTransaction_ExpenseByCategory(t *testing.T) {
	e := testEngine()
	book := seedBook(t, e)

	res, err := e.RecordTransaction(book, model.Transaction{
		Kind: model.KindIncome, Amount: dec("1000"), AccountID: "bank",
	})
	require.NoError(t, err)

	res, err = e.RecordTransaction(res.Book, model.Transaction{
		Kind: model.KindExpense, Amount: dec("45.50"), AccountID: "cash",
		Category: "Groceries", Note: "Weekly groceries",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusApplied, res.Envelope)
	assert.Equal(t, "food", res.Transaction.EnvelopeID)
	assert.Equal(t, model.ClassNeed, res.Transaction.BudgetClass)
	assert.Equal(t, "4.50", balanceOf(res.Book, "cash"))

	food := envelopeOf(res.Book, "food")
	assert.Equal(t, "154.50", food.Balance.StringFixed(2))
	assert.Equal(t, "45.50", food.Spent.StringFixed(2))
}

func TestRecordTransaction_UnresolvedTargets(t *testing.T) {
	e := testEngine()
	book := seedBook(t, e)

	res, err := e.RecordTransaction(book, model.Transaction{
		Kind: model.KindExpense, Amount: dec("10"), AccountID: "ghost", Category: "Travel",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusSkippedNoTarget, res.Account)
	assert.Equal(t, model.StatusSkippedNoTarget, res.Envelope)
	assert.Empty(t, res.Transaction.EnvelopeID)
	assert.Equal(t, "1000.00", balanceOf(res.Book, "bank"))
	assert.Len(t, res.Book.Transactions, 1)
}

func TestRecordTransaction_Invalid(t *testing.T) {
	e := testEngine()
	book := seedBook(t, e)

	tests := []struct {
		tx   model.Transaction
		name string
	}{
		{name: "zero amount", tx: model.Transaction{Kind: model.KindExpense, Amount: decimal.Zero}},
		{name: "negative amount", tx: model.Transaction{Kind: model.KindIncome, Amount: dec("-1")}},
		{name: "unknown kind", tx: model.Transaction{Kind: "transfer", Amount: dec("1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.RecordTransaction(book, tt.tx)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
		})
	}
}

func TestRecordTransaction_UsesInjectedClassifier(t *testing.T) {
	e := NewWithConfig(Config{
		Classifier: budget.ClassifierFunc(func(_, _ string) model.BudgetClass { return model.ClassSaving }),
		Now:        func() time.Time { return march },
	})
	book := seedBook(t, e)

	res, err := e.RecordTransaction(book, model.Transaction{Kind: model.KindExpense, Amount: dec("5"), Note: "rent"})
	require.NoError(t, err)
	assert.Equal(t, model.ClassSaving, res.Transaction.BudgetClass)

	res, err = e.RecordTransaction(book, model.Transaction{Kind: model.KindExpense, Amount: dec("5"), BudgetClass: model.ClassWant})
	require.NoError(t, err)
	assert.Equal(t, model.ClassWant, res.Transaction.BudgetClass)
}

func TestEditTransaction_MovesAccountAndEnvelope(t *testing.T) {
	e := testEngine()
	book := seedBook(t, e)

	res, err := e.RecordTransaction(book, model.Transaction{Kind: model.KindIncome, Amount: dec("1000"), AccountID: "bank"})
	require.NoError(t, err)
	res, err = e.RecordTransaction(res.Book, model.Transaction{
		Kind: model.KindExpense, Amount: dec("100"), AccountID: "bank", Category: "Groceries",
	})
	require.NoError(t, err)
	original := res.Transaction

	updated := original
	updated.Amount = dec("30")
	updated.AccountID = "cash"
	updated.Category = "Housing"

	edit, err := e.EditTransaction(res.Book, original.ID, updated)
	require.NoError(t, err)

	assert.Equal(t, model.StatusApplied, edit.Ledger.Reverted)
	assert.Equal(t, model.StatusApplied, edit.Ledger.Applied)
	assert.Equal(t, model.StatusApplied, edit.Envelope)
	assert.Equal(t, "rent", edit.Transaction.EnvelopeID)

	assert.Equal(t, "2000.00", balanceOf(edit.Book, "bank"))
	assert.Equal(t, "20.00", balanceOf(edit.Book, "cash"))

	food := envelopeOf(edit.Book, "food")
	assert.Equal(t, "200.00", food.Balance.StringFixed(2))
	assert.True(t, food.Spent.IsZero())
	assert.Equal(t, "770.00", envelopeOf(edit.Book, "rent").Balance.StringFixed(2))

	got, ok := edit.Book.FindTransaction(original.ID)
	require.True(t, ok)
	assert.Equal(t, "30.00", got.Amount.StringFixed(2))

	for _, r := range e.Reconcile(edit.Book) {
		assert.True(t, r.Balanced, r.AccountID)
	}
}

func TestEditTransaction_NotFound(t *testing.T) {
	e := testEngine()
	_, err := e.EditTransaction(model.Book{}, "missing", model.Transaction{Kind: model.KindIncome, Amount: dec("1")})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	e := testEngine()
	book := seedBook(t, e)

	res, err := e.RecordTransaction(book, model.Transaction{
		Kind: model.KindExpense, Amount: dec("25"), AccountID: "bank", Category: "Groceries",
	})
	require.NoError(t, err)
	require.Equal(t, "-25.00", envelopeOf(res.Book, "food").Balance.StringFixed(2))

	after, err := e.DeleteTransaction(res.Book, res.Transaction.ID)
	require.NoError(t, err)

	assert.Empty(t, after.Transactions)
	assert.Equal(t, "1000.00", balanceOf(after, "bank"))
	assert.True(t, envelopeOf(after, "food").Balance.IsZero())
	assert.True(t, envelopeOf(after, "food").Spent.IsZero())

	_, err = e.DeleteTransaction(after, res.Transaction.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestImportTransactions(t *testing.T) {
	e := testEngine()
	book := seedBook(t, e)

	txs := []model.Transaction{
		{ID: "fit-1", Kind: model.KindIncome, Amount: dec("500"), AccountID: "bank", Date: march},
		{ID: "fit-2", Kind: model.KindExpense, Amount: dec("20"), AccountID: "bank", Date: march},
		{ID: "fit-3", Kind: model.KindExpense, Amount: decimal.Zero, AccountID: "bank", Date: march},
	}

	calls := 0
	book, stats, err := e.ImportTransactions(book, txs, func() { calls++ })
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Recorded: 2, Skipped: 1}, stats)
	assert.Equal(t, 3, calls)

	book, stats, err = e.ImportTransactions(book, txs[:2], nil)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Duplicates: 2}, stats)
	assert.Equal(t, "1480.00", balanceOf(book, "bank"))
}

func TestAllocateIncome(t *testing.T) {
	e := testEngine()
	book := seedBook(t, e)

	out, alloc, err := e.AllocateIncome(book, dec("900"))
	require.NoError(t, err)
	assert.Len(t, alloc.Given, 2)
	assert.Equal(t, "800.00", envelopeOf(out, "rent").Balance.StringFixed(2))
	assert.Equal(t, "100.00", envelopeOf(out, "food").Balance.StringFixed(2))
	assert.Equal(t, "1000.00", balanceOf(out, "bank"))
}
