package testutil

import (
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// Stable identifiers used by the standard book fixture.
const (
	AccountChecking = "acc-checking"
	AccountCard     = "acc-card"
	EnvelopeRent    = "env-rent"
	EnvelopeFood    = "env-groceries"
	EnvelopeFun     = "env-fun"
	EnvelopeSavings = "env-savings"
)

// BookBuilder provides a fluent interface for constructing test books.
//
// Example usage:
//
//	book := testutil.NewBookBuilder().
//		WithStandardBook().
//		WithExpense("tx-1", "42.10", "Groceries").
//		Build()
type BookBuilder struct {
	date time.Time
	book model.Book
}

// NewBookBuilder creates an empty builder. Transactions default to 2025-01-15.
func NewBookBuilder() *BookBuilder {
	return &BookBuilder{date: model.NewDate(2025, time.January, 15)}
}

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// OnDate sets the date used by subsequent transactions.
func (b *BookBuilder) OnDate(date time.Time) *BookBuilder {
	b.date = date
	return b
}

// WithAccount adds an account with a deterministic id derived from its name.
func (b *BookBuilder) WithAccount(name string, kind model.AccountKind, opening string) *BookBuilder {
	acc := model.NewAccount(name, kind, Dec(opening))
	acc.ID = "acc-" + slug(name)
	b.book.Accounts = append(b.book.Accounts, acc)
	return b
}

// WithEnvelope adds an envelope with the next free code.
func (b *BookBuilder) WithEnvelope(env model.Envelope) *BookBuilder {
	if env.Code == "" {
		env.Code = model.NextEnvelopeCode(b.book.Envelopes)
	}
	if env.ID == "" {
		env.ID = "env-" + slug(env.Name)
	}
	b.book.Envelopes = append(b.book.Envelopes, env)
	return b
}

// WithTransaction appends a transaction as is, without touching balances.
func (b *BookBuilder) WithTransaction(tx model.Transaction) *BookBuilder {
	b.book.Transactions = append(b.book.Transactions, tx)
	return b
}

// WithExpense appends an expense on the builder's current date.
func (b *BookBuilder) WithExpense(id, amount, category string) *BookBuilder {
	return b.WithTransaction(model.Transaction{
		ID:          id,
		Kind:        model.KindExpense,
		Amount:      Dec(amount),
		Date:        b.date,
		Category:    category,
		BudgetClass: model.ClassWant,
	})
}

// WithIncome appends an income on the builder's current date.
func (b *BookBuilder) WithIncome(id, amount string) *BookBuilder {
	return b.WithTransaction(model.Transaction{
		ID:          id,
		Kind:        model.KindIncome,
		Amount:      Dec(amount),
		Date:        b.date,
		Category:    "Salary",
		BudgetClass: model.ClassNeed,
	})
}

// WithStandardBook adds a checking account, a credit card and four envelopes:
// two fixed (rent and groceries) and two variable (fun and savings).
func (b *BookBuilder) WithStandardBook() *BookBuilder {
	b.WithAccount("Checking", model.AccountBank, "1000")

	card := model.NewAccount("Card", model.AccountCreditCard, decimal.Zero)
	card.ID = AccountCard
	card.CreditLimit = Dec("2000")
	card.MinPaymentPct = Dec("5")
	card.CutDay, card.DueDay = 20, 5
	b.book.Accounts = append(b.book.Accounts, card)

	rent := model.NewEnvelope("", "Rent", model.EnvelopeFixed, Dec("800"))
	rent.Priority = model.PriorityHigh
	rent.DistributionCategory = model.ClassNeed
	rent.LinkedCategory = "Housing"
	rent.PaymentDay = 1
	b.WithEnvelope(rent)

	food := model.NewEnvelope("", "Groceries", model.EnvelopeFixed, Dec("400"))
	food.Priority = model.PriorityMedium
	food.DistributionCategory = model.ClassNeed
	food.LinkedCategory = "Groceries"
	b.WithEnvelope(food)

	fun := model.NewEnvelope("", "Fun", model.EnvelopeVariable, Dec("300"))
	fun.DistributionCategory = model.ClassWant
	fun.LinkedCategory = "Entertainment"
	b.WithEnvelope(fun)

	savings := model.NewEnvelope("", "Savings", model.EnvelopeVariable, Dec("100"))
	savings.DistributionCategory = model.ClassSaving
	b.WithEnvelope(savings)
	return b
}

// Build returns a copy of the book assembled so far.
func (b *BookBuilder) Build() model.Book {
	return b.book.Clone()
}
