// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind indicates whether money came in or went out.
type TransactionKind string

const (
	// KindIncome represents money received.
	KindIncome TransactionKind = "income"
	// KindExpense represents money spent.
	KindExpense TransactionKind = "expense"
)

// BudgetClass is the 50/30/20 classification of a transaction.
type BudgetClass string

// Budget class constants.
const (
	ClassNeed   BudgetClass = "need"
	ClassWant   BudgetClass = "want"
	ClassSaving BudgetClass = "saving"
)

// BudgetClasses lists every budget class in reporting order.
var BudgetClasses = []BudgetClass{ClassNeed, ClassWant, ClassSaving}

// Valid reports whether c is one of the known budget classes.
func (c BudgetClass) Valid() bool {
	switch c {
	case ClassNeed, ClassWant, ClassSaving:
		return true
	}
	return false
}

// ParseBudgetClass converts user input into a BudgetClass.
func ParseBudgetClass(s string) (BudgetClass, error) {
	c := BudgetClass(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown budget class %q", common.ErrInvalidInput, s)
	}
	return c, nil
}

// Transaction represents a single income or expense entry.
// Transactions are never mutated in place: an edit reverts the old
// record and applies the new one.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	ID          string          `json:"id"`
	Kind        TransactionKind `json:"kind"`
	Category    string          `json:"category,omitempty"`
	BudgetClass BudgetClass     `json:"budgetClass"`
	Note        string          `json:"note,omitempty"`
	AccountID   string          `json:"accountId,omitempty"`
	EnvelopeID  string          `json:"envelopeId,omitempty"`
}

// NewTransactionID returns a fresh unique transaction identifier.
func NewTransactionID() string {
	return uuid.NewString()
}

// IsIncome reports whether the transaction adds money.
func (t Transaction) IsIncome() bool {
	return t.Kind == KindIncome
}

// IsExpense reports whether the transaction removes money.
func (t Transaction) IsExpense() bool {
	return t.Kind == KindExpense
}

// SignedAmount returns the effect of the transaction on an account balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.IsIncome() {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Validate checks the business-rule bounds of a transaction.
func (t Transaction) Validate() error {
	switch t.Kind {
	case KindIncome, KindExpense:
	default:
		return fmt.Errorf("%w: unknown transaction kind %q", common.ErrInvalidInput, t.Kind)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", common.ErrInvalidInput, t.Amount.StringFixed(2))
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: missing date", common.ErrInvalidInput)
	}
	if t.BudgetClass != "" && !t.BudgetClass.Valid() {
		return fmt.Errorf("%w: unknown budget class %q", common.ErrInvalidInput, t.BudgetClass)
	}
	return nil
}

// InPeriod reports whether the transaction date falls in [start, end).
func (t Transaction) InPeriod(start, end time.Time) bool {
	return !t.Date.Before(start) && t.Date.Before(end)
}
