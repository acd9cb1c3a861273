package model

import (
	"fmt"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountKind indicates where money is held.
type AccountKind string

const (
	// AccountCash is physical cash.
	AccountCash AccountKind = "cash"
	// AccountBank is a checking or savings account.
	AccountBank AccountKind = "bank"
	// AccountCreditCard is a revolving credit line; its balance is usually negative.
	AccountCreditCard AccountKind = "credit_card"
)

// ParseAccountKind converts user input into an AccountKind.
func ParseAccountKind(s string) (AccountKind, error) {
	switch k := AccountKind(strings.ToLower(strings.TrimSpace(s))); k {
	case AccountCash, AccountBank, AccountCreditCard:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown account kind %q", common.ErrInvalidInput, s)
}

// Account represents a place where money lives.
//
// Balance always equals OpeningBalance plus the signed sum of every applied
// transaction that references the account.
type Account struct {
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Balance        decimal.Decimal `json:"balance"`
	CreditLimit    decimal.Decimal `json:"creditLimit,omitempty"`
	MinPaymentPct  decimal.Decimal `json:"minPaymentPct,omitempty"`
	InterestPct    decimal.Decimal `json:"interestPct,omitempty"`
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Kind           AccountKind     `json:"kind"`
	CutDay         int             `json:"cutDay,omitempty"`
	DueDay         int             `json:"dueDay,omitempty"`
}

// NewAccount creates an account whose balance starts at the opening balance.
func NewAccount(name string, kind AccountKind, opening decimal.Decimal) Account {
	return Account{
		ID:             uuid.NewString(),
		Name:           name,
		Kind:           kind,
		OpeningBalance: Cents(opening),
		Balance:        Cents(opening),
	}
}

// IsCreditCard reports whether the account is a credit card.
func (a Account) IsCreditCard() bool {
	return a.Kind == AccountCreditCard
}

// AvailableCredit returns the unused part of a credit card's limit.
func (a Account) AvailableCredit() decimal.Decimal {
	if !a.IsCreditCard() {
		return decimal.Zero
	}
	return Cents(a.CreditLimit.Add(a.Balance))
}

// MinimumPayment returns the minimum due on a credit card carrying debt.
func (a Account) MinimumPayment() decimal.Decimal {
	if !a.IsCreditCard() || !a.Balance.IsNegative() {
		return decimal.Zero
	}
	return Cents(a.Balance.Neg().Mul(a.MinPaymentPct).Div(decimal.NewFromInt(100)))
}

// Validate checks the account for obviously broken values.
func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: account name is required", common.ErrInvalidInput)
	}
	if _, err := ParseAccountKind(string(a.Kind)); err != nil {
		return err
	}
	if a.CutDay < 0 || a.CutDay > 31 {
		return fmt.Errorf("%w: cut day must be between 1 and 31", common.ErrInvalidInput)
	}
	if a.DueDay < 0 || a.DueDay > 31 {
		return fmt.Errorf("%w: due day must be between 1 and 31", common.ErrInvalidInput)
	}
	return nil
}
