// Package storage provides the data persistence layer for the books application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidEnvelope    = errors.New("invalid envelope")
	ErrInvalidLoan        = errors.New("invalid loan")
	ErrInvalidBackup      = errors.New("invalid backup")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateDateRange ensures start is not after end when both are set.
func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return ErrInvalidDateRange
	}
	return nil
}

// validateBook checks the records of a book before they are written.
func validateBook(book model.Book) error {
	for i, a := range book.Accounts {
		if a.ID == "" {
			return fmt.Errorf("%w at index %d: missing ID", ErrInvalidAccount, i)
		}
	}
	for i, e := range book.Envelopes {
		if e.ID == "" || e.Code == "" {
			return fmt.Errorf("%w at index %d: missing ID or code", ErrInvalidEnvelope, i)
		}
	}
	for i, l := range book.Loans {
		if l.ID == "" {
			return fmt.Errorf("%w at index %d: missing ID", ErrInvalidLoan, i)
		}
	}
	for i, t := range book.Transactions {
		if err := validateTransaction(&t); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Kind != model.KindIncome && txn.Kind != model.KindExpense {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTransaction, txn.Kind)
	}
	return nil
}
