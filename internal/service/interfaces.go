// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/budget"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	AccountID string
	Limit     int
	Offset    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Whole-book operations
	LoadBook(ctx context.Context) (model.Book, error)
	SaveBook(ctx context.Context, book model.Book) error

	// Collection queries
	GetAccounts(ctx context.Context) ([]model.Account, error)
	GetEnvelopes(ctx context.Context) ([]model.Envelope, error)
	GetLoans(ctx context.Context) ([]model.Loan, error)
	GetLoan(ctx context.Context, ref string) (*model.Loan, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ReportWriter publishes schedules and budget reports to an external destination.
type ReportWriter interface {
	WriteSchedule(ctx context.Context, loan model.Loan) error
	WriteBudget(ctx context.Context, summary budget.Summary) error
}
