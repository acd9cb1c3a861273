package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func formatDate(t time.Time) string {
	return t.UTC().Format(model.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(model.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrInvalidTransaction, s)
	}
	return t, nil
}

// LoadBook reads every collection from the database.
func (s *SQLiteStorage) LoadBook(ctx context.Context) (model.Book, error) {
	if err := validateContext(ctx); err != nil {
		return model.Book{}, err
	}

	var (
		book model.Book
		err  error
	)
	if book.Accounts, err = s.GetAccounts(ctx); err != nil {
		return model.Book{}, err
	}
	if book.Envelopes, err = s.GetEnvelopes(ctx); err != nil {
		return model.Book{}, err
	}
	if book.Loans, err = s.GetLoans(ctx); err != nil {
		return model.Book{}, err
	}
	if book.Transactions, err = s.getTransactions(ctx, s.db, transactionQuery{}); err != nil {
		return model.Book{}, err
	}

	slog.Debug("Loaded book",
		"accounts", len(book.Accounts),
		"envelopes", len(book.Envelopes),
		"loans", len(book.Loans),
		"transactions", len(book.Transactions))

	return book, nil
}

// SaveBook replaces the stored state with book in a single transaction.
func (s *SQLiteStorage) SaveBook(ctx context.Context, book model.Book) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBook(book); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"loan_payments", "installments", "loans", "transactions", "envelopes", "accounts"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		if err := saveAccountsTx(ctx, tx, book.Accounts); err != nil {
			return err
		}
		if err := saveEnvelopesTx(ctx, tx, book.Envelopes); err != nil {
			return err
		}
		if err := saveLoansTx(ctx, tx, book.Loans); err != nil {
			return err
		}
		if err := saveTransactionsTx(ctx, tx, book.Transactions); err != nil {
			return err
		}

		slog.Debug("Saved book",
			"accounts", len(book.Accounts),
			"envelopes", len(book.Envelopes),
			"loans", len(book.Loans),
			"transactions", len(book.Transactions))
		return nil
	})
}
