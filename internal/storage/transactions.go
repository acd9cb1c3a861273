package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type transactionQuery struct {
	filter service.TransactionFilter
	id     string
}

func saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			id, position, kind, amount, date, category, budget_class, note, account_id, envelope_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, t := range transactions {
		if _, err := stmt.ExecContext(ctx,
			t.ID, i, string(t.Kind), t.Amount, formatDate(t.Date), t.Category,
			string(t.BudgetClass), t.Note, t.AccountID, t.EnvelopeID,
		); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", t.ID, err)
		}
	}
	return nil
}

// GetTransactions returns transactions matching filter ordered by date.
// The date range is half-open: StartDate inclusive, EndDate exclusive.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(filter.StartDate, filter.EndDate); err != nil {
		return nil, err
	}
	return s.getTransactions(ctx, s.db, transactionQuery{filter: filter})
}

// GetTransactionByID returns a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	txns, err := s.getTransactions(ctx, s.db, transactionQuery{id: id})
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}
	return &txns[0], nil
}

func (s *SQLiteStorage) getTransactions(ctx context.Context, q querier, tq transactionQuery) ([]model.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if tq.id != "" {
		where = append(where, "id = ?")
		args = append(args, tq.id)
	}
	if tq.filter.StartDate != nil {
		where = append(where, "date >= ?")
		args = append(args, formatDate(*tq.filter.StartDate))
	}
	if tq.filter.EndDate != nil {
		where = append(where, "date < ?")
		args = append(args, formatDate(*tq.filter.EndDate))
	}
	if tq.filter.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, tq.filter.AccountID)
	}

	query := `SELECT id, kind, amount, date, category, budget_class, note, account_id, envelope_id FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, position"
	if tq.filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, tq.filter.Limit, tq.filter.Offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		t                 model.Transaction
		kind, date, class string
	)
	err := row.Scan(&t.ID, &kind, &t.Amount, &date, &t.Category, &class, &t.Note, &t.AccountID, &t.EnvelopeID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, common.ErrNotFound
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	t.Kind = model.TransactionKind(kind)
	t.BudgetClass = model.BudgetClass(class)
	if t.Date, err = parseDate(date); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}
