package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

func saveAccountsTx(ctx context.Context, tx *sql.Tx, accounts []model.Account) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO accounts (
			id, position, name, kind, opening_balance, balance,
			credit_limit, min_payment_pct, interest_pct, cut_day, due_day
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, a := range accounts {
		if _, err := stmt.ExecContext(ctx,
			a.ID, i, a.Name, string(a.Kind), a.OpeningBalance, a.Balance,
			a.CreditLimit, a.MinPaymentPct, a.InterestPct, a.CutDay, a.DueDay,
		); err != nil {
			return fmt.Errorf("failed to save account %s: %w", a.Name, err)
		}
	}
	return nil
}

// GetAccounts returns every account in creation order.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, opening_balance, balance,
		       credit_limit, min_payment_pct, interest_pct, cut_day, due_day
		FROM accounts
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var (
			a    model.Account
			kind string
		)
		if err := rows.Scan(
			&a.ID, &a.Name, &kind, &a.OpeningBalance, &a.Balance,
			&a.CreditLimit, &a.MinPaymentPct, &a.InterestPct, &a.CutDay, &a.DueDay,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Kind = model.AccountKind(kind)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
