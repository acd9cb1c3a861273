package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

func saveLoansTx(ctx context.Context, tx *sql.Tx, loans []model.Loan) error {
	loanStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO loans (
			id, position, name, method, principal, annual_rate_pct, term_months, first_payment_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = loanStmt.Close() }()

	instStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO installments (
			loan_id, number, date, interest, principal_portion, total_payment, remaining_balance
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = instStmt.Close() }()

	payStmt, err := tx.PrepareContext(ctx, `INSERT INTO loan_payments (loan_id, number) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = payStmt.Close() }()

	for i, l := range loans {
		if _, err := loanStmt.ExecContext(ctx,
			l.ID, i, l.Name, string(l.Method), l.Principal, l.AnnualRatePct, l.TermMonths, formatDate(l.FirstPaymentDate),
		); err != nil {
			return fmt.Errorf("failed to save loan %s: %w", l.Name, err)
		}

		for _, inst := range l.Schedule {
			if _, err := instStmt.ExecContext(ctx,
				l.ID, inst.Number, formatDate(inst.Date), inst.Interest,
				inst.PrincipalPortion, inst.TotalPayment, inst.RemainingBalance,
			); err != nil {
				return fmt.Errorf("failed to save installment %d of %s: %w", inst.Number, l.Name, err)
			}
		}

		for _, n := range l.PaidInstallments {
			if _, err := payStmt.ExecContext(ctx, l.ID, n); err != nil {
				return fmt.Errorf("failed to save payment %d of %s: %w", n, l.Name, err)
			}
		}
	}
	return nil
}

const loanColumns = `id, name, method, principal, annual_rate_pct, term_months, first_payment_date`

func scanLoan(row rowScanner) (model.Loan, error) {
	var (
		l            model.Loan
		method, date string
	)
	if err := row.Scan(&l.ID, &l.Name, &method, &l.Principal, &l.AnnualRatePct, &l.TermMonths, &date); err != nil {
		return model.Loan{}, err
	}
	l.Method = model.CalculationMethod(method)

	first, err := parseDate(date)
	if err != nil {
		return model.Loan{}, err
	}
	l.FirstPaymentDate = first
	return l, nil
}

// GetLoans returns every loan with its schedule and payments.
func (s *SQLiteStorage) GetLoans(ctx context.Context) ([]model.Loan, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+loanColumns+` FROM loans ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}

	var loans []model.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for i := range loans {
		if err := s.loadLoanDetails(ctx, &loans[i]); err != nil {
			return nil, err
		}
	}
	return loans, nil
}

// GetLoan returns the loan with the given id or name.
func (s *SQLiteStorage) GetLoan(ctx context.Context, ref string) (*model.Loan, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ref, "ref"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = ? OR name = ? LIMIT 1`, ref, ref)
	l, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: loan %s", common.ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	if err := s.loadLoanDetails(ctx, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *SQLiteStorage) loadLoanDetails(ctx context.Context, l *model.Loan) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, date, interest, principal_portion, total_payment, remaining_balance
		FROM installments
		WHERE loan_id = ?
		ORDER BY number
	`, l.ID)
	if err != nil {
		return fmt.Errorf("failed to query installments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	l.Schedule = make([]model.Installment, 0, l.TermMonths)
	for rows.Next() {
		var (
			inst model.Installment
			date string
		)
		if err := rows.Scan(&inst.Number, &date, &inst.Interest, &inst.PrincipalPortion, &inst.TotalPayment, &inst.RemainingBalance); err != nil {
			return fmt.Errorf("failed to scan installment: %w", err)
		}
		if inst.Date, err = parseDate(date); err != nil {
			return err
		}
		l.Schedule = append(l.Schedule, inst)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	_ = rows.Close()

	payRows, err := s.db.QueryContext(ctx, `SELECT number FROM loan_payments WHERE loan_id = ? ORDER BY number`, l.ID)
	if err != nil {
		return fmt.Errorf("failed to query loan payments: %w", err)
	}
	defer func() { _ = payRows.Close() }()

	l.PaidInstallments = nil
	for payRows.Next() {
		var n int
		if err := payRows.Scan(&n); err != nil {
			return fmt.Errorf("failed to scan loan payment: %w", err)
		}
		l.PaidInstallments = append(l.PaidInstallments, n)
	}
	return payRows.Err()
}
