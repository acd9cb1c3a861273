package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

func saveEnvelopesTx(ctx context.Context, tx *sql.Tx, envelopes []model.Envelope) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO envelopes (
			id, position, code, name, kind, limit_amount, balance, spent,
			priority, distribution_category, linked_category, payment_day
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range envelopes {
		if _, err := stmt.ExecContext(ctx,
			e.ID, i, e.Code, e.Name, string(e.Kind), e.Limit, e.Balance, e.Spent,
			string(e.Priority), string(e.DistributionCategory), e.LinkedCategory, e.PaymentDay,
		); err != nil {
			return fmt.Errorf("failed to save envelope %s: %w", e.Code, err)
		}
	}
	return nil
}

// GetEnvelopes returns every envelope in creation order.
func (s *SQLiteStorage) GetEnvelopes(ctx context.Context) ([]model.Envelope, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, kind, limit_amount, balance, spent,
		       priority, distribution_category, linked_category, payment_day
		FROM envelopes
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query envelopes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var envelopes []model.Envelope
	for rows.Next() {
		var (
			e                              model.Envelope
			kind, priority, distributionTo string
		)
		if err := rows.Scan(
			&e.ID, &e.Code, &e.Name, &kind, &e.Limit, &e.Balance, &e.Spent,
			&priority, &distributionTo, &e.LinkedCategory, &e.PaymentDay,
		); err != nil {
			return nil, fmt.Errorf("failed to scan envelope: %w", err)
		}
		e.Kind = model.EnvelopeKind(kind)
		e.Priority = model.Priority(priority)
		e.DistributionCategory = model.BudgetClass(distributionTo)
		envelopes = append(envelopes, e)
	}
	return envelopes, rows.Err()
}
