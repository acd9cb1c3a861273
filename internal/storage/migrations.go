package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					position INTEGER NOT NULL,
					name TEXT NOT NULL UNIQUE,
					kind TEXT NOT NULL,
					opening_balance TEXT NOT NULL DEFAULT '0',
					balance TEXT NOT NULL DEFAULT '0',
					credit_limit TEXT NOT NULL DEFAULT '0',
					min_payment_pct TEXT NOT NULL DEFAULT '0',
					interest_pct TEXT NOT NULL DEFAULT '0',
					cut_day INTEGER NOT NULL DEFAULT 0,
					due_day INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS envelopes (
					id TEXT PRIMARY KEY,
					position INTEGER NOT NULL,
					code TEXT NOT NULL UNIQUE,
					name TEXT NOT NULL,
					kind TEXT NOT NULL,
					limit_amount TEXT NOT NULL DEFAULT '0',
					balance TEXT NOT NULL DEFAULT '0',
					spent TEXT NOT NULL DEFAULT '0',
					priority TEXT NOT NULL DEFAULT '',
					distribution_category TEXT NOT NULL DEFAULT '',
					linked_category TEXT NOT NULL DEFAULT '',
					payment_day INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					position INTEGER NOT NULL,
					kind TEXT NOT NULL,
					amount TEXT NOT NULL,
					date TEXT NOT NULL,
					category TEXT NOT NULL DEFAULT '',
					budget_class TEXT NOT NULL DEFAULT '',
					note TEXT NOT NULL DEFAULT '',
					account_id TEXT NOT NULL DEFAULT '',
					envelope_id TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Add loans and amortization schedules",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS loans (
					id TEXT PRIMARY KEY,
					position INTEGER NOT NULL,
					name TEXT NOT NULL UNIQUE,
					method TEXT NOT NULL,
					principal TEXT NOT NULL,
					annual_rate_pct TEXT NOT NULL,
					term_months INTEGER NOT NULL,
					first_payment_date TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS installments (
					loan_id TEXT NOT NULL,
					number INTEGER NOT NULL,
					date TEXT NOT NULL,
					interest TEXT NOT NULL,
					principal_portion TEXT NOT NULL,
					total_payment TEXT NOT NULL,
					remaining_balance TEXT NOT NULL,
					PRIMARY KEY (loan_id, number),
					FOREIGN KEY (loan_id) REFERENCES loans(id) ON DELETE CASCADE
				)`,

				`CREATE TABLE IF NOT EXISTS loan_payments (
					loan_id TEXT NOT NULL,
					number INTEGER NOT NULL,
					paid_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (loan_id, number),
					FOREIGN KEY (loan_id) REFERENCES loans(id) ON DELETE CASCADE
				)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Index transactions by date and account",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category)`,
			})
		},
	},
}

// Migrate brings the database schema up to ExpectedSchemaVersion.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
