package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/budget"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/engine"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// openStorage opens the configured book and brings its schema up to date.
func (a *app) openStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(a.settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (a *app) engine() *engine.Engine {
	return engine.NewWithConfig(engine.Config{Method: a.settings.AllocationMethod})
}

// readBook loads the book for commands that only report on it.
func (a *app) readBook(ctx context.Context) (model.Book, error) {
	store, err := a.openStorage(ctx)
	if err != nil {
		return model.Book{}, err
	}
	defer func() { _ = store.Close() }()

	return store.LoadBook(ctx)
}

// updateBook loads the book, applies fn and saves the result in one go.
// Nothing is written when fn fails or the context is cancelled.
func (a *app) updateBook(ctx context.Context, fn func(model.Book) (model.Book, error)) error {
	store, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	book, err := store.LoadBook(ctx)
	if err != nil {
		return err
	}

	book, err = fn(book)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return store.SaveBook(ctx, book)
}

// resolveAccount turns an account name or id into its id. An empty ref stays empty.
func resolveAccount(book model.Book, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	account, ok := book.FindAccount(ref)
	if !ok {
		return "", common.NewUserError(fmt.Sprintf("no account named %q", ref), common.ErrNotFound)
	}
	return account.ID, nil
}

// resolveEnvelope turns an envelope code, name or id into its id.
func resolveEnvelope(book model.Book, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	env, ok := book.FindEnvelope(ref)
	if !ok {
		return "", common.NewUserError(fmt.Sprintf("no envelope named %q", ref), common.ErrNotFound)
	}
	return env.ID, nil
}

func flagAmount(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := model.ParseAmount(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func flagDate(cmd *cobra.Command, name string) (time.Time, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}

// monthRange parses a YYYY-MM month, defaulting to the current one.
func monthRange(s string, now time.Time) (time.Time, time.Time, error) {
	if s == "" {
		start, end := budget.MonthRange(now.Year(), now.Month())
		return start, end, nil
	}
	m, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: month must look like 2025-03, got %q", common.ErrInvalidInput, s)
	}
	start, end := budget.MonthRange(m.Year(), m.Month())
	return start, end, nil
}
