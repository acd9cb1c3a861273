// Package engine orchestrates the bookkeeping operations on a model.Book.
//
// Every operation takes a Book and returns an updated copy; the caller owns
// persistence. Recording a transaction applies it to its account, then either
// allocates income across envelopes or debits an expense from its envelope.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/budget"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/envelope"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Engine applies bookkeeping operations to a Book.
type Engine struct {
	classifier budget.Classifier
	now        func() time.Time
	method     envelope.Method
}

// Config holds configuration options for the engine.
type Config struct {
	Classifier budget.Classifier
	Now        func() time.Time
	Method     envelope.Method
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Classifier: budget.MustDefaultClassifier(),
		Method:     envelope.MethodPriority,
		Now:        time.Now,
	}
}

// New creates an engine with the default configuration.
func New() *Engine {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(cfg Config) *Engine {
	defaults := DefaultConfig()
	if cfg.Classifier == nil {
		cfg.Classifier = defaults.Classifier
	}
	if cfg.Method == "" {
		cfg.Method = defaults.Method
	}
	if cfg.Now == nil {
		cfg.Now = defaults.Now
	}
	return &Engine{
		classifier: cfg.Classifier,
		method:     cfg.Method,
		now:        cfg.Now,
	}
}

// Method returns the configured income distribution method.
func (e *Engine) Method() envelope.Method {
	return e.method
}

// RecordResult describes the effects of recording one transaction.
type RecordResult struct {
	Allocation  *envelope.Allocation
	Transaction model.Transaction
	Account     model.Status
	Envelope    model.Status
	Book        model.Book
}

// RecordTransaction validates tx, applies it to its account and envelopes
// and appends it to the book.
func (e *Engine) RecordTransaction(book model.Book, tx model.Transaction) (RecordResult, error) {
	tx, err := e.prepare(tx)
	if err != nil {
		return RecordResult{}, err
	}
	if book.TransactionIndex(tx.ID) >= 0 {
		return RecordResult{}, fmt.Errorf("%w: transaction %s", common.ErrDuplicateEntry, tx.ID)
	}

	out := book.Clone()
	res := RecordResult{}

	out.Accounts, res.Account = ledger.ApplyIn(out.Accounts, tx)
	e.logSkipped("account", tx, res.Account, tx.AccountID)

	if tx.IsIncome() {
		alloc, err := envelope.AllocateIncome(tx.Amount, out.Envelopes, e.method)
		if err != nil {
			return RecordResult{}, fmt.Errorf("failed to allocate income: %w", err)
		}
		out.Envelopes = alloc.Envelopes
		res.Allocation = &alloc
		res.Envelope = model.StatusApplied
		if len(alloc.Given) == 0 {
			res.Envelope = model.StatusSkippedNoTarget
		}
	} else {
		debit, err := envelope.DebitEnvelope(out.Envelopes, envelope.TargetFor(tx), tx.Amount)
		if err != nil {
			return RecordResult{}, fmt.Errorf("failed to debit envelope: %w", err)
		}
		out.Envelopes = debit.Envelopes
		res.Envelope = debit.Status
		tx.EnvelopeID = debit.EnvelopeID
		e.logSkipped("envelope", tx, debit.Status, tx.Category)
	}

	out.Transactions = append(out.Transactions, tx)
	res.Transaction = tx
	res.Book = out

	slog.Info("Recorded transaction",
		"id", tx.ID,
		"kind", tx.Kind,
		"amount", tx.Amount.StringFixed(2),
		"class", tx.BudgetClass,
		"account", res.Account,
		"envelope", res.Envelope)

	return res, nil
}

// EditResult describes the effects of replacing a transaction.
type EditResult struct {
	Transaction model.Transaction
	Ledger      ledger.EditResult
	Envelope    model.Status
	Book        model.Book
}

// EditTransaction replaces the transaction with the given id by updated.
//
// The old transaction is reverted from its account and any envelope debit is
// restored before the new values are applied. Income allocations are a one
// time event and are not redistributed on edit.
func (e *Engine) EditTransaction(book model.Book, id string, updated model.Transaction) (EditResult, error) {
	i := book.TransactionIndex(id)
	if i < 0 {
		return EditResult{}, fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}
	old := book.Transactions[i]

	updated.ID = old.ID
	if updated.EnvelopeID == old.EnvelopeID && updated.Category != old.Category {
		updated.EnvelopeID = ""
	}
	updated, err := e.prepare(updated)
	if err != nil {
		return EditResult{}, err
	}

	out := book.Clone()
	res := EditResult{Envelope: model.StatusSkippedNoTarget}

	out.Accounts, res.Ledger = ledger.EditIn(out.Accounts, old, updated)

	if out.Envelopes, err = restoreDebit(out.Envelopes, old); err != nil {
		return EditResult{}, err
	}

	if updated.IsExpense() {
		debit, err := envelope.DebitEnvelope(out.Envelopes, envelope.TargetFor(updated), updated.Amount)
		if err != nil {
			return EditResult{}, fmt.Errorf("failed to debit envelope: %w", err)
		}
		out.Envelopes = debit.Envelopes
		res.Envelope = debit.Status
		updated.EnvelopeID = debit.EnvelopeID
	} else {
		updated.EnvelopeID = ""
	}

	out.Transactions[i] = updated
	res.Transaction = updated
	res.Book = out

	slog.Info("Edited transaction",
		"id", id,
		"reverted", res.Ledger.Reverted,
		"applied", res.Ledger.Applied,
		"envelope", res.Envelope)

	return res, nil
}

// DeleteTransaction reverts and removes the transaction with the given id.
func (e *Engine) DeleteTransaction(book model.Book, id string) (model.Book, error) {
	i := book.TransactionIndex(id)
	if i < 0 {
		return book, fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}
	old := book.Transactions[i]

	out := book.Clone()
	var status model.Status
	out.Accounts, status = ledger.RevertIn(out.Accounts, old)

	var err error
	if out.Envelopes, err = restoreDebit(out.Envelopes, old); err != nil {
		return book, err
	}
	out.Transactions = slices.Delete(out.Transactions, i, i+1)

	slog.Info("Deleted transaction", "id", id, "account", status)
	return out, nil
}

// restoreDebit gives an expense's amount back to the envelope it was charged to.
func restoreDebit(envelopes []model.Envelope, tx model.Transaction) ([]model.Envelope, error) {
	if !tx.IsExpense() || tx.EnvelopeID == "" {
		return envelopes, nil
	}
	restored, err := envelope.RestoreEnvelope(envelopes, envelope.Target{EnvelopeID: tx.EnvelopeID}, tx.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to restore envelope: %w", err)
	}
	return restored.Envelopes, nil
}

// ImportStats summarizes a bulk import.
type ImportStats struct {
	Recorded   int
	Duplicates int
	Skipped    int
}

// ImportTransactions records every transaction not already in the book.
// Transactions are matched by id so reimporting a statement is harmless.
func (e *Engine) ImportTransactions(book model.Book, txs []model.Transaction, progress func()) (model.Book, ImportStats, error) {
	var stats ImportStats
	for _, tx := range txs {
		if progress != nil {
			progress()
		}
		if tx.ID != "" && book.TransactionIndex(tx.ID) >= 0 {
			stats.Duplicates++
			continue
		}
		res, err := e.RecordTransaction(book, tx)
		if err != nil {
			if errors.Is(err, common.ErrInvalidInput) {
				slog.Warn("Skipping invalid transaction", "id", tx.ID, "error", err)
				stats.Skipped++
				continue
			}
			return book, stats, err
		}
		book = res.Book
		stats.Recorded++
	}
	return book, stats, nil
}

// AllocateIncome distributes an amount across envelopes without recording a transaction.
func (e *Engine) AllocateIncome(book model.Book, amount decimal.Decimal) (model.Book, envelope.Allocation, error) {
	alloc, err := envelope.AllocateIncome(model.Cents(amount), book.Envelopes, e.method)
	if err != nil {
		return book, envelope.Allocation{}, err
	}
	out := book.Clone()
	out.Envelopes = alloc.Envelopes
	return out, alloc, nil
}

// prepare fills in defaults and validates a transaction.
func (e *Engine) prepare(tx model.Transaction) (model.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Date.IsZero() {
		tx.Date = e.now()
	}
	tx.Date = model.TruncateDay(tx.Date)
	tx.Amount = model.Cents(tx.Amount)
	if tx.BudgetClass == "" {
		tx.BudgetClass = e.classifier.Classify(tx.Note, tx.Category)
	}
	if err := tx.Validate(); err != nil {
		return tx, err
	}
	return tx, nil
}

func (e *Engine) logSkipped(target string, tx model.Transaction, status model.Status, ref string) {
	if status.Applied() || ref == "" {
		return
	}
	slog.Warn("Transaction target not found",
		"target", target,
		"transaction", tx.ID,
		"reference", ref,
		"error", common.ErrUnresolvedReference)
}
