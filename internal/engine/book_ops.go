package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/amortization"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddAccount validates account and adds it to the book.
// The balance starts at the opening balance.
func (e *Engine) AddAccount(book model.Book, account model.Account) (model.Book, model.Account, error) {
	if err := account.Validate(); err != nil {
		return book, model.Account{}, err
	}
	if _, exists := book.FindAccount(account.Name); exists {
		return book, model.Account{}, fmt.Errorf("%w: account %q", common.ErrDuplicateEntry, account.Name)
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.OpeningBalance = model.Cents(account.OpeningBalance)
	account.Balance = account.OpeningBalance

	out := book.Clone()
	out.Accounts = append(out.Accounts, account)

	slog.Info("Added account", "id", account.ID, "name", account.Name, "kind", account.Kind)
	return out, account, nil
}

// AddEnvelope validates env, assigns it the next free code and adds it to the book.
func (e *Engine) AddEnvelope(book model.Book, env model.Envelope) (model.Book, model.Envelope, error) {
	if err := env.Validate(); err != nil {
		return book, model.Envelope{}, err
	}
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	if env.Code == "" {
		env.Code = model.NextEnvelopeCode(book.Envelopes)
	}
	for _, existing := range book.Envelopes {
		if strings.EqualFold(existing.Code, env.Code) {
			return book, model.Envelope{}, fmt.Errorf("%w: envelope code %s", common.ErrDuplicateEntry, env.Code)
		}
	}
	env.Limit = model.Cents(env.Limit)
	env.Balance = model.Cents(env.Balance)
	env.Spent = model.Cents(env.Spent)

	out := book.Clone()
	out.Envelopes = append(out.Envelopes, env)

	slog.Info("Added envelope", "code", env.Code, "name", env.Name, "kind", env.Kind)
	return out, env, nil
}

// LoanRequest holds the terms a new loan is registered with.
type LoanRequest struct {
	FirstPaymentDate time.Time
	Principal        decimal.Decimal
	AnnualRatePct    decimal.Decimal
	Name             string
	Method           model.CalculationMethod
	TermMonths       int
}

// RegisterLoan computes the schedule for req and adds the loan to the book.
func (e *Engine) RegisterLoan(book model.Book, req LoanRequest) (model.Book, model.Loan, error) {
	if strings.TrimSpace(req.Name) == "" {
		return book, model.Loan{}, fmt.Errorf("%w: loan name is required", common.ErrInvalidInput)
	}
	if _, exists := book.FindLoan(req.Name); exists {
		return book, model.Loan{}, fmt.Errorf("%w: loan %q", common.ErrDuplicateEntry, req.Name)
	}

	start := model.TruncateDay(req.FirstPaymentDate)
	schedule, err := amortization.ComputeSchedule(req.Principal, req.AnnualRatePct, req.TermMonths, start, req.Method)
	if err != nil {
		return book, model.Loan{}, err
	}

	loan := model.Loan{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Method:           req.Method,
		Principal:        model.Cents(req.Principal),
		AnnualRatePct:    req.AnnualRatePct,
		TermMonths:       req.TermMonths,
		FirstPaymentDate: start,
		Schedule:         schedule,
	}

	out := book.Clone()
	out.Loans = append(out.Loans, loan)

	slog.Info("Registered loan",
		"id", loan.ID,
		"name", loan.Name,
		"method", loan.Method,
		"installments", len(schedule),
		"total_interest", loan.TotalInterest().StringFixed(2))

	return out, loan, nil
}

// PaymentResult describes a recorded loan installment payment.
type PaymentResult struct {
	Payment     *model.Transaction
	Book        model.Book
	Loan        model.Loan
	Installment model.Installment
}

// PayInstallment marks installment number n of the referenced loan as paid.
// When accountID is set, the payment is also recorded as an expense from that
// account so the ledger reflects it.
func (e *Engine) PayInstallment(book model.Book, loanRef string, n int, accountID string) (PaymentResult, error) {
	loan, ok := book.FindLoan(loanRef)
	if !ok {
		return PaymentResult{}, fmt.Errorf("%w: loan %s", common.ErrNotFound, loanRef)
	}
	if loan.IsPaid(n) {
		return PaymentResult{}, fmt.Errorf("%w: installment %d of %s is already paid", common.ErrDuplicateEntry, n, loan.Name)
	}

	paid, err := loan.MarkPaid(n)
	if err != nil {
		return PaymentResult{}, err
	}
	inst := paid.Schedule[n-1]

	out := book.Clone()
	out.Loans[out.LoanIndex(loan.ID)] = paid
	res := PaymentResult{Loan: paid, Installment: inst}

	if accountID != "" {
		rec, err := e.RecordTransaction(out, model.Transaction{
			Kind:        model.KindExpense,
			Amount:      inst.TotalPayment,
			Date:        inst.Date,
			Category:    "Loan",
			BudgetClass: model.ClassNeed,
			Note:        fmt.Sprintf("%s installment %d", loan.Name, n),
			AccountID:   accountID,
		})
		if err != nil {
			return PaymentResult{}, fmt.Errorf("failed to record loan payment: %w", err)
		}
		out = rec.Book
		res.Payment = &rec.Transaction
	}

	res.Book = out
	slog.Info("Paid installment", "loan", loan.Name, "number", n, "amount", inst.TotalPayment.StringFixed(2))
	return res, nil
}

// Reconcile checks every account balance against its transactions.
func (e *Engine) Reconcile(book model.Book) []ledger.Reconciliation {
	recs := ledger.VerifyAll(book.Accounts, book.Transactions)
	for _, r := range recs {
		if !r.Balanced {
			slog.Warn("Account out of balance",
				"account", r.AccountID,
				"expected", r.Expected.StringFixed(2),
				"actual", r.Actual.StringFixed(2))
		}
	}
	return recs
}
