package engine

import (
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoan(t *testing.T) {
	e := testEngine()

	book, loan, err := e.RegisterLoan(model.Book{}, LoanRequest{
		Name:             "Car",
		Principal:        dec("120000"),
		AnnualRatePct:    dec("12"),
		TermMonths:       12,
		FirstPaymentDate: time.Date(2025, time.January, 1, 15, 30, 0, 0, time.UTC),
		Method:           model.MethodFrench,
	})
	require.NoError(t, err)

	require.Len(t, book.Loans, 1)
	assert.NotEmpty(t, loan.ID)
	assert.Equal(t, model.NewDate(2025, time.January, 1), loan.FirstPaymentDate)
	require.Len(t, loan.Schedule, 12)
	assert.Equal(t, "10661.85", loan.Schedule[0].TotalPayment.StringFixed(2))
	assert.Equal(t, "7942.26", loan.TotalInterest().StringFixed(2))

	_, _, err = e.RegisterLoan(book, LoanRequest{
		Name: "Car", Principal: dec("1"), AnnualRatePct: dec("1"), TermMonths: 1,
		FirstPaymentDate: march, Method: model.MethodFrench,
	})
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestRegisterLoan_Invalid(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name string
		req  LoanRequest
	}{
		{name: "missing name", req: LoanRequest{Principal: dec("100"), AnnualRatePct: dec("1"), TermMonths: 2, FirstPaymentDate: march, Method: model.MethodFrench}},
		{name: "zero term", req: LoanRequest{Name: "x", Principal: dec("100"), AnnualRatePct: dec("1"), FirstPaymentDate: march, Method: model.MethodFrench}},
		{name: "bad method", req: LoanRequest{Name: "x", Principal: dec("100"), AnnualRatePct: dec("1"), TermMonths: 2, FirstPaymentDate: march, Method: "bullet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, _, err := e.RegisterLoan(model.Book{}, tt.req)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
			assert.Empty(t, book.Loans)
		})
	}
}

func TestPayInstallment(t *testing.T) {
	e := testEngine()
	book := seedBook(t, e)

	book, loan, err := e.RegisterLoan(book, LoanRequest{
		Name: "Bike", Principal: dec("1000"), AnnualRatePct: dec("12"), TermMonths: 3,
		FirstPaymentDate: march, Method: model.MethodAmerican,
	})
	require.NoError(t, err)

	res, err := e.PayInstallment(book, "Bike", 1, "bank")
	require.NoError(t, err)

	assert.True(t, res.Loan.IsPaid(1))
	assert.Equal(t, "10.00", res.Installment.TotalPayment.StringFixed(2))
	require.NotNil(t, res.Payment)
	assert.Equal(t, model.KindExpense, res.Payment.Kind)
	assert.Equal(t, "990.00", balanceOf(res.Book, "bank"))
	assert.Equal(t, "10.00", res.Loan.TotalPaid().StringFixed(2))

	stored, ok := res.Book.FindLoan(loan.ID)
	require.True(t, ok)
	assert.Equal(t, []int{1}, stored.PaidInstallments)

	// the original loan in the input book is untouched
	assert.False(t, loan.IsPaid(1))

	_, err = e.PayInstallment(res.Book, "Bike", 1, "")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	_, err = e.PayInstallment(res.Book, "Bike", 9, "")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = e.PayInstallment(res.Book, "Boat", 1, "")
	assert.ErrorIs(t, err, common.ErrNotFound)

	noLedger, err := e.PayInstallment(res.Book, loan.ID, 2, "")
	require.NoError(t, err)
	assert.Nil(t, noLedger.Payment)
	assert.Equal(t, "990.00", balanceOf(noLedger.Book, "bank"))
}

func TestReconcile(t *testing.T) {
	e := testEngine()
	book := seedBook(t, e)

	res, err := e.RecordTransaction(book, model.Transaction{Kind: model.KindExpense, Amount: dec("12.34"), AccountID: "bank"})
	require.NoError(t, err)

	recs := e.Reconcile(res.Book)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.True(t, r.Balanced, r.AccountID)
	}

	tampered := res.Book.Clone()
	tampered.Accounts[0].Balance = tampered.Accounts[0].Balance.Add(dec("1"))
	recs = e.Reconcile(tampered)
	assert.False(t, recs[0].Balanced)
}
