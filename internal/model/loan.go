package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/shopspring/decimal"
)

// CalculationMethod selects how a loan accrues interest.
type CalculationMethod string

const (
	// MethodFrench is a constant-payment amortizing loan.
	MethodFrench CalculationMethod = "french"
	// MethodAmerican pays interest only and returns the principal at the end.
	MethodAmerican CalculationMethod = "american"
	// MethodDailyCompound amortizes with an effective monthly rate compounded daily.
	MethodDailyCompound CalculationMethod = "daily_compound"
)

// ParseCalculationMethod converts user input into a CalculationMethod.
func ParseCalculationMethod(s string) (CalculationMethod, error) {
	m := CalculationMethod(strings.ToLower(strings.TrimSpace(s)))
	m = CalculationMethod(strings.ReplaceAll(string(m), "-", "_"))
	switch m {
	case MethodFrench, MethodAmerican, MethodDailyCompound:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown calculation method %q", common.ErrInvalidInput, s)
}

// Installment is one row of an amortization schedule.
// The JSON field names are the export contract.
type Installment struct {
	Date             time.Time       `json:"date"`
	Interest         decimal.Decimal `json:"interest"`
	PrincipalPortion decimal.Decimal `json:"principalPortion"`
	TotalPayment     decimal.Decimal `json:"totalPayment"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	Number           int             `json:"number"`
}

// Loan is a borrowed amount together with its derived schedule.
// The schedule is computed once at registration and never changes.
type Loan struct {
	FirstPaymentDate time.Time         `json:"firstPaymentDate"`
	Principal        decimal.Decimal   `json:"principal"`
	AnnualRatePct    decimal.Decimal   `json:"annualRatePct"`
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Method           CalculationMethod `json:"method"`
	Schedule         []Installment     `json:"schedule"`
	PaidInstallments []int             `json:"paidInstallments,omitempty"`
	TermMonths       int               `json:"termMonths"`
}

// IsPaid reports whether installment number n has been marked paid.
func (l Loan) IsPaid(n int) bool {
	for _, p := range l.PaidInstallments {
		if p == n {
			return true
		}
	}
	return false
}

// MarkPaid returns a copy of the loan with installment n marked paid.
func (l Loan) MarkPaid(n int) (Loan, error) {
	if n < 1 || n > len(l.Schedule) {
		return l, fmt.Errorf("%w: installment %d of loan %s", common.ErrNotFound, n, l.Name)
	}
	if l.IsPaid(n) {
		return l, nil
	}
	paid := make([]int, 0, len(l.PaidInstallments)+1)
	paid = append(paid, l.PaidInstallments...)
	paid = append(paid, n)
	sort.Ints(paid)
	l.PaidInstallments = paid
	return l, nil
}

// TotalInterest returns the interest paid over the whole schedule.
func (l Loan) TotalInterest() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range l.Schedule {
		total = total.Add(inst.Interest)
	}
	return total
}

// TotalPaid returns the sum of the payments already marked paid.
func (l Loan) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range l.Schedule {
		if l.IsPaid(inst.Number) {
			total = total.Add(inst.TotalPayment)
		}
	}
	return total
}

// OutstandingBalance returns the balance left after the last contiguous paid installment.
func (l Loan) OutstandingBalance() decimal.Decimal {
	balance := l.Principal
	for _, inst := range l.Schedule {
		if !l.IsPaid(inst.Number) {
			break
		}
		balance = inst.RemainingBalance
	}
	return balance
}

// NextDue returns the first unpaid installment dated on or after asOf.
// When every such installment is paid, the earliest unpaid one is returned.
func (l Loan) NextDue(asOf time.Time) (Installment, bool) {
	var first *Installment
	for i := range l.Schedule {
		inst := l.Schedule[i]
		if l.IsPaid(inst.Number) {
			continue
		}
		if first == nil {
			first = &l.Schedule[i]
		}
		if !inst.Date.Before(asOf) {
			return inst, true
		}
	}
	if first != nil {
		return *first, true
	}
	return Installment{}, false
}
