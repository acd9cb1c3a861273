// Package amortization generates loan repayment schedules.
//
// Each calculation method is a Plan registered under a model.CalculationMethod.
// ComputeSchedule validates the loan terms, looks up the plan and returns the
// installments it produces. All currency values are rounded half-up to two
// decimals at every step and later steps consume the rounded values, so the
// printed schedule always adds up.
package amortization

import (
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// Terms are the inputs every plan works from.
type Terms struct {
	StartDate     time.Time
	Principal     decimal.Decimal
	AnnualRatePct decimal.Decimal
	TermMonths    int
}

// Plan is the strategy interface for one calculation method.
type Plan interface {
	// PeriodRate returns the per-installment interest rate for an annual percentage.
	PeriodRate(annualRatePct decimal.Decimal) decimal.Decimal
	// Schedule returns the installments for already validated terms.
	Schedule(terms Terms) []model.Installment
}

var (
	plansMu sync.RWMutex
	plans   = map[model.CalculationMethod]Plan{
		model.MethodFrench:        FrenchPlan{},
		model.MethodAmerican:      AmericanPlan{},
		model.MethodDailyCompound: DailyCompoundPlan{},
	}
)

// Register installs or replaces the plan used for a method.
func Register(method model.CalculationMethod, plan Plan) {
	plansMu.Lock()
	defer plansMu.Unlock()
	plans[method] = plan
}

// Lookup returns the plan registered for a method.
func Lookup(method model.CalculationMethod) (Plan, error) {
	plansMu.RLock()
	defer plansMu.RUnlock()
	plan, ok := plans[method]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported calculation method %q", common.ErrInvalidInput, method)
	}
	return plan, nil
}

// ComputeSchedule returns the amortization schedule for a loan.
func ComputeSchedule(principal, annualRatePct decimal.Decimal, termMonths int, startDate time.Time, method model.CalculationMethod) ([]model.Installment, error) {
	terms := Terms{
		Principal:     principal,
		AnnualRatePct: annualRatePct,
		TermMonths:    termMonths,
		StartDate:     startDate,
	}
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	plan, err := Lookup(method)
	if err != nil {
		return nil, err
	}

	terms.Principal = model.Cents(principal)
	return plan.Schedule(terms), nil
}

// MonthlyRate returns the per-installment rate the method applies.
func MonthlyRate(method model.CalculationMethod, annualRatePct decimal.Decimal) (decimal.Decimal, error) {
	plan, err := Lookup(method)
	if err != nil {
		return decimal.Zero, err
	}
	return plan.PeriodRate(annualRatePct), nil
}

// Validate checks loan terms against business rules.
func (t Terms) Validate() error {
	if !t.Principal.IsPositive() {
		return fmt.Errorf("%w: principal must be positive, got %s", common.ErrInvalidInput, t.Principal)
	}
	if t.TermMonths <= 0 {
		return fmt.Errorf("%w: term must be at least one month, got %d", common.ErrInvalidInput, t.TermMonths)
	}
	if t.AnnualRatePct.IsNegative() {
		return fmt.Errorf("%w: annual rate cannot be negative, got %s", common.ErrInvalidInput, t.AnnualRatePct)
	}
	if t.StartDate.IsZero() {
		return fmt.Errorf("%w: missing first payment date", common.ErrInvalidInput)
	}
	return nil
}

// DueDate returns the date of installment number n (1-based).
func (t Terms) DueDate(n int) time.Time {
	return AddMonths(t.StartDate, n-1)
}

// AddMonths moves a date forward by whole calendar months, clamping the day
// to the last day of a shorter month. Jan 31 plus one month is Feb 28 (or 29)
// and plus two months is Mar 31.
func AddMonths(start time.Time, months int) time.Time {
	y, m, d := start.Date()
	lastDay := time.Date(y, m+time.Month(months)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(y, m+time.Month(months), d, 0, 0, 0, 0, time.UTC)
}

// Summary holds the totals of a schedule.
type Summary struct {
	TotalPayment   decimal.Decimal
	TotalInterest  decimal.Decimal
	TotalPrincipal decimal.Decimal
	Installments   int
}

// Summarize totals a schedule.
func Summarize(schedule []model.Installment) Summary {
	s := Summary{
		TotalPayment:   decimal.Zero,
		TotalInterest:  decimal.Zero,
		TotalPrincipal: decimal.Zero,
		Installments:   len(schedule),
	}
	for _, inst := range schedule {
		s.TotalPayment = s.TotalPayment.Add(inst.TotalPayment)
		s.TotalInterest = s.TotalInterest.Add(inst.Interest)
		s.TotalPrincipal = s.TotalPrincipal.Add(inst.PrincipalPortion)
	}
	return s
}
