package amortization

import (
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// FrenchPlan is a constant-payment loan: each installment pays the same
// amount and the interest share shrinks as the balance falls.
type FrenchPlan struct{}

// PeriodRate returns annualRatePct / 100 / 12.
func (FrenchPlan) PeriodRate(annualRatePct decimal.Decimal) decimal.Decimal {
	return percentToRate(annualRatePct, monthsInYear)
}

// Schedule implements Plan.
func (p FrenchPlan) Schedule(terms Terms) []model.Installment {
	return levelPayments(terms, p.PeriodRate(terms.AnnualRatePct))
}

// AmericanPlan pays interest only and returns the principal with the last installment.
type AmericanPlan struct{}

// PeriodRate returns annualRatePct / 100 / 12.
func (AmericanPlan) PeriodRate(annualRatePct decimal.Decimal) decimal.Decimal {
	return percentToRate(annualRatePct, monthsInYear)
}

// Schedule implements Plan.
func (p AmericanPlan) Schedule(terms Terms) []model.Installment {
	rate := p.PeriodRate(terms.AnnualRatePct)
	interest := model.Cents(terms.Principal.Mul(rate))

	schedule := make([]model.Installment, 0, terms.TermMonths)
	for n := 1; n <= terms.TermMonths; n++ {
		inst := model.Installment{
			Number:           n,
			Date:             terms.DueDate(n),
			Interest:         interest,
			PrincipalPortion: decimal.Zero,
			TotalPayment:     interest,
			RemainingBalance: terms.Principal,
		}
		if n == terms.TermMonths {
			inst.PrincipalPortion = terms.Principal
			inst.TotalPayment = terms.Principal.Add(interest)
			inst.RemainingBalance = decimal.Zero
		}
		schedule = append(schedule, inst)
	}
	return schedule
}

// DailyCompoundPlan amortizes like FrenchPlan using the monthly rate produced
// by compounding the daily rate over 30 days.
type DailyCompoundPlan struct{}

// PeriodRate returns (1 + annualRatePct/100/365)^30 − 1.
func (DailyCompoundPlan) PeriodRate(annualRatePct decimal.Decimal) decimal.Decimal {
	daily := percentToRate(annualRatePct, daysInYear)
	return pow(one.Add(daily), 30).Sub(one)
}

// Schedule implements Plan.
func (p DailyCompoundPlan) Schedule(terms Terms) []model.Installment {
	return levelPayments(terms, p.PeriodRate(terms.AnnualRatePct))
}

// levelPayments builds a constant-payment schedule at the given period rate.
// The final installment retires whatever balance remains so it ends at zero.
func levelPayments(terms Terms, rate decimal.Decimal) []model.Installment {
	n := terms.TermMonths

	var payment decimal.Decimal
	if rate.IsZero() {
		payment = model.Cents(terms.Principal.DivRound(decimal.NewFromInt(int64(n)), RatePrecision))
	} else {
		payment = model.Cents(annuityPayment(terms.Principal, rate, n))
	}

	balance := terms.Principal
	schedule := make([]model.Installment, 0, n)
	for i := 1; i <= n; i++ {
		interest := model.Cents(balance.Mul(rate))
		principal := payment.Sub(interest)
		total := payment
		if i == n || principal.GreaterThan(balance) {
			principal = balance
			total = principal.Add(interest)
		}
		balance = balance.Sub(principal)

		schedule = append(schedule, model.Installment{
			Number:           i,
			Date:             terms.DueDate(i),
			Interest:         interest,
			PrincipalPortion: principal,
			TotalPayment:     total,
			RemainingBalance: balance,
		})
	}
	return schedule
}
