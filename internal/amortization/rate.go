package amortization

import "github.com/shopspring/decimal"

// RatePrecision is the number of decimal places rates are carried at.
const RatePrecision = 18

var (
	one          = decimal.NewFromInt(1)
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
	daysInYear   = decimal.NewFromInt(365)
)

// percentToRate turns an annual percentage into a per-period fraction.
func percentToRate(annualRatePct, periods decimal.Decimal) decimal.Decimal {
	return annualRatePct.DivRound(hundred, RatePrecision).DivRound(periods, RatePrecision)
}

// pow raises base to a non-negative integer exponent by square-and-multiply,
// rounding every product to RatePrecision.
func pow(base decimal.Decimal, exp int) decimal.Decimal {
	result := one
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base).Round(RatePrecision)
		}
		base = base.Mul(base).Round(RatePrecision)
		exp >>= 1
	}
	return result
}

// annuityPayment returns principal·r / (1 − (1+r)^−n), unrounded.
func annuityPayment(principal, rate decimal.Decimal, n int) decimal.Decimal {
	growth := pow(one.Add(rate), n)
	discount := one.DivRound(growth, RatePrecision)
	return principal.Mul(rate).DivRound(one.Sub(discount), RatePrecision)
}
