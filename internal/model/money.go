package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places kept for money.
const CurrencyPlaces = 2

// Cents rounds an amount half-up to currency precision.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// ParseAmount parses a user supplied money amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted and the
// result is rounded to cents. Negative values are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", common.ErrInvalidInput)
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", common.ErrInvalidInput, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: amount cannot be negative", common.ErrInvalidInput)
	}
	return Cents(d), nil
}

// DateLayout is the calendar date format used for input and export.
const DateLayout = "2006-01-02"

// NewDate returns the UTC midnight for the given calendar day.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", common.ErrInvalidInput, s)
	}
	return t, nil
}

// TruncateDay strips the clock from t, keeping the calendar day in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}
