package model

import (
	"fmt"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EnvelopeKind distinguishes capped envelopes from open-ended ones.
type EnvelopeKind string

const (
	// EnvelopeFixed has a limit it is filled up to.
	EnvelopeFixed EnvelopeKind = "fixed"
	// EnvelopeVariable receives whatever is left after fixed envelopes are full.
	EnvelopeVariable EnvelopeKind = "variable"
)

// Priority controls the order envelopes are funded in.
type Priority string

// Priority constants.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the funding order of a priority; undefined priorities rank as low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// ParsePriority converts user input into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", common.ErrInvalidInput, s)
}

// Envelope is a named budget bucket holding allocated-but-unspent money.
type Envelope struct {
	Limit                decimal.Decimal `json:"limit"`
	Balance              decimal.Decimal `json:"balance"`
	Spent                decimal.Decimal `json:"spent"`
	ID                   string          `json:"id"`
	Code                 string          `json:"code"`
	Name                 string          `json:"name"`
	Kind                 EnvelopeKind    `json:"kind"`
	Priority             Priority        `json:"priority,omitempty"`
	DistributionCategory BudgetClass     `json:"distributionCategory,omitempty"`
	LinkedCategory       string          `json:"linkedCategory,omitempty"`
	PaymentDay           int             `json:"paymentDay,omitempty"`
}

// NewEnvelope creates an empty envelope with a fresh id.
func NewEnvelope(code, name string, kind EnvelopeKind, limit decimal.Decimal) Envelope {
	return Envelope{
		ID:      uuid.NewString(),
		Code:    code,
		Name:    name,
		Kind:    kind,
		Limit:   Cents(limit),
		Balance: decimal.Zero,
		Spent:   decimal.Zero,
	}
}

// PriorityRank returns the funding order of the envelope.
func (e Envelope) PriorityRank() int {
	return e.Priority.Rank()
}

// IsFixed reports whether the envelope has a cap.
func (e Envelope) IsFixed() bool {
	return e.Kind == EnvelopeFixed
}

// IsVariable reports whether the envelope is open-ended.
func (e Envelope) IsVariable() bool {
	return e.Kind == EnvelopeVariable
}

// IsFull reports whether a fixed envelope reached its limit.
func (e Envelope) IsFull() bool {
	return e.IsFixed() && e.Balance.GreaterThanOrEqual(e.Limit)
}

// IsDepleted reports whether a variable envelope has nothing left.
func (e Envelope) IsDepleted() bool {
	return e.IsVariable() && !e.Balance.IsPositive()
}

// Need returns how much a fixed envelope is missing to reach its limit.
func (e Envelope) Need() decimal.Decimal {
	if !e.IsFixed() || e.IsFull() {
		return decimal.Zero
	}
	return e.Limit.Sub(e.Balance)
}

// Status returns a short human readable state.
func (e Envelope) Status() string {
	switch {
	case e.IsFull():
		return "full"
	case e.IsDepleted():
		return "depleted"
	case e.IsFixed():
		return "filling"
	default:
		return "available"
	}
}

// Validate checks the envelope for obviously broken values.
func (e Envelope) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: envelope name is required", common.ErrInvalidInput)
	}
	switch e.Kind {
	case EnvelopeFixed, EnvelopeVariable:
	default:
		return fmt.Errorf("%w: unknown envelope kind %q", common.ErrInvalidInput, e.Kind)
	}
	if e.Limit.IsNegative() {
		return fmt.Errorf("%w: limit cannot be negative", common.ErrInvalidInput)
	}
	if e.PaymentDay != 0 {
		if !e.IsFixed() {
			return fmt.Errorf("%w: payment day only applies to fixed envelopes", common.ErrInvalidInput)
		}
		if e.PaymentDay < 1 || e.PaymentDay > 31 {
			return fmt.Errorf("%w: payment day must be between 1 and 31", common.ErrInvalidInput)
		}
	}
	if e.DistributionCategory != "" && !e.DistributionCategory.Valid() {
		return fmt.Errorf("%w: unknown distribution category %q", common.ErrInvalidInput, e.DistributionCategory)
	}
	return nil
}

// NextEnvelopeCode returns the first unused display code of the form E01, E02, ...
// Codes are never reused once assigned, so existing codes are skipped.
func NextEnvelopeCode(existing []Envelope) string {
	used := make(map[string]bool, len(existing))
	for _, e := range existing {
		used[e.Code] = true
	}
	for i := 1; ; i++ {
		code := fmt.Sprintf("E%02d", i)
		if !used[code] {
			return code
		}
	}
}
