package envelope

import (
	"fmt"
	"slices"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// Target names the envelope an expense is charged to.
// EnvelopeID wins when set; otherwise the first envelope whose
// LinkedCategory equals Category is used.
type Target struct {
	EnvelopeID string
	Category   string
}

// TargetFor returns the debit target of a transaction.
func TargetFor(tx model.Transaction) Target {
	return Target{EnvelopeID: tx.EnvelopeID, Category: tx.Category}
}

// Debit is the result of charging or restoring an envelope.
type Debit struct {
	Status     model.Status
	EnvelopeID string
	Envelopes  []model.Envelope
}

// Resolve returns the index of the envelope target points to, or -1.
func Resolve(envelopes []model.Envelope, target Target) int {
	if target.EnvelopeID != "" {
		return slices.IndexFunc(envelopes, func(e model.Envelope) bool { return e.ID == target.EnvelopeID })
	}
	if target.Category == "" {
		return -1
	}
	return slices.IndexFunc(envelopes, func(e model.Envelope) bool { return e.LinkedCategory == target.Category })
}

// DebitEnvelope charges amount to the target envelope, lowering its balance
// and raising its spent total. A target that matches nothing is reported as
// StatusSkippedNoTarget with the envelopes unchanged.
func DebitEnvelope(envelopes []model.Envelope, target Target, amount decimal.Decimal) (Debit, error) {
	return adjust(envelopes, target, amount, amount.Neg())
}

// RestoreEnvelope undoes a previous DebitEnvelope of the same amount.
func RestoreEnvelope(envelopes []model.Envelope, target Target, amount decimal.Decimal) (Debit, error) {
	return adjust(envelopes, target, amount, amount)
}

func adjust(envelopes []model.Envelope, target Target, amount, balanceDelta decimal.Decimal) (Debit, error) {
	if !amount.IsPositive() {
		return Debit{}, fmt.Errorf("%w: envelope amount must be positive, got %s", common.ErrInvalidInput, amount.StringFixed(2))
	}

	out := slices.Clone(envelopes)
	i := Resolve(out, target)
	if i < 0 {
		return Debit{Envelopes: out, Status: model.StatusSkippedNoTarget}, nil
	}

	out[i].Balance = out[i].Balance.Add(balanceDelta)
	out[i].Spent = out[i].Spent.Sub(balanceDelta)
	return Debit{Envelopes: out, Status: model.StatusApplied, EnvelopeID: out[i].ID}, nil
}
