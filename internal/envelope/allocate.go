// Package envelope distributes income across budget envelopes and debits
// expenses from them.
//
// Fixed envelopes are filled first, highest priority first, up to their limit.
// Whatever remains is split among variable envelopes with the configured method.
// The functions never modify the slice they are given.
package envelope

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// Method selects how leftover income is split among variable envelopes.
type Method string

const (
	// MethodPriority splits evenly, visiting envelopes in priority order.
	MethodPriority Method = "priority"
	// MethodEqual splits evenly.
	MethodEqual Method = "equal"
	// MethodProportional splits by each envelope's limit, treating a zero limit as 1.
	MethodProportional Method = "proportional"
)

// ParseMethod converts configuration or flag input into a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodPriority, MethodEqual, MethodProportional:
		return m, nil
	case "":
		return MethodPriority, nil
	}
	return "", fmt.Errorf("%w: unknown distribution method %q", common.ErrInvalidInput, s)
}

// Credit records how much one envelope received.
type Credit struct {
	Amount     decimal.Decimal
	EnvelopeID string
	Code       string
}

// Allocation is the result of distributing an income amount.
type Allocation struct {
	Leftover  decimal.Decimal
	Envelopes []model.Envelope
	Given     []Credit
}

// Allocated returns the part of the amount placed into envelopes.
func (a Allocation) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, c := range a.Given {
		total = total.Add(c.Amount)
	}
	return total
}

// AllocateIncome distributes amount across envelopes.
//
// The sum of every envelope's balance change plus Leftover always equals amount.
func AllocateIncome(amount decimal.Decimal, envelopes []model.Envelope, method Method) (Allocation, error) {
	if amount.IsNegative() {
		return Allocation{}, fmt.Errorf("%w: cannot allocate negative amount %s", common.ErrInvalidInput, amount.StringFixed(2))
	}

	out := slices.Clone(envelopes)
	result := Allocation{Envelopes: out, Leftover: decimal.Zero}
	if amount.IsZero() {
		return result, nil
	}

	var fixed, variable []int
	for i, e := range out {
		switch {
		case e.IsFixed() && !e.IsFull():
			fixed = append(fixed, i)
		case e.IsVariable():
			variable = append(variable, i)
		}
	}
	byPriority := func(a, b int) int { return out[a].PriorityRank() - out[b].PriorityRank() }
	slices.SortStableFunc(fixed, byPriority)
	slices.SortStableFunc(variable, byPriority)

	remaining := amount
	credit := func(i int, give decimal.Decimal) {
		out[i].Balance = out[i].Balance.Add(give)
		result.Given = append(result.Given, Credit{EnvelopeID: out[i].ID, Code: out[i].Code, Amount: give})
		remaining = remaining.Sub(give)
	}

	for _, i := range fixed {
		if !remaining.IsPositive() {
			break
		}
		credit(i, decimal.Min(out[i].Need(), remaining))
	}

	if remaining.IsPositive() && len(variable) > 0 {
		shares := split(remaining, weights(out, variable, method))
		for k, i := range variable {
			if shares[k].IsZero() {
				continue
			}
			credit(i, shares[k])
		}
	}

	result.Leftover = remaining
	return result, nil
}

// weights returns the split weight of each variable envelope.
// Unknown methods fall back to an even split.
func weights(envelopes []model.Envelope, idx []int, method Method) []decimal.Decimal {
	w := make([]decimal.Decimal, len(idx))
	for k, i := range idx {
		w[k] = decimal.NewFromInt(1)
		if method == MethodProportional && envelopes[i].Limit.IsPositive() {
			w[k] = envelopes[i].Limit
		}
	}
	return w
}

// split divides amount by weight. Every share but the last is truncated to
// cents and the last share receives the remainder, so the shares sum to amount.
func split(amount decimal.Decimal, w []decimal.Decimal) []decimal.Decimal {
	total := decimal.Sum(decimal.Zero, w...)
	shares := make([]decimal.Decimal, len(w))
	given := decimal.Zero
	for k := range w {
		if k == len(w)-1 {
			shares[k] = amount.Sub(given)
			break
		}
		shares[k] = amount.Mul(w[k]).DivRound(total, 18).Truncate(model.CurrencyPlaces)
		given = given.Add(shares[k])
	}
	return shares
}
