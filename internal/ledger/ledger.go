// Package ledger keeps account balances consistent with the transactions
// that reference them.
//
// For every account, Balance equals OpeningBalance plus the signed sum of the
// transactions applied to it. Apply and Revert are exact inverses; edits are
// a revert of the old transaction followed by an apply of the new one.
package ledger

import (
	"slices"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// Apply adds the signed amount of tx to account.
// A transaction that does not reference the account leaves it unchanged.
func Apply(account model.Account, tx model.Transaction) (model.Account, model.Status) {
	return shift(account, tx, tx.SignedAmount())
}

// Revert removes the signed amount of tx from account.
func Revert(account model.Account, tx model.Transaction) (model.Account, model.Status) {
	return shift(account, tx, tx.SignedAmount().Neg())
}

func shift(account model.Account, tx model.Transaction, delta decimal.Decimal) (model.Account, model.Status) {
	if tx.AccountID == "" || tx.AccountID != account.ID {
		return account, model.StatusSkippedNoTarget
	}
	account.Balance = account.Balance.Add(delta)
	return account, model.StatusApplied
}

// ApplyIn applies tx to the account it references within accounts.
// The returned slice is a copy; the input is never modified.
func ApplyIn(accounts []model.Account, tx model.Transaction) ([]model.Account, model.Status) {
	return in(accounts, tx, Apply)
}

// RevertIn reverts tx from the account it references within accounts.
func RevertIn(accounts []model.Account, tx model.Transaction) ([]model.Account, model.Status) {
	return in(accounts, tx, Revert)
}

func in(accounts []model.Account, tx model.Transaction, op func(model.Account, model.Transaction) (model.Account, model.Status)) ([]model.Account, model.Status) {
	out := slices.Clone(accounts)
	i := slices.IndexFunc(out, func(a model.Account) bool { return a.ID == tx.AccountID })
	if tx.AccountID == "" || i < 0 {
		return out, model.StatusSkippedNoTarget
	}
	var status model.Status
	out[i], status = op(out[i], tx)
	return out, status
}

// EditResult reports what happened to each side of an edit.
type EditResult struct {
	Reverted model.Status
	Applied  model.Status
}

// EditIn replaces oldTx with newTx: the old transaction is reverted from its
// own account and the new one is applied to its account, which may differ.
func EditIn(accounts []model.Account, oldTx, newTx model.Transaction) ([]model.Account, EditResult) {
	var result EditResult
	accounts, result.Reverted = RevertIn(accounts, oldTx)
	accounts, result.Applied = ApplyIn(accounts, newTx)
	return accounts, result
}

// Reconciliation compares an account balance with its transaction history.
type Reconciliation struct {
	Expected     decimal.Decimal
	Actual       decimal.Decimal
	Difference   decimal.Decimal
	AccountID    string
	Transactions int
	Balanced     bool
}

// Verify recomputes the balance of account from its opening balance and the
// transactions that reference it.
func Verify(account model.Account, transactions []model.Transaction) Reconciliation {
	expected := account.OpeningBalance
	count := 0
	for _, tx := range transactions {
		if tx.AccountID != account.ID {
			continue
		}
		expected = expected.Add(tx.SignedAmount())
		count++
	}

	diff := account.Balance.Sub(expected)
	return Reconciliation{
		AccountID:    account.ID,
		Expected:     expected,
		Actual:       account.Balance,
		Difference:   diff,
		Transactions: count,
		Balanced:     diff.IsZero(),
	}
}

// VerifyAll reconciles every account in accounts.
func VerifyAll(accounts []model.Account, transactions []model.Transaction) []Reconciliation {
	out := make([]Reconciliation, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, Verify(a, transactions))
	}
	return out
}
