package ledger

import (
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func account(id, balance string) model.Account {
	return model.Account{ID: id, Name: id, Kind: model.AccountBank, OpeningBalance: dec(balance), Balance: dec(balance)}
}

func tx(id string, kind model.TransactionKind, amount, accountID string) model.Transaction {
	return model.Transaction{
		ID: id, Kind: kind, Amount: dec(amount), AccountID: accountID,
		Date: model.NewDate(2025, time.March, 1), BudgetClass: model.ClassNeed,
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		tx          model.Transaction
		name        string
		wantBalance string
		wantStatus  model.Status
	}{
		{name: "income credits", tx: tx("t1", model.KindIncome, "250.50", "a1"), wantBalance: "1250.50", wantStatus: model.StatusApplied},
		{name: "expense debits", tx: tx("t2", model.KindExpense, "99.99", "a1"), wantBalance: "900.01", wantStatus: model.StatusApplied},
		{name: "missing account is skipped", tx: tx("t3", model.KindExpense, "10", ""), wantBalance: "1000.00", wantStatus: model.StatusSkippedNoTarget},
		{name: "other account is skipped", tx: tx("t4", model.KindIncome, "10", "a2"), wantBalance: "1000.00", wantStatus: model.StatusSkippedNoTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, status := Apply(account("a1", "1000"), tt.tx)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBalance, got.Balance.StringFixed(2))
		})
	}
}

func TestApplyRevertRoundTrip(t *testing.T) {
	start := account("a1", "1000")
	txs := []model.Transaction{
		tx("t1", model.KindIncome, "0.01", "a1"),
		tx("t2", model.KindExpense, "1234.56", "a1"),
		tx("t3", model.KindIncome, "3000", "a1"),
	}

	for _, tr := range txs {
		applied, status := Apply(start, tr)
		require.Equal(t, model.StatusApplied, status)
		reverted, status := Revert(applied, tr)
		require.Equal(t, model.StatusApplied, status)
		assert.True(t, reverted.Balance.Equal(start.Balance), tr.ID)
	}
}

func TestApplyIn_DoesNotMutateInput(t *testing.T) {
	accounts := []model.Account{account("a1", "100"), account("a2", "200")}

	got, status := ApplyIn(accounts, tx("t1", model.KindExpense, "50", "a2"))
	assert.Equal(t, model.StatusApplied, status)
	assert.Equal(t, "150.00", got[1].Balance.StringFixed(2))
	assert.Equal(t, "200.00", accounts[1].Balance.StringFixed(2))

	got, status = RevertIn(accounts, tx("t2", model.KindExpense, "50", "missing"))
	assert.Equal(t, model.StatusSkippedNoTarget, status)
	assert.Equal(t, accounts, got)
}

func TestEditIn(t *testing.T) {
	accounts := []model.Account{account("a1", "1000"), account("a2", "500")}
	oldTx := tx("t1", model.KindExpense, "100", "a1")

	accounts, status := ApplyIn(accounts, oldTx)
	require.Equal(t, model.StatusApplied, status)

	tests := []struct {
		newTx model.Transaction
		want  map[string]string
		name  string
		res   EditResult
	}{
		{
			name:  "same account new amount",
			newTx: tx("t1", model.KindExpense, "40", "a1"),
			want:  map[string]string{"a1": "960.00", "a2": "500.00"},
			res:   EditResult{Reverted: model.StatusApplied, Applied: model.StatusApplied},
		},
		{
			name:  "moved to another account",
			newTx: tx("t1", model.KindExpense, "100", "a2"),
			want:  map[string]string{"a1": "1000.00", "a2": "400.00"},
			res:   EditResult{Reverted: model.StatusApplied, Applied: model.StatusApplied},
		},
		{
			name:  "turned into income",
			newTx: tx("t1", model.KindIncome, "100", "a1"),
			want:  map[string]string{"a1": "1100.00", "a2": "500.00"},
			res:   EditResult{Reverted: model.StatusApplied, Applied: model.StatusApplied},
		},
		{
			name:  "account removed",
			newTx: tx("t1", model.KindExpense, "100", ""),
			want:  map[string]string{"a1": "1000.00", "a2": "500.00"},
			res:   EditResult{Reverted: model.StatusApplied, Applied: model.StatusSkippedNoTarget},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, res := EditIn(accounts, oldTx, tt.newTx)
			assert.Equal(t, tt.res, res)
			balances := map[string]string{}
			for _, a := range got {
				balances[a.ID] = a.Balance.StringFixed(2)
			}
			assert.Equal(t, tt.want, balances)
		})
	}
}

func TestVerify(t *testing.T) {
	txs := []model.Transaction{
		tx("t1", model.KindIncome, "500", "a1"),
		tx("t2", model.KindExpense, "120.25", "a1"),
		tx("t3", model.KindExpense, "99", "a2"),
	}

	acct := account("a1", "1000")
	for _, tr := range txs {
		acct, _ = Apply(acct, tr)
	}

	rec := Verify(acct, txs)
	assert.True(t, rec.Balanced)
	assert.Equal(t, 2, rec.Transactions)
	assert.Equal(t, "1379.75", rec.Expected.StringFixed(2))

	acct.Balance = acct.Balance.Add(dec("5"))
	rec = Verify(acct, txs)
	assert.False(t, rec.Balanced)
	assert.Equal(t, "5.00", rec.Difference.StringFixed(2))

	all := VerifyAll([]model.Account{account("a2", "99")}, txs)
	require.Len(t, all, 1)
	assert.False(t, all[0].Balanced)
	assert.Equal(t, "0.00", all[0].Expected.StringFixed(2))
}
