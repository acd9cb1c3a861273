package model

import "slices"

// Book holds the complete financial state of a household.
// It is also the shape of a backup file.
type Book struct {
	Accounts     []Account     `json:"accounts"`
	Envelopes    []Envelope    `json:"envelopes"`
	Loans        []Loan        `json:"loans"`
	Transactions []Transaction `json:"transactions"`
}

// Clone returns a deep copy so callers never share slices.
func (b Book) Clone() Book {
	loans := make([]Loan, len(b.Loans))
	for i, l := range b.Loans {
		l.Schedule = slices.Clone(l.Schedule)
		l.PaidInstallments = slices.Clone(l.PaidInstallments)
		loans[i] = l
	}
	return Book{
		Accounts:     cloneOrEmpty(b.Accounts),
		Envelopes:    cloneOrEmpty(b.Envelopes),
		Loans:        loans,
		Transactions: cloneOrEmpty(b.Transactions),
	}
}

func cloneOrEmpty[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// AccountIndex returns the position of the account with the given id, or -1.
func (b Book) AccountIndex(id string) int {
	return slices.IndexFunc(b.Accounts, func(a Account) bool { return a.ID == id })
}

// EnvelopeIndex returns the position of the envelope with the given id, or -1.
func (b Book) EnvelopeIndex(id string) int {
	return slices.IndexFunc(b.Envelopes, func(e Envelope) bool { return e.ID == id })
}

// TransactionIndex returns the position of the transaction with the given id, or -1.
func (b Book) TransactionIndex(id string) int {
	return slices.IndexFunc(b.Transactions, func(t Transaction) bool { return t.ID == id })
}

// LoanIndex returns the position of the loan with the given id, or -1.
func (b Book) LoanIndex(id string) int {
	return slices.IndexFunc(b.Loans, func(l Loan) bool { return l.ID == id })
}

// FindAccount looks up an account by id or, failing that, by name.
func (b Book) FindAccount(ref string) (Account, bool) {
	for _, a := range b.Accounts {
		if a.ID == ref || a.Name == ref {
			return a, true
		}
	}
	return Account{}, false
}

// FindEnvelope looks up an envelope by id, code or name.
func (b Book) FindEnvelope(ref string) (Envelope, bool) {
	for _, e := range b.Envelopes {
		if e.ID == ref || e.Code == ref || e.Name == ref {
			return e, true
		}
	}
	return Envelope{}, false
}

// FindLoan looks up a loan by id or name.
func (b Book) FindLoan(ref string) (Loan, bool) {
	for _, l := range b.Loans {
		if l.ID == ref || l.Name == ref {
			return l, true
		}
	}
	return Loan{}, false
}

// FindTransaction looks up a transaction by id.
func (b Book) FindTransaction(id string) (Transaction, bool) {
	if i := b.TransactionIndex(id); i >= 0 {
		return b.Transactions[i], true
	}
	return Transaction{}, false
}
