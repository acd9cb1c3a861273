package ofx

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DIRECTDEP
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>2500.00
<FITID>2024013101
<NAME>ACME PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>FEE
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>-3.00
<FITID>2024013102
<NAME>MONTHLY SERVICE FEE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{name: "valid bank statement", ofxData: sampleBankOFX, expectedCount: 5},
		{name: "valid credit card statement", ofxData: sampleCreditCardOFX, expectedCount: 2},
		{name: "invalid OFX data", ofxData: "not valid OFX", expectedError: true},
		{name: "empty OFX", ofxData: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()
			transactions, err := parser.ParseFile(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Len(t, transactions, tt.expectedCount)
			for _, tx := range transactions {
				assert.NoError(t, tx.Validate(), "transaction %s", tx.ID)
			}
		})
	}
}

func TestParseBankTransactions(t *testing.T) {
	transactions, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, transactions, 5)

	coffee := transactions[0]
	assert.Equal(t, "2024011501", coffee.ID)
	assert.Equal(t, model.KindExpense, coffee.Kind)
	assert.Equal(t, "25.5", coffee.Amount.String())
	assert.Equal(t, model.NewDate(2024, time.January, 15), coffee.Date)
	assert.Equal(t, "STARBUCKS STORE #1234", coffee.Note)
	assert.Equal(t, "1234567890", coffee.AccountID)

	check := transactions[2]
	assert.Equal(t, "CHECK #1234 (check 1234)", check.Note)
	assert.Equal(t, "500", check.Amount.String())

	salary := transactions[3]
	assert.Equal(t, model.KindIncome, salary.Kind)
	assert.Equal(t, "2500", salary.Amount.String())
	assert.Equal(t, "ACME PAYROLL", salary.Note)

	fee := transactions[4]
	assert.Equal(t, "Bank Fees", fee.Category)
	assert.Equal(t, "3", fee.Amount.String())
}

func TestDerivedIDsAreStable(t *testing.T) {
	p := NewParser()
	raw := ofxgo.Transaction{
		TrnType:  ofxgo.TrnTypeDebit,
		DtPosted: ofxgo.Date{Time: time.Date(2024, time.March, 2, 12, 0, 0, 0, time.UTC)},
		Name:     "CORNER STORE",
	}
	raw.TrnAmt.SetFrac64(-1250, 100)

	first, ok := p.convertTransaction(raw, "acct-1")
	require.True(t, ok)
	second, _ := p.convertTransaction(raw, "acct-1")
	other, _ := p.convertTransaction(raw, "acct-2")

	assert.NotEmpty(t, first.ID)
	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Equal(t, "12.5", first.Amount.String())

	var zero ofxgo.Transaction
	zero.DtPosted = raw.DtPosted
	_, ok = p.convertTransaction(zero, "acct-1")
	assert.False(t, ok, "zero amounts are skipped")
}

func TestParseStatements(t *testing.T) {
	stmts, err := NewParser().ParseStatements(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	s := stmts[0]
	assert.Equal(t, StatementCreditCard, s.Kind)
	assert.Equal(t, "4111111111111111", s.AccountNumber)
	assert.Equal(t, "-500", s.Balance.String())
	require.Len(t, s.Transactions, 2)
	assert.Equal(t, "CC2024011001", s.Transactions[0].ID)
	assert.Equal(t, "45.99", s.Transactions[0].Amount.String())
	assert.Equal(t, "NETFLIX.COM", s.Transactions[1].Note)
}

func TestParseCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().ParseFile(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPreprocessOFX(t *testing.T) {
	p := NewParser()
	in := "\n\n<SEVERITY>Info</SEVERITY>\n<BANKACCTFROM\n"
	out := p.preprocessOFX(in)

	assert.True(t, strings.HasPrefix(out, "<SEVERITY>INFO</SEVERITY>"))
	assert.Contains(t, out, "<BANKACCTFROM>")
}

func TestExtractDescription(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		tx       ofxgo.Transaction
	}{
		{name: "remove POS prefix", tx: ofxgo.Transaction{Name: "POS PURCHASE WALMART"}, expected: "WALMART"},
		{name: "remove DEBIT CARD prefix", tx: ofxgo.Transaction{Name: "DEBIT CARD PURCHASE TARGET"}, expected: "TARGET"},
		{name: "strip date stamp", tx: ofxgo.Transaction{Name: "01/15 SHELL OIL"}, expected: "SHELL OIL"},
		{name: "keep clean name", tx: ofxgo.Transaction{Name: "Whole Foods Market"}, expected: "Whole Foods Market"},
		{name: "trim whitespace", tx: ofxgo.Transaction{Name: "  AMAZON  "}, expected: "AMAZON"},
		{name: "memo replaces generic name", tx: ofxgo.Transaction{Name: "DEBIT", Memo: "City Water Dept"}, expected: "City Water Dept"},
		{name: "payee wins", tx: ofxgo.Transaction{Name: "SQ *CAFE", Payee: &ofxgo.Payee{Name: "Corner Cafe"}}, expected: "Corner Cafe"},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.extractDescription(tt.tx))
		})
	}
}
