// Package ofx converts OFX/QFX bank and credit-card statements into transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// StatementKind distinguishes bank statements from credit-card statements.
type StatementKind string

// Statement kinds.
const (
	StatementBank       StatementKind = "bank"
	StatementCreditCard StatementKind = "credit_card"
)

// Statement is one account's section of an OFX file.
type Statement struct {
	BalanceAsOf   time.Time
	Balance       decimal.Decimal
	AccountNumber string
	Kind          StatementKind
	Transactions  []model.Transaction
}

// fitidNamespace seeds ids for transactions that arrive without a FITID.
var fitidNamespace = uuid.MustParse("0b8a3d5e-6f1c-4e0a-9f7d-2c4b1a9e8d70")

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags missing their closing bracket at end of line.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	// Leading MM/DD date stamps some banks prepend to descriptions.
	datePrefixRegex = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
)

var purchasePrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"ACH CREDIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericDescriptions = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"DEPOSIT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file and returns the transactions of every
// statement in it. AccountID carries the statement's account number.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	stmts, err := p.ParseStatements(ctx, reader)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	for _, s := range stmts {
		transactions = append(transactions, s.Transactions...)
	}
	return transactions, nil
}

// ParseStatements parses an OFX/QFX file into per-account statements.
func (p *Parser) ParseStatements(ctx context.Context, reader io.Reader) ([]Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse OFX file: %v", common.ErrInvalidInput, err)
	}

	var stmts []Statement

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		s := Statement{
			Kind:          StatementBank,
			AccountNumber: string(stmt.BankAcctFrom.AcctID),
			Balance:       toDecimal(stmt.BalAmt),
			BalanceAsOf:   stmt.DtAsOf.Time,
		}
		if stmt.BankTranList != nil {
			s.Transactions = p.convertAll(stmt.BankTranList.Transactions, s.AccountNumber)
		}
		stmts = append(stmts, s)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		s := Statement{
			Kind:          StatementCreditCard,
			AccountNumber: string(stmt.CCAcctFrom.AcctID),
			Balance:       toDecimal(stmt.BalAmt),
			BalanceAsOf:   stmt.DtAsOf.Time,
		}
		if stmt.BankTranList != nil {
			s.Transactions = p.convertAll(stmt.BankTranList.Transactions, s.AccountNumber)
		}
		stmts = append(stmts, s)
	}

	total := 0
	for _, s := range stmts {
		total += len(s.Transactions)
	}
	slog.Info("Parsed OFX file",
		"statements", len(stmts),
		"total_transactions", total)

	return stmts, nil
}

func (p *Parser) convertAll(in []ofxgo.Transaction, accountNumber string) []model.Transaction {
	out := make([]model.Transaction, 0, len(in))
	for _, ofxTx := range in {
		tx, ok := p.convertTransaction(ofxTx, accountNumber)
		if !ok {
			slog.Debug("Skipping zero-amount OFX transaction", "fitid", ofxTx.FiTID)
			continue
		}
		out = append(out, tx)
	}
	return out
}

func toDecimal(a ofxgo.Amount) decimal.Decimal {
	d, err := decimal.NewFromString(a.Rat.FloatString(4))
	if err != nil {
		return decimal.Zero
	}
	return model.Cents(d)
}

// convertTransaction maps an OFX transaction to a ledger transaction.
// Credits become income and debits become expenses with a positive amount.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountNumber string) (model.Transaction, bool) {
	amount := toDecimal(ofxTx.TrnAmt)
	if amount.IsZero() {
		return model.Transaction{}, false
	}

	kind := model.KindIncome
	if amount.IsNegative() {
		kind = model.KindExpense
		amount = amount.Neg()
	}

	date := model.TruncateDay(ofxTx.DtPosted.Time)
	note := p.extractDescription(ofxTx)

	id := string(ofxTx.FiTID)
	if id == "" {
		key := strings.Join([]string{accountNumber, date.Format(model.DateLayout), amount.String(), note}, "|")
		id = uuid.NewSHA1(fitidNamespace, []byte(key)).String()
	}

	tx := model.Transaction{
		ID:        id,
		Kind:      kind,
		Amount:    amount,
		Date:      date,
		Note:      note,
		AccountID: accountNumber,
		Category:  categoryFor(ofxTx.TrnType),
	}
	if ofxTx.CheckNum != "" {
		tx.Note = strings.TrimSpace(fmt.Sprintf("%s (check %s)", tx.Note, ofxTx.CheckNum))
	}
	return tx, true
}

func categoryFor(t fmt.Stringer) string {
	switch t {
	case ofxgo.TrnTypeInt, ofxgo.TrnTypeDiv:
		return "Interest"
	case ofxgo.TrnTypeFee, ofxgo.TrnTypeSrvChg:
		return "Bank Fees"
	case ofxgo.TrnTypeATM, ofxgo.TrnTypeCash:
		return "Cash"
	}
	return ""
}

// extractDescription picks the cleanest description available.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (name == "" || genericDescriptions[strings.ToUpper(name)]) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range purchasePrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(datePrefixRegex.ReplaceAllString(name, ""))
}
