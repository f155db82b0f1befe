// Package ofx parses OFX/QFX bank statement files into statement entries.
// Some banks only offer OFX downloads where the daily CSV export is missing;
// the OFX format carries no fee breakdown, so fees come back zero and only
// the amount-side comparisons are meaningful for these files.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"settlecheck/internal/model"
	"settlecheck/internal/normalize"
)

// Parser implements OFX/QFX statement file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// nsuFromMemo pulls the settlement reference out of the posting's NAME/MEMO
// text. Gateway deposits carry it as "NSU <digits>"; postings without one
// fall back to the FITID so they still aggregate per posting.
var nsuPattern = regexp.MustCompile(`(?i)\bNSU[ :]*([0-9]+)\b`)

func nsuFromTransaction(tx ofxgo.Transaction) string {
	for _, text := range []string{string(tx.Name), string(tx.Memo)} {
		if m := nsuPattern.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return normalize.NormalizeNSU(string(tx.FiTID))
}

// ParseFile parses an OFX/QFX statement file into statement entries.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.StatementEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	processedContent := p.preprocessOFX(string(content))

	resp, err := ofxgo.ParseResponse(strings.NewReader(processedContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var entries []model.StatementEntry
	var stmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		stmts++
		for _, ofxTx := range stmt.BankTranList.Transactions {
			entries = append(entries, p.convertTransaction(ofxTx))
		}
	}

	slog.Info("Parsed OFX statement file",
		"entries", len(entries),
		"bank_statements", stmts)

	return entries, nil
}

// convertTransaction maps one OFX posting to a statement entry. TRNAMT is
// already signed the way the statement convention wants it: deposits
// positive, refund debits negative.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) model.StatementEntry {
	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)

	return model.StatementEntry{
		NSU:           nsuFromTransaction(ofxTx),
		Installment:   1,
		Amount:        amount,
		Fee:           decimal.Zero,
		OperationDate: ofxTx.DtPosted.Time,
	}
}
