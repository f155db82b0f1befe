package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoValueDate is the sentinel carried in the cash-date column that does not
// apply to a statement row: one physical row is either a sale or a refund,
// never both, so exactly one of the two cash dates is real.
var NoValueDate = time.Date(1987, time.December, 17, 0, 0, 0, 0, time.UTC)

// StatementEntry is one physical posting from the bank statement after
// normalization. Amount is signed: positive postings are sales, negative
// postings are refunds. Fee carries the bank's total operation fee for the
// posting and follows the same polarity as Amount.
type StatementEntry struct {
	OperationDate time.Time
	NSU           string
	Amount        decimal.Decimal
	Fee           decimal.Decimal
	Installment   int
}

// CashSide is the comparable cash view shared by the sales ledger and the
// bank statement. Both sides of a statement comparison are projected into
// this shape before being joined.
type CashSide struct {
	SaleCashDate   time.Time
	RefundCashDate time.Time
	SaleAmount     decimal.Decimal
	SaleFee        decimal.Decimal
	RefundAmount   decimal.Decimal
	RefundFee      decimal.Decimal
}

// StatementRow is the aggregate of all postings for one (nsu, installment)
// pair, with the transaction id resolved through the cached NSU lookup.
// TransactionID is empty when the NSU did not resolve.
type StatementRow struct {
	CashSide
	NSU           string
	TransactionID string
	Installment   int
}

// MatchIndicator tags which sources contributed to a joined row.
type MatchIndicator string

// Join indicator values, in the outer-join sense: LeftOnly rows exist only in
// the sales ledger, RightOnly rows only in the bank statement.
const (
	MatchBoth      MatchIndicator = "both"
	MatchLeftOnly  MatchIndicator = "left_only"
	MatchRightOnly MatchIndicator = "right_only"
)

// StatementComparison is one row of the indicator-tagged outer join between
// the windowed sales ledger and the aggregated bank statement.
type StatementComparison struct {
	Sales         *CashSide
	Statement     *CashSide
	TransactionID string
	NSU           string
	Indicator     MatchIndicator
	Installment   int
}

// MonthlyTotals is the diagnostic aggregate for one calendar month of the
// reporting window, summed over windowed sales-ledger rows.
type MonthlyTotals struct {
	Month            time.Time
	Gross            decimal.Decimal
	Fee              decimal.Decimal
	Cancellation     decimal.Decimal
	FeeReimbursement decimal.Decimal
	LateInterest     decimal.Decimal
	Total            decimal.Decimal
}
