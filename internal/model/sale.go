package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleKey identifies a sale row. (transaction_id, installment) is expected
// unique in the sales ledger; duplicates are surfaced by the matcher.
type SaleKey struct {
	TransactionID string
	Installment   int
}

// SaleRecord is one installment of a sale as the internal ledger records it.
// Amount is the per-installment amount compared against payables; GrossAmount
// and the fee fields feed the bank-statement reconciliation, which works on
// cash totals rather than per-installment splits. RefundAmount follows the
// settlement sign convention: refunds carry negative amounts, so
// Amount + RefundAmount is the net the gateway should have settled.
type SaleRecord struct {
	SaleDate         time.Time
	CashDate         time.Time // day money for the sale actually arrived
	RefundCashDate   time.Time // day a cancellation was effected, zero if none
	TransactionID    string
	GatewayID        string // raw compound "<installment>-<transaction_id>" id
	Status           string
	Amount           decimal.Decimal
	RefundAmount     decimal.Decimal
	GrossAmount      decimal.Decimal
	Fee              decimal.Decimal
	FeeReimbursement decimal.Decimal
	LateInterest     decimal.Decimal
	Installment      int
}

// Key returns the unique ledger key for this row.
func (s SaleRecord) Key() SaleKey {
	return SaleKey{TransactionID: s.TransactionID, Installment: s.Installment}
}
