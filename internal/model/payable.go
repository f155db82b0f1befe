package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayableEntry is one settlement-side ledger line from the payment gateway.
// A transaction accumulates one entry per lifecycle event per installment;
// entries are immutable facts and are never edited after normalization.
type PayableEntry struct {
	CompetenceDate time.Time
	TransactionID  string
	Status         PayableStatus
	Amount         decimal.Decimal
	Installment    int
}

// TransactionRecord is the gateway's own view of a transaction, used for
// installment-count checks and for resolving bank-statement NSUs back to
// transaction ids.
type TransactionRecord struct {
	TransactionID    string
	NSU              string
	Status           string
	InstallmentCount int
}
