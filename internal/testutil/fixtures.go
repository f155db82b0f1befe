// Package testutil provides fixture builders and an in-memory cache setup
// shared by the reconciliation test suites.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"settlecheck/internal/model"
	"settlecheck/internal/storage"
)

// SetupTestCache creates an in-memory sqlite cache with migrations applied
// and registers cleanup on the test.
func SetupTestCache(t *testing.T) *storage.Cache {
	t.Helper()

	cache, err := storage.NewCache(":memory:")
	if err != nil {
		t.Fatalf("failed to create test cache: %v", err)
	}
	if err := cache.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test cache: %v", err)
	}

	t.Cleanup(func() {
		if err := cache.Close(); err != nil {
			t.Errorf("failed to close test cache: %v", err)
		}
	})

	return cache
}

// D parses a decimal literal, failing the test on malformed input.
func D(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

// Date builds a UTC midnight date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Payable builds a settlement ledger entry with a fixed competence date.
func Payable(t *testing.T, id string, installment int, status model.PayableStatus, amount string) model.PayableEntry {
	t.Helper()

	return model.PayableEntry{
		CompetenceDate: Date(2024, time.March, 15),
		TransactionID:  id,
		Status:         status,
		Amount:         D(t, amount),
		Installment:    installment,
	}
}

// Transaction builds a gateway transaction record.
func Transaction(id, nsu string, installments int) model.TransactionRecord {
	return model.TransactionRecord{
		TransactionID:    id,
		NSU:              nsu,
		Status:           "paid",
		InstallmentCount: installments,
	}
}

// SaleOption mutates a sale fixture before it is returned.
type SaleOption func(*model.SaleRecord)

// WithRefund sets the refund amount. Refunds are negative in the ledger, so
// callers pass the signed value.
func WithRefund(t *testing.T, amount string) SaleOption {
	t.Helper()

	return func(s *model.SaleRecord) {
		s.RefundAmount = D(t, amount)
	}
}

// WithCash sets the cash-side columns used by the statement reconciliation.
func WithCash(t *testing.T, gross, fee string, cashDate time.Time) SaleOption {
	t.Helper()

	return func(s *model.SaleRecord) {
		s.GrossAmount = D(t, gross)
		s.Fee = D(t, fee)
		s.CashDate = cashDate
	}
}

// WithRefundCash sets the cancellation effectuation date.
func WithRefundCash(date time.Time) SaleOption {
	return func(s *model.SaleRecord) {
		s.RefundCashDate = date
	}
}

// Sale builds a sales ledger row. Defaults carry a zero refund and a cash
// date inside 2024 so statement-window tests work without extra options.
func Sale(t *testing.T, id string, installment int, amount string, opts ...SaleOption) model.SaleRecord {
	t.Helper()

	s := model.SaleRecord{
		SaleDate:      Date(2024, time.March, 10),
		CashDate:      Date(2024, time.April, 10),
		TransactionID: id,
		Status:        "paid",
		Amount:        D(t, amount),
		GrossAmount:   D(t, amount),
		Installment:   installment,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Entry builds a bank statement posting. Negative amounts are refund
// postings; the fee follows the posting's polarity.
func Entry(t *testing.T, nsu string, installment int, amount, fee string, date time.Time) model.StatementEntry {
	t.Helper()

	return model.StatementEntry{
		OperationDate: date,
		NSU:           nsu,
		Amount:        D(t, amount),
		Fee:           D(t, fee),
		Installment:   installment,
	}
}
