package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"settlecheck/internal/common"
	"settlecheck/internal/model"
)

func setupCache(t *testing.T) *Cache {
	t.Helper()

	cache, err := NewCache(":memory:")
	require.NoError(t, err)
	require.NoError(t, cache.Migrate(context.Background()))
	t.Cleanup(func() {
		require.NoError(t, cache.Close())
	})
	return cache
}

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func TestMigrateIsIdempotent(t *testing.T) {
	cache := setupCache(t)
	require.NoError(t, cache.Migrate(context.Background()))
}

func TestPayablesRoundTrip(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	entries := []model.PayableEntry{
		{
			CompetenceDate: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			TransactionID:  "TX1",
			Status:         model.StatusCredit,
			Amount:         d(t, "100.00"),
			Installment:    1,
		},
		{
			CompetenceDate: time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC),
			TransactionID:  "TX1",
			Status:         model.StatusRefund,
			Amount:         d(t, "-100.00"),
			Installment:    1,
		},
	}

	require.NoError(t, cache.SavePayables(ctx, entries))

	loaded, err := cache.Payables(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	byStatus := make(map[model.PayableStatus]model.PayableEntry, 2)
	for _, e := range loaded {
		byStatus[e.Status] = e
	}

	credit := byStatus[model.StatusCredit]
	assert.Equal(t, "TX1", credit.TransactionID)
	assert.True(t, credit.Amount.Equal(d(t, "100")))
	assert.True(t, credit.CompetenceDate.Equal(entries[0].CompetenceDate))
	assert.True(t, byStatus[model.StatusRefund].Amount.Equal(d(t, "-100")))
}

func TestSavePayablesReplacesPriorRuns(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	first := []model.PayableEntry{{TransactionID: "OLD", Status: model.StatusCredit, Amount: d(t, "1"), Installment: 1}}
	second := []model.PayableEntry{{TransactionID: "NEW", Status: model.StatusCredit, Amount: d(t, "2"), Installment: 1}}

	require.NoError(t, cache.SavePayables(ctx, first))
	require.NoError(t, cache.SavePayables(ctx, second))

	loaded, err := cache.Payables(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "NEW", loaded[0].TransactionID)
}

func TestSalesRoundTrip(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	records := []model.SaleRecord{
		{
			SaleDate:         time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC),
			CashDate:         time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
			RefundCashDate:   time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
			TransactionID:    "TX1",
			GatewayID:        "0-TX1",
			Status:           "paid",
			Amount:           d(t, "100.00"),
			RefundAmount:     d(t, "-100.00"),
			GrossAmount:      d(t, "100.00"),
			Fee:              d(t, "3.50"),
			FeeReimbursement: d(t, "0.50"),
			LateInterest:     d(t, "0.10"),
			Installment:      1,
		},
		{
			TransactionID: "TX2",
			GatewayID:     "2-TX2",
			Status:        "paid",
			Amount:        d(t, "50.00"),
			Installment:   2,
		},
	}

	require.NoError(t, cache.SaveSales(ctx, records))

	loaded, err := cache.Sales(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	sale := loaded[0]
	assert.Equal(t, "TX1", sale.TransactionID)
	assert.Equal(t, "0-TX1", sale.GatewayID)
	assert.True(t, sale.Amount.Equal(d(t, "100")))
	assert.True(t, sale.RefundAmount.Equal(d(t, "-100")))
	assert.True(t, sale.Fee.Equal(d(t, "3.5")))
	assert.True(t, sale.FeeReimbursement.Equal(d(t, "0.5")))
	assert.True(t, sale.LateInterest.Equal(d(t, "0.1")))
	assert.True(t, sale.CashDate.Equal(records[0].CashDate))
	assert.True(t, sale.RefundCashDate.Equal(records[0].RefundCashDate))

	// Zero dates survive as zero, not as some epoch artifact.
	assert.True(t, loaded[1].SaleDate.IsZero())
	assert.True(t, loaded[1].RefundCashDate.IsZero())
}

func TestTransactionsRoundTripAndNSUIndex(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	records := []model.TransactionRecord{
		{TransactionID: "TX1", NSU: "111", Status: "paid", InstallmentCount: 3},
		{TransactionID: "TX2", NSU: "222", Status: "refunded", InstallmentCount: 1},
		{TransactionID: "TX3", NSU: "", Status: "paid", InstallmentCount: 1},
	}

	require.NoError(t, cache.SaveTransactions(ctx, records))

	loaded, err := cache.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, 3, loaded[0].InstallmentCount)

	index, err := cache.NSUIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"111": "TX1", "222": "TX2"}, index,
		"empty nsus must not enter the lookup")
}

func TestNSUIndexOutlivesTransactionReload(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SaveTransactions(ctx, []model.TransactionRecord{
		{TransactionID: "TX1", NSU: "111", InstallmentCount: 1},
	}))
	require.NoError(t, cache.SaveTransactions(ctx, []model.TransactionRecord{
		{TransactionID: "TX2", NSU: "222", InstallmentCount: 1},
	}))

	// The transactions table holds only the latest load.
	loaded, err := cache.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "TX2", loaded[0].TransactionID)

	// The nsu lookup accumulates across loads.
	index, err := cache.NSUIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"111": "TX1", "222": "TX2"}, index)
}

func TestNSUIndexEmptyCache(t *testing.T) {
	cache := setupCache(t)

	_, err := cache.NSUIndex(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrCacheEmpty))
}

func TestTableCounts(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SavePayables(ctx, []model.PayableEntry{
		{TransactionID: "TX1", Status: model.StatusCredit, Amount: d(t, "1"), Installment: 1},
		{TransactionID: "TX2", Status: model.StatusCredit, Amount: d(t, "2"), Installment: 1},
	}))

	counts, err := cache.TableCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts["payables"])
	assert.Equal(t, 0, counts["sales"])
	assert.Equal(t, 0, counts["transactions"])
}
