package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"settlecheck/internal/model"
	"settlecheck/internal/testutil"
)

func TestNewSaleIndex(t *testing.T) {
	sales := []model.SaleRecord{
		testutil.Sale(t, "TX1", 1, "100"),
		testutil.Sale(t, "TX1", 2, "100"),
		testutil.Sale(t, "TX2", 1, "50"),
	}

	idx := NewSaleIndex(sales)

	assert.Empty(t, idx.Duplicates)
	assert.True(t, idx.HasTransaction("TX1"))
	assert.False(t, idx.HasTransaction("TX3"))
	assert.Len(t, idx.ByTransaction("TX1"), 2)

	sale := idx.Lookup(model.SaleKey{TransactionID: "TX2", Installment: 1})
	require.NotNil(t, sale)
	assert.True(t, sale.Amount.Equal(testutil.D(t, "50")))

	assert.Nil(t, idx.Lookup(model.SaleKey{TransactionID: "TX2", Installment: 2}))
}

func TestNewSaleIndexDuplicateKeys(t *testing.T) {
	sales := []model.SaleRecord{
		testutil.Sale(t, "TX1", 1, "100"),
		testutil.Sale(t, "TX1", 1, "999"),
		testutil.Sale(t, "TX0", 2, "10"),
		testutil.Sale(t, "TX0", 2, "20"),
	}

	idx := NewSaleIndex(sales)

	require.Len(t, idx.Duplicates, 2)
	assert.Equal(t, model.SaleKey{TransactionID: "TX0", Installment: 2}, idx.Duplicates[0])
	assert.Equal(t, model.SaleKey{TransactionID: "TX1", Installment: 1}, idx.Duplicates[1])

	// First row wins; the collision is recorded rather than overwriting.
	sale := idx.Lookup(model.SaleKey{TransactionID: "TX1", Installment: 1})
	require.NotNil(t, sale)
	assert.True(t, sale.Amount.Equal(testutil.D(t, "100")))
	assert.Len(t, idx.ByTransaction("TX1"), 1)
}

func TestPayablesToSales(t *testing.T) {
	idx := NewSaleIndex([]model.SaleRecord{
		testutil.Sale(t, "TX1", 1, "100"),
	})

	payables := []model.PayableEntry{
		testutil.Payable(t, "TX1", 1, model.StatusCredit, "100"),
		testutil.Payable(t, "TX1", 2, model.StatusCredit, "100"),
	}

	matches := PayablesToSales(payables, idx)
	require.Len(t, matches, 2)

	assert.Equal(t, model.MatchBoth, matches[0].Indicator)
	require.NotNil(t, matches[0].Sale)
	assert.Equal(t, 1, matches[0].Sale.Installment)

	assert.Equal(t, model.MatchLeftOnly, matches[1].Indicator)
	assert.Nil(t, matches[1].Sale)
	assert.Equal(t, 2, matches[1].Payable.Installment)
}
