package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"settlecheck/internal/model"
	"settlecheck/internal/testutil"
)

func categories(report *model.ReconciliationReport) []model.DiscrepancyCategory {
	out := make([]model.DiscrepancyCategory, 0, len(report.Findings))
	for _, f := range report.Findings {
		out = append(out, f.Category)
	}
	return out
}

func findOne(t *testing.T, report *model.ReconciliationReport, category model.DiscrepancyCategory) model.DiscrepancyRecord {
	t.Helper()
	var matched []model.DiscrepancyRecord
	for _, f := range report.Findings {
		if f.Category == category {
			matched = append(matched, f)
		}
	}
	require.Len(t, matched, 1, "expected exactly one %s finding, got %v", category, categories(report))
	return matched[0]
}

func TestReconcileCleanInstallmentCredit(t *testing.T) {
	payables := []model.PayableEntry{
		testutil.Payable(t, "TX1", 1, model.StatusCredit, "100.00"),
		testutil.Payable(t, "TX1", 2, model.StatusCredit, "100.00"),
		testutil.Payable(t, "TX1", 3, model.StatusCredit, "100.00"),
	}
	transactions := []model.TransactionRecord{testutil.Transaction("TX1", "111", 3)}
	sales := []model.SaleRecord{
		testutil.Sale(t, "TX1", 1, "100.00"),
		testutil.Sale(t, "TX1", 2, "100.00"),
		testutil.Sale(t, "TX1", 3, "100.00"),
	}

	report := Reconcile(payables, transactions, sales)

	assert.Empty(t, report.Findings)
	assert.False(t, report.HasFindings())
	assert.Zero(t, report.ChargebackResidual)
	assert.Equal(t, 3, report.PayableStatusTally[model.StatusCredit])
	assert.NotEmpty(t, report.RunID)
}

func TestReconcileSingleStatusFindings(t *testing.T) {
	t.Run("non credit single status", func(t *testing.T) {
		payables := []model.PayableEntry{
			testutil.Payable(t, "TX1", 1, model.StatusRefund, "-100.00"),
		}

		report := Reconcile(payables, nil, nil)
		finding := findOne(t, report, model.InvalidStatus)
		assert.Equal(t, "TX1", finding.TransactionID)
	})

	t.Run("installment count mismatch", func(t *testing.T) {
		payables := []model.PayableEntry{
			testutil.Payable(t, "TX1", 1, model.StatusCredit, "100.00"),
			testutil.Payable(t, "TX1", 2, model.StatusCredit, "100.00"),
		}
		transactions := []model.TransactionRecord{testutil.Transaction("TX1", "111", 3)}
		sales := []model.SaleRecord{
			testutil.Sale(t, "TX1", 1, "100.00"),
			testutil.Sale(t, "TX1", 2, "100.00"),
		}

		report := Reconcile(payables, transactions, sales)
		finding := findOne(t, report, model.InvalidInstallmentCount)
		require.NotNil(t, finding.Magnitude)
		assert.True(t, finding.Magnitude.Equal(testutil.D(t, "-1")), "magnitude is actual minus declared")
	})

	t.Run("unknown transaction skips the count check", func(t *testing.T) {
		payables := []model.PayableEntry{
			testutil.Payable(t, "TX1", 1, model.StatusCredit, "100.00"),
			testutil.Payable(t, "TX1", 2, model.StatusCredit, "100.00"),
		}
		sales := []model.SaleRecord{
			testutil.Sale(t, "TX1", 1, "100.00"),
			testutil.Sale(t, "TX1", 2, "100.00"),
		}

		report := Reconcile(payables, nil, sales)
		assert.Empty(t, report.Findings)
	})

	t.Run("missing sale row", func(t *testing.T) {
		payables := []model.PayableEntry{
			testutil.Payable(t, "TX1", 1, model.StatusCredit, "100.00"),
			testutil.Payable(t, "TX1", 2, model.StatusCredit, "100.00"),
		}
		transactions := []model.TransactionRecord{testutil.Transaction("TX1", "111", 2)}
		sales := []model.SaleRecord{
			testutil.Sale(t, "TX1", 1, "100.00"),
		}

		report := Reconcile(payables, transactions, sales)
		finding := findOne(t, report, model.InvalidMissingSale)
		assert.Equal(t, "TX1", finding.TransactionID)
	})

	t.Run("unexpected refund and amount mismatch fire independently", func(t *testing.T) {
		payables := []model.PayableEntry{
			testutil.Payable(t, "TX1", 1, model.StatusCredit, "100.00"),
		}
		transactions := []model.TransactionRecord{testutil.Transaction("TX1", "111", 1)}
		sales := []model.SaleRecord{
			testutil.Sale(t, "TX1", 1, "150.00", testutil.WithRefund(t, "-150.00")),
		}

		report := Reconcile(payables, transactions, sales)

		refund := findOne(t, report, model.InvalidUnexpectedRefund)
		require.NotNil(t, refund.Magnitude)
		assert.True(t, refund.Magnitude.Equal(testutil.D(t, "-150")))

		mismatch := findOne(t, report, model.InvalidAmountMismatch)
		require.NotNil(t, mismatch.Magnitude)
		assert.True(t, mismatch.Magnitude.Equal(testutil.D(t, "50")), "magnitude is ledger minus settled")
	})
}

func TestReconcileAmountTolerance(t *testing.T) {
	tests := []struct {
		name       string
		saleAmount string
		flagged    bool
	}{
		{name: "exact match", saleAmount: "100.00", flagged: false},
		{name: "delta at the tolerance", saleAmount: "100.01", flagged: false},
		{name: "delta just past the tolerance", saleAmount: "100.011", flagged: true},
		{name: "two cents off", saleAmount: "100.02", flagged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payables := []model.PayableEntry{
				testutil.Payable(t, "TX1", 1, model.StatusCredit, "100.00"),
			}
			transactions := []model.TransactionRecord{testutil.Transaction("TX1", "111", 1)}
			sales := []model.SaleRecord{testutil.Sale(t, "TX1", 1, tt.saleAmount)}

			report := Reconcile(payables, transactions, sales)
			ids := report.IDs(model.InvalidAmountMismatch)
			if tt.flagged {
				assert.Equal(t, []string{"TX1"}, ids)
			} else {
				assert.Empty(t, ids)
			}
		})
	}
}

func TestReconcileRefundPair(t *testing.T) {
	pair := func(t *testing.T) []model.PayableEntry {
		t.Helper()
		return []model.PayableEntry{
			testutil.Payable(t, "TX1", 1, model.StatusCredit, "200.00"),
			testutil.Payable(t, "TX1", 1, model.StatusRefund, "-200.00"),
		}
	}

	t.Run("no ledger row at all", func(t *testing.T) {
		report := Reconcile(pair(t), nil, nil)
		finding := findOne(t, report, model.InvalidNoSale)
		assert.Equal(t, "TX1", finding.TransactionID)
	})

	t.Run("net within the sum tolerance", func(t *testing.T) {
		sales := []model.SaleRecord{
			testutil.Sale(t, "TX1", 1, "200.00", testutil.WithRefund(t, "-199.90")),
		}
		report := Reconcile(pair(t), nil, sales)
		assert.Empty(t, report.Findings)
	})

	t.Run("net past the sum tolerance", func(t *testing.T) {
		sales := []model.SaleRecord{
			testutil.Sale(t, "TX1", 1, "200.00", testutil.WithRefund(t, "-199.89")),
		}
		report := Reconcile(pair(t), nil, sales)
		finding := findOne(t, report, model.InvalidSumError)
		require.NotNil(t, finding.Magnitude)
		assert.True(t, finding.Magnitude.Equal(testutil.D(t, "0.11")))
	})
}

func TestReconcileChargebackFamily(t *testing.T) {
	t.Run("chargeback refunded is valid", func(t *testing.T) {
		payables := []model.PayableEntry{
			testutil.Payable(t, "TX1", 1, model.StatusCredit, "100.00"),
			testutil.Payable(t, "TX1", 1, model.StatusChargeback, "-100.00"),
			testutil.Payable(t, "TX1", 1, model.StatusChargebackRefund, "100.00"),
		}
		sales := []model.SaleRecord{testutil.Sale(t, "TX1", 1, "100.00")}

		report := Reconcile(payables, nil, sales)
		assert.Empty(t, report.Findings)
		assert.Zero(t, report.ChargebackResidual)
	})

	t.Run("credit representment counts as counterpart", func(t *testing.T) {
		payables := []model.PayableEntry{
			testutil.Payable(t, "TX1", 1, model.StatusCredit, "100.00"),
			testutil.Payable(t, "TX1", 1, model.StatusChargeback, "-100.00"),
			testutil.Payable(t, "TX1", 1, model.StatusCredit, "100.00"),
		}
		sales := []model.SaleRecord{testutil.Sale(t, "TX1", 1, "100.00")}

		report := Reconcile(payables, nil, sales)
		assert.Empty(t, report.Findings)
		assert.Zero(t, report.ChargebackResidual)
	})

	t.Run("lone chargeback has no counterpart", func(t *testing.T) {
		payables := []model.PayableEntry{
			testutil.Payable(t, "TX1", 1, model.StatusChargeback, "-100.00"),
		}

		report := Reconcile(payables, nil, nil)
		finding := findOne(t, report, model.InvalidNoCounterpart)
		assert.Equal(t, "TX1", finding.TransactionID)
		assert.Zero(t, report.ChargebackResidual, "flagged cases are excluded from the identity")
	})

	t.Run("chargeback refund without chargeback", func(t *testing.T) {
		payables := []model.PayableEntry{
			testutil.Payable(t, "TX1", 1, model.StatusChargebackRefund, "100.00"),
		}

		report := Reconcile(payables, nil, nil)
		finding := findOne(t, report, model.InvalidRefundNoChargeback)
		assert.Equal(t, "TX1", finding.TransactionID)
		assert.Zero(t, report.ChargebackResidual)
	})

	t.Run("sum check on valid chargeback cycles", func(t *testing.T) {
		payables := []model.PayableEntry{
			testutil.Payable(t, "TX1", 1, model.StatusCredit, "100.00"),
			testutil.Payable(t, "TX1", 1, model.StatusChargeback, "-100.00"),
			testutil.Payable(t, "TX1", 1, model.StatusChargebackRefund, "100.00"),
		}
		sales := []model.SaleRecord{testutil.Sale(t, "TX1", 1, "100.50")}

		report := Reconcile(payables, nil, sales)
		finding := findOne(t, report, model.InvalidSumError)
		require.NotNil(t, finding.Magnitude)
		assert.True(t, finding.Magnitude.Equal(testutil.D(t, "0.5")))
	})

	t.Run("valid cycle absent from the ledger skips the sum check", func(t *testing.T) {
		payables := []model.PayableEntry{
			testutil.Payable(t, "TX1", 1, model.StatusCredit, "100.00"),
			testutil.Payable(t, "TX1", 1, model.StatusChargeback, "-100.00"),
			testutil.Payable(t, "TX1", 1, model.StatusChargebackRefund, "100.00"),
		}

		report := Reconcile(payables, nil, nil)
		assert.Empty(t, report.Findings)
	})
}

func TestReconcileRefundReversalExactEquality(t *testing.T) {
	payables := []model.PayableEntry{
		testutil.Payable(t, "TX1", 1, model.StatusCredit, "100.00"),
		testutil.Payable(t, "TX1", 1, model.StatusRefund, "-100.00"),
		testutil.Payable(t, "TX1", 1, model.StatusRefundReversal, "100.00"),
	}

	t.Run("exact net passes", func(t *testing.T) {
		sales := []model.SaleRecord{testutil.Sale(t, "TX1", 1, "100.00")}
		report := Reconcile(payables, nil, sales)
		assert.Empty(t, report.Findings)
	})

	t.Run("a fraction of a cent fails", func(t *testing.T) {
		sales := []model.SaleRecord{testutil.Sale(t, "TX1", 1, "100.001")}
		report := Reconcile(payables, nil, sales)
		finding := findOne(t, report, model.InvalidSumError)
		require.NotNil(t, finding.Magnitude)
		assert.True(t, finding.Magnitude.Equal(testutil.D(t, "0.001")))
	})

	t.Run("missing ledger rows fail rather than skip", func(t *testing.T) {
		report := Reconcile(payables, nil, nil)
		finding := findOne(t, report, model.InvalidSumError)
		require.NotNil(t, finding.Magnitude)
		assert.True(t, finding.Magnitude.Equal(testutil.D(t, "-100")))
	})
}

func TestReconcileUnmodeledStatusSet(t *testing.T) {
	payables := []model.PayableEntry{
		testutil.Payable(t, "TX1", 1, model.StatusRefund, "-100.00"),
		testutil.Payable(t, "TX1", 1, model.StatusChargeback, "-100.00"),
	}

	report := Reconcile(payables, nil, nil)
	finding := findOne(t, report, model.CountIntegrityViolation)
	assert.Equal(t, "TX1", finding.TransactionID)
}

func TestReconcileDeterministicUnderInputOrder(t *testing.T) {
	payables := []model.PayableEntry{
		testutil.Payable(t, "TX3", 1, model.StatusRefund, "-10.00"),
		testutil.Payable(t, "TX1", 1, model.StatusChargeback, "-20.00"),
		testutil.Payable(t, "TX2", 1, model.StatusRefund, "-30.00"),
	}
	shuffled := []model.PayableEntry{payables[2], payables[0], payables[1]}

	a := Reconcile(payables, nil, nil)
	b := Reconcile(shuffled, nil, nil)

	require.Len(t, a.Findings, len(b.Findings))
	for i := range a.Findings {
		assert.Equal(t, a.Findings[i].Category, b.Findings[i].Category)
		assert.Equal(t, a.Findings[i].TransactionID, b.Findings[i].TransactionID)
	}

	// Ordered by category first, then transaction id.
	assert.Equal(t, []model.DiscrepancyCategory{
		model.InvalidNoCounterpart,
		model.InvalidStatus,
		model.InvalidStatus,
	}, categories(a))
	assert.Equal(t, []string{"TX2", "TX3"}, a.IDs(model.InvalidStatus))
}

func TestReconcileTallies(t *testing.T) {
	payables := []model.PayableEntry{
		testutil.Payable(t, "TX1", 1, model.StatusCredit, "100.00"),
		testutil.Payable(t, "TX1", 1, model.StatusRefund, "-100.00"),
		testutil.Payable(t, "TX2", 1, model.StatusCredit, "50.00"),
	}
	transactions := []model.TransactionRecord{
		testutil.Transaction("TX1", "111", 1),
		testutil.Transaction("TX2", "222", 1),
	}
	sales := []model.SaleRecord{
		testutil.Sale(t, "TX1", 1, "100.00", testutil.WithRefund(t, "-100.00")),
		testutil.Sale(t, "TX2", 1, "50.00"),
	}

	report := Reconcile(payables, transactions, sales)

	assert.Equal(t, 2, report.PayableStatusTally[model.StatusCredit])
	assert.Equal(t, 1, report.PayableStatusTally[model.StatusRefund])
	assert.Equal(t, 2, report.TransactionStatusTally["paid"])
}
