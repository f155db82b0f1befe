package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"settlecheck/internal/model"
)

func TestReconciliation(t *testing.T) {
	t.Run("clean report", func(t *testing.T) {
		report := &model.ReconciliationReport{
			RunID:       "run-1",
			GeneratedAt: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC),
			PayableStatusTally: map[model.PayableStatus]int{
				model.StatusCredit: 10,
			},
		}

		out := Reconciliation(report)
		assert.Contains(t, out, "No discrepancies found")
		assert.Contains(t, out, "credit")
	})

	t.Run("report with findings", func(t *testing.T) {
		report := &model.ReconciliationReport{
			RunID:              "run-2",
			GeneratedAt:        time.Now(),
			ChargebackResidual: 1,
			Findings: []model.DiscrepancyRecord{
				{Category: model.InvalidStatus, TransactionID: "TX1"},
				{Category: model.InvalidSumError, TransactionID: "TX2"},
			},
		}

		out := Reconciliation(report)
		assert.Contains(t, out, "invalid_status (1)")
		assert.Contains(t, out, "TX1")
		assert.Contains(t, out, "invalid_sum_error (1)")
		assert.Contains(t, out, "count identity residual: +1")
		assert.NotContains(t, out, "No discrepancies")
	})
}

func TestStatement(t *testing.T) {
	report := &model.StatementReport{
		RunID:       "run-3",
		GeneratedAt: time.Now(),
		Year:        2024,
		Rows: []model.StatementComparison{
			{TransactionID: "TX1", Indicator: model.MatchBoth},
			{TransactionID: "TX2", Indicator: model.MatchLeftOnly},
			{NSU: "999", Indicator: model.MatchRightOnly},
		},
		UnresolvedNSUs: []string{"999"},
	}

	out := Statement(report)
	assert.Contains(t, out, "Statement reconciliation 2024")
	assert.Contains(t, out, "ledger only          1")
	assert.Contains(t, out, "statement only       1")
	assert.Contains(t, out, "unresolved NSUs (1)")
	assert.Contains(t, out, "999")
}
