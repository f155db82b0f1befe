package model

import "time"

// ReconciliationReport is the output of the ledger-side reconciliation: every
// finding from the four rule groups, deduplicated and ordered by category and
// transaction id so the report is stable regardless of input row order.
type ReconciliationReport struct {
	GeneratedAt            time.Time
	PayableStatusTally     map[PayableStatus]int
	TransactionStatusTally map[string]int
	RunID                  string
	Findings               []DiscrepancyRecord
	ChargebackResidual     int
}

// IDs returns the sorted transaction ids flagged under one category.
func (r *ReconciliationReport) IDs(cat DiscrepancyCategory) []string {
	var ids []string
	for _, f := range r.Findings {
		if f.Category == cat && f.TransactionID != "" {
			ids = append(ids, f.TransactionID)
		}
	}
	return ids
}

// HasFindings reports whether any rule produced a discrepancy.
func (r *ReconciliationReport) HasFindings() bool {
	return len(r.Findings) > 0 || r.ChargebackResidual != 0
}

// StatementReport is the output of the bank-statement reconciliation: the
// indicator-tagged comparison rows for the reporting year plus the monthly
// diagnostic aggregates.
type StatementReport struct {
	GeneratedAt    time.Time
	RunID          string
	Rows           []StatementComparison
	Monthly        []MonthlyTotals
	UnresolvedNSUs []string
	Year           int
}

// OnlyIn returns the comparison rows present in just one source.
func (r *StatementReport) OnlyIn(ind MatchIndicator) []StatementComparison {
	var rows []StatementComparison
	for _, row := range r.Rows {
		if row.Indicator == ind {
			rows = append(rows, row)
		}
	}
	return rows
}
