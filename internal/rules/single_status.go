package rules

import (
	"settlecheck/internal/classify"
	"settlecheck/internal/match"
	"settlecheck/internal/model"

	"github.com/shopspring/decimal"
)

// singleStatusRule checks transactions whose entries all share one status.
// Those are expected to be plain unrefunded credits: anything else is flagged
// as an invalid status, and credits are verified against the transaction's
// declared installment count and against the sales ledger row by row.
func singleStatusRule(groups []classify.Group, transactions map[string]model.TransactionRecord, saleIdx *match.SaleIndex) []model.DiscrepancyRecord {
	var findings []model.DiscrepancyRecord

	for _, group := range groups {
		if group.Class != classify.SingleStatus {
			continue
		}

		if !group.Has(model.StatusCredit) {
			findings = append(findings, model.DiscrepancyRecord{
				Category:      model.InvalidStatus,
				TransactionID: group.TransactionID,
			})
			continue
		}

		if tr, ok := transactions[group.TransactionID]; ok {
			expected := tr.InstallmentCount
			if expected == 0 {
				expected = 1
			}
			if len(group.Entries) != expected {
				delta := decimal.NewFromInt(int64(len(group.Entries) - expected))
				findings = append(findings, model.DiscrepancyRecord{
					Category:      model.InvalidInstallmentCount,
					TransactionID: group.TransactionID,
					Magnitude:     &delta,
				})
			}
		}

		for _, m := range match.PayablesToSales(group.Entries, saleIdx) {
			if m.Indicator == model.MatchLeftOnly {
				findings = append(findings, model.DiscrepancyRecord{
					Category:      model.InvalidMissingSale,
					TransactionID: group.TransactionID,
				})
				continue
			}

			// The refund and amount checks are independent: one installment
			// can be flagged by both.
			if !m.Sale.RefundAmount.IsZero() {
				magnitude := m.Sale.RefundAmount
				findings = append(findings, model.DiscrepancyRecord{
					Category:      model.InvalidUnexpectedRefund,
					TransactionID: group.TransactionID,
					Magnitude:     &magnitude,
				})
			}

			delta := m.Sale.Amount.Sub(m.Payable.Amount)
			if delta.Abs().GreaterThan(amountTolerance) {
				findings = append(findings, model.DiscrepancyRecord{
					Category:      model.InvalidAmountMismatch,
					TransactionID: group.TransactionID,
					Magnitude:     &delta,
				})
			}
		}
	}

	return findings
}
