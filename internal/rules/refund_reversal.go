package rules

import (
	"settlecheck/internal/classify"
	"settlecheck/internal/match"
	"settlecheck/internal/model"
)

// refundReversalRule checks transactions carrying a refund_reversal entry.
// Reinstated refunds are rare enough that the settled total must match the
// ledger's net exactly, with no tolerance band, unlike every other sum check.
func refundReversalRule(groups []classify.Group, saleIdx *match.SaleIndex) []model.DiscrepancyRecord {
	var findings []model.DiscrepancyRecord

	for _, group := range groups {
		if group.Class != classify.RefundReversal {
			continue
		}

		payableSum := sumPayables(group.Entries)
		saleSum := sumSales(saleIdx.ByTransaction(group.TransactionID))
		if !payableSum.Equal(saleSum) {
			delta := saleSum.Sub(payableSum)
			findings = append(findings, model.DiscrepancyRecord{
				Category:      model.InvalidSumError,
				TransactionID: group.TransactionID,
				Magnitude:     &delta,
			})
		}
	}

	return findings
}
