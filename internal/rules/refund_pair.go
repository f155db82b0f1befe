package rules

import (
	"settlecheck/internal/classify"
	"settlecheck/internal/match"
	"settlecheck/internal/model"
)

// refundPairRule checks transactions whose status set is exactly
// {credit, refund}. Transactions the sales ledger does not know at all are
// flagged; for the rest, the ledger's net (amount plus refund) must match the
// settled payable total within the sum tolerance.
func refundPairRule(groups []classify.Group, saleIdx *match.SaleIndex) []model.DiscrepancyRecord {
	var findings []model.DiscrepancyRecord

	for _, group := range groups {
		if group.Class != classify.RefundPair {
			continue
		}

		if !saleIdx.HasTransaction(group.TransactionID) {
			findings = append(findings, model.DiscrepancyRecord{
				Category:      model.InvalidNoSale,
				TransactionID: group.TransactionID,
			})
			continue
		}

		delta := sumSales(saleIdx.ByTransaction(group.TransactionID)).Sub(sumPayables(group.Entries))
		if delta.Abs().GreaterThan(sumTolerance) {
			findings = append(findings, model.DiscrepancyRecord{
				Category:      model.InvalidSumError,
				TransactionID: group.TransactionID,
				Magnitude:     &delta,
			})
		}
	}

	return findings
}
