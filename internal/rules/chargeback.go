package rules

import (
	"settlecheck/internal/classify"
	"settlecheck/internal/match"
	"settlecheck/internal/model"
)

// chargebackFamilyRule checks transactions carrying chargeback-side statuses.
// Every chargeback needs exactly one counterpart: either a chargeback_refund
// or, failing that, a credit re-presentment. The rule also verifies a count
// identity over its own partitions: a nonzero residual means the partitions
// missed a case, which is reported rather than dropped.
func chargebackFamilyRule(groups []classify.Group, saleIdx *match.SaleIndex) ([]model.DiscrepancyRecord, int) {
	var findings []model.DiscrepancyRecord

	var (
		chargebacks       int
		chargebackRefunds int
		creditCounterpart int
		refundNoCb        []string
		noCounterpart     []string
		valid             []classify.Group
	)

	for _, group := range groups {
		if group.Class != classify.ChargebackFamily {
			continue
		}

		hasCb := group.Has(model.StatusChargeback)
		hasCbRefund := group.Has(model.StatusChargebackRefund)
		hasCredit := group.Has(model.StatusCredit)

		if hasCb {
			chargebacks++
		}
		if hasCbRefund {
			chargebackRefunds++
		}

		switch {
		case hasCbRefund && !hasCb:
			refundNoCb = append(refundNoCb, group.TransactionID)
			findings = append(findings, model.DiscrepancyRecord{
				Category:      model.InvalidRefundNoChargeback,
				TransactionID: group.TransactionID,
			})
		case hasCb && !hasCbRefund && hasCredit:
			// Credit rows count as the chargeback's counterpart only when no
			// chargeback_refund exists for the same transaction.
			creditCounterpart++
			valid = append(valid, group)
		case hasCb && !hasCbRefund && !hasCredit:
			noCounterpart = append(noCounterpart, group.TransactionID)
			findings = append(findings, model.DiscrepancyRecord{
				Category:      model.InvalidNoCounterpart,
				TransactionID: group.TransactionID,
			})
		default:
			valid = append(valid, group)
		}
	}

	// Count identity: chargebacks without a counterpart problem must equal
	// valid chargeback_refunds plus credit counterparts.
	residual := (chargebacks - len(noCounterpart)) -
		(chargebackRefunds - len(refundNoCb)) -
		creditCounterpart

	for _, group := range valid {
		if !saleIdx.HasTransaction(group.TransactionID) {
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

	return findings, residual
}
