package model

import "github.com/shopspring/decimal"

// DiscrepancyCategory names the rule that produced a finding.
type DiscrepancyCategory string

// Discrepancy categories, one per reconciliation rule outcome.
const (
	// Single-status rule.
	InvalidStatus           DiscrepancyCategory = "invalid_status"
	InvalidInstallmentCount DiscrepancyCategory = "invalid_installment_count"
	InvalidMissingSale      DiscrepancyCategory = "invalid_missing_sale"
	InvalidUnexpectedRefund DiscrepancyCategory = "invalid_unexpected_refund"
	InvalidAmountMismatch   DiscrepancyCategory = "invalid_amount_mismatch"

	// Refund-pair rule.
	InvalidNoSale DiscrepancyCategory = "invalid_no_sale"

	// Shared by the sum checks of the refund-pair, chargeback-family and
	// refund-reversal rules.
	InvalidSumError DiscrepancyCategory = "invalid_sum_error"

	// Chargeback-family rule.
	InvalidRefundNoChargeback DiscrepancyCategory = "invalid_refund_no_chargeback"
	InvalidNoCounterpart      DiscrepancyCategory = "invalid_no_counterpart"

	// Internal accounting identity failures and unmodeled status
	// combinations. Higher severity: these point at a classification gap,
	// not at bad data in the source systems.
	CountIntegrityViolation DiscrepancyCategory = "count_integrity_violation"
)

// DiscrepancyRecord is one typed finding emitted by the rule engine.
// Magnitude carries the measured delta where the rule has one; RelatedIDs
// carries counterpart ids where the rule involves more than one transaction.
type DiscrepancyRecord struct {
	Category      DiscrepancyCategory
	TransactionID string
	Magnitude     *decimal.Decimal
	RelatedIDs    []string
}
