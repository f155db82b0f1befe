// Package model defines the core domain records used throughout the application.
package model

import "fmt"

// PayableStatus is the settlement lifecycle event recorded on a payable line.
type PayableStatus string

// Payable status constants. The set is closed: anything else coming out of the
// gateway is a normalization error, not a new status.
const (
	StatusCredit           PayableStatus = "credit"
	StatusRefund           PayableStatus = "refund"
	StatusChargeback       PayableStatus = "chargeback"
	StatusChargebackRefund PayableStatus = "chargeback_refund"
	StatusRefundReversal   PayableStatus = "refund_reversal"
)

// ParsePayableStatus validates a raw status value against the closed enum.
func ParsePayableStatus(s string) (PayableStatus, error) {
	switch PayableStatus(s) {
	case StatusCredit, StatusRefund, StatusChargeback, StatusChargebackRefund, StatusRefundReversal:
		return PayableStatus(s), nil
	default:
		return "", fmt.Errorf("unknown payable status %q", s)
	}
}
