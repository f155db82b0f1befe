// Package classify groups payable entries by transaction and assigns each
// transaction a lifecycle class from the set of statuses it carries. The
// classes partition the status space: every transaction lands in exactly one,
// and combinations the rules don't model land in Unknown instead of being
// silently dropped.
package classify

import (
	"sort"

	"settlecheck/internal/model"
)

// Lifecycle is the class a transaction's status set resolves to.
type Lifecycle string

// Lifecycle classes.
const (
	SingleStatus     Lifecycle = "single_status"
	RefundPair       Lifecycle = "refund_pair"
	ChargebackFamily Lifecycle = "chargeback_family"
	RefundReversal   Lifecycle = "refund_reversal"
	Unknown          Lifecycle = "unknown"
)

// Group is every payable entry of one transaction plus its lifecycle class.
// Classification happens once per batch over the transaction's full row set,
// never over a partial load.
type Group struct {
	Statuses      map[model.PayableStatus]bool
	TransactionID string
	Entries       []model.PayableEntry
	Class         Lifecycle
}

// Has reports whether the group carries at least one entry with the status.
func (g *Group) Has(status model.PayableStatus) bool {
	return g.Statuses[status]
}

// Groups partitions payables by transaction id and classifies each group.
// The result is sorted by transaction id so downstream output is stable
// regardless of input row order.
func Groups(payables []model.PayableEntry) []Group {
	byID := make(map[string]*Group)
	var order []string

	for _, entry := range payables {
		group, ok := byID[entry.TransactionID]
		if !ok {
			group = &Group{
				TransactionID: entry.TransactionID,
				Statuses:      make(map[model.PayableStatus]bool),
			}
			byID[entry.TransactionID] = group
			order = append(order, entry.TransactionID)
		}
		group.Entries = append(group.Entries, entry)
		group.Statuses[entry.Status] = true
	}

	sort.Strings(order)

	groups := make([]Group, 0, len(order))
	for _, id := range order {
		group := byID[id]
		group.Class = classify(group.Statuses)
		groups = append(groups, *group)
	}

	return groups
}

// classify maps a distinct-status set to its lifecycle class.
//
// Precedence: a refund_reversal row anywhere puts the transaction in the
// reversal class, even when it is the only status, because the reversal rule
// applies the stricter exact-equality check. Chargeback-side statuses claim
// their transactions next, singletons included, since a lone chargeback is a
// missing-counterpart case, not a single-status one. After that, a single
// remaining status is SingleStatus and the exact {credit, refund} pair is
// RefundPair.
func classify(statuses map[model.PayableStatus]bool) Lifecycle {
	switch {
	case len(statuses) == 0:
		return Unknown
	case statuses[model.StatusRefundReversal]:
		return RefundReversal
	case chargebackFamily(statuses):
		return ChargebackFamily
	case len(statuses) == 1:
		return SingleStatus
	case len(statuses) == 2 && statuses[model.StatusCredit] && statuses[model.StatusRefund]:
		return RefundPair
	default:
		return Unknown
	}
}

func chargebackFamily(statuses map[model.PayableStatus]bool) bool {
	if !statuses[model.StatusChargeback] && !statuses[model.StatusChargebackRefund] {
		return false
	}
	for status := range statuses {
		switch status {
		case model.StatusCredit, model.StatusChargeback, model.StatusChargebackRefund:
		default:
			return false
		}
	}
	return true
}
