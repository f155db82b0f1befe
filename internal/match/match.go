// Package match joins normalized records across sources by their shared keys:
// (transaction_id, installment) between payables and sales, and the same key
// between the windowed sales ledger and the aggregated bank statement. Rows
// without a counterpart are never dropped; they come back explicitly tagged.
package match

import (
	"sort"

	"settlecheck/internal/model"
)

// SaleIndex provides keyed access to the sales ledger. The ledger key
// (transaction_id, installment) is expected unique; rows that collide are
// kept (first wins) and the colliding keys are recorded in Duplicates.
type SaleIndex struct {
	byKey      map[model.SaleKey]*model.SaleRecord
	byID       map[string][]*model.SaleRecord
	Duplicates []model.SaleKey
}

// NewSaleIndex builds the index from a normalized sales table.
func NewSaleIndex(sales []model.SaleRecord) *SaleIndex {
	idx := &SaleIndex{
		byKey: make(map[model.SaleKey]*model.SaleRecord, len(sales)),
		byID:  make(map[string][]*model.SaleRecord),
	}

	for i := range sales {
		sale := &sales[i]
		key := sale.Key()
		if _, exists := idx.byKey[key]; exists {
			idx.Duplicates = append(idx.Duplicates, key)
			continue
		}
		idx.byKey[key] = sale
		idx.byID[sale.TransactionID] = append(idx.byID[sale.TransactionID], sale)
	}

	sort.Slice(idx.Duplicates, func(i, j int) bool {
		a, b := idx.Duplicates[i], idx.Duplicates[j]
		if a.TransactionID != b.TransactionID {
			return a.TransactionID < b.TransactionID
		}
		return a.Installment < b.Installment
	})

	return idx
}

// Lookup returns the sale row for a key, or nil when the ledger has none.
func (idx *SaleIndex) Lookup(key model.SaleKey) *model.SaleRecord {
	return idx.byKey[key]
}

// ByTransaction returns every sale row of one transaction.
func (idx *SaleIndex) ByTransaction(transactionID string) []*model.SaleRecord {
	return idx.byID[transactionID]
}

// HasTransaction reports whether the ledger knows the transaction at all.
func (idx *SaleIndex) HasTransaction(transactionID string) bool {
	return len(idx.byID[transactionID]) > 0
}

// PayableMatch pairs one payable entry with its sale-ledger counterpart.
// Sale is nil and the indicator LeftOnly when the ledger has no row for the
// payable's key.
type PayableMatch struct {
	Sale      *model.SaleRecord
	Payable   model.PayableEntry
	Indicator model.MatchIndicator
}

// PayablesToSales left-joins payable entries to the sales ledger by
// (transaction_id, installment), preserving unmatched payables.
func PayablesToSales(payables []model.PayableEntry, idx *SaleIndex) []PayableMatch {
	matches := make([]PayableMatch, 0, len(payables))
	for _, entry := range payables {
		key := model.SaleKey{TransactionID: entry.TransactionID, Installment: entry.Installment}
		match := PayableMatch{Payable: entry, Indicator: model.MatchLeftOnly}
		if sale := idx.byKey[key]; sale != nil {
			match.Sale = sale
			match.Indicator = model.MatchBoth
		}
		matches = append(matches, match)
	}
	return matches
}
