// Package rules implements the discrepancy rule engine: one rule set per
// lifecycle class, applied to classified payable groups matched against the
// sales ledger. Findings are collected, never raised, so one anomalous
// transaction cannot hide another, and the assembled report is deterministic
// regardless of input row order.
package rules

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"settlecheck/internal/classify"
	"settlecheck/internal/match"
	"settlecheck/internal/model"
)

// Numeric tolerances. Per-row amount comparison allows a cent of rounding
// slack; sum comparisons aggregate several rows and get a coarser band. Both
// are strict greater-than: a delta exactly at the tolerance passes. The
// refund-reversal rule deliberately uses none (see refund_reversal.go).
var (
	amountTolerance = decimal.RequireFromString("0.01")
	sumTolerance    = decimal.RequireFromString("0.1")
)

// Reconcile runs every rule group over the normalized tables and assembles
// the reconciliation report. The rule groups partition transactions by
// lifecycle class, so they evaluate concurrently without coordination; the
// sales index is shared read-only.
func Reconcile(payables []model.PayableEntry, transactions []model.TransactionRecord, sales []model.SaleRecord) *model.ReconciliationReport {
	started := time.Now()
	groups := classify.Groups(payables)
	saleIdx := match.NewSaleIndex(sales)

	transactionsByID := make(map[string]model.TransactionRecord, len(transactions))
	for _, tr := range transactions {
		transactionsByID[tr.TransactionID] = tr
	}

	var (
		wg       sync.WaitGroup
		single   []model.DiscrepancyRecord
		refunds  []model.DiscrepancyRecord
		cbacks   []model.DiscrepancyRecord
		reversal []model.DiscrepancyRecord
		unknown  []model.DiscrepancyRecord
		residual int
	)

	wg.Add(5)
	go func() {
		defer wg.Done()
		single = singleStatusRule(groups, transactionsByID, saleIdx)
	}()
	go func() {
		defer wg.Done()
		refunds = refundPairRule(groups, saleIdx)
	}()
	go func() {
		defer wg.Done()
		cbacks, residual = chargebackFamilyRule(groups, saleIdx)
	}()
	go func() {
		defer wg.Done()
		reversal = refundReversalRule(groups, saleIdx)
	}()
	go func() {
		defer wg.Done()
		unknown = unknownClassRule(groups)
	}()
	wg.Wait()

	report := &model.ReconciliationReport{
		RunID:                  uuid.NewString(),
		GeneratedAt:            time.Now(),
		ChargebackResidual:     residual,
		PayableStatusTally:     tallyPayables(payables),
		TransactionStatusTally: tallyTransactions(transactions),
	}

	var findings []model.DiscrepancyRecord
	findings = append(findings, single...)
	findings = append(findings, refunds...)
	findings = append(findings, cbacks...)
	findings = append(findings, reversal...)
	findings = append(findings, unknown...)
	report.Findings = dedupeSorted(findings)

	slog.Info("Ledger reconciliation finished",
		"transactions", len(groups),
		"findings", len(report.Findings),
		"chargeback_residual", residual,
		"duplicate_sale_keys", len(saleIdx.Duplicates),
		"elapsed", time.Since(started))

	return report
}

// unknownClassRule flags status combinations none of the rule sets model.
// These are reported at count-integrity severity: they mean the
// classification itself has a gap, not that the source data is dirty.
func unknownClassRule(groups []classify.Group) []model.DiscrepancyRecord {
	var findings []model.DiscrepancyRecord
	for _, group := range groups {
		if group.Class == classify.Unknown {
			findings = append(findings, model.DiscrepancyRecord{
				Category:      model.CountIntegrityViolation,
				TransactionID: group.TransactionID,
			})
		}
	}
	return findings
}

// sumPayables totals the signed payable amounts of one transaction.
func sumPayables(entries []model.PayableEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// sumSales totals amount plus refund over a transaction's sale rows, the net
// the gateway should have settled.
func sumSales(sales []*model.SaleRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range sales {
		sum = sum.Add(s.Amount).Add(s.RefundAmount)
	}
	return sum
}

// dedupeSorted removes repeated (category, transaction) findings and orders
// the rest by category, then transaction id.
func dedupeSorted(findings []model.DiscrepancyRecord) []model.DiscrepancyRecord {
	type key struct {
		category model.DiscrepancyCategory
		id       string
	}
	seen := make(map[key]bool, len(findings))
	out := findings[:0]
	for _, f := range findings {
		k := key{category: f.Category, id: f.TransactionID}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].TransactionID < out[j].TransactionID
	})

	return out
}

func tallyPayables(payables []model.PayableEntry) map[model.PayableStatus]int {
	tally := make(map[model.PayableStatus]int)
	for _, p := range payables {
		tally[p.Status]++
	}
	return tally
}

func tallyTransactions(transactions []model.TransactionRecord) map[string]int {
	tally := make(map[string]int)
	for _, tr := range transactions {
		if tr.Status != "" {
			tally[tr.Status]++
		}
	}
	return tally
}
