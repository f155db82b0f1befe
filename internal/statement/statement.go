// Package statement reconciles the bank's cash movements against the sales
// ledger. The statement is the ground truth for money actually moving; the
// ledger is what the business believes happened. Statement postings are
// aggregated per (nsu, installment), resolved to transaction ids through the
// cached NSU lookup, and outer-joined against the ledger rows whose sale cash
// date falls inside the reporting year.
package statement

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"settlecheck/internal/match"
	"settlecheck/internal/model"
	"settlecheck/internal/normalize"
)

// Reconcile builds the statement report for one reporting year.
// nsuToTransaction is the cached transaction→nsu lookup inverted for joining;
// it must cover the statement's NSUs independent of the current run's freshly
// loaded tables.
func Reconcile(sales []model.SaleRecord, entries []model.StatementEntry, nsuToTransaction map[string]string, year int) *model.StatementReport {
	started := time.Now()

	rows, unresolved := aggregate(entries, nsuToTransaction)
	windowed := windowSales(sales, year)

	report := &model.StatementReport{
		RunID:          uuid.NewString(),
		GeneratedAt:    time.Now(),
		Year:           year,
		Rows:           match.StatementToSales(windowed, rows),
		Monthly:        monthlyTotals(windowed),
		UnresolvedNSUs: unresolved,
	}

	slog.Info("Statement reconciliation finished",
		"year", year,
		"statement_rows", len(rows),
		"ledger_rows", len(windowed),
		"unresolved_nsus", len(unresolved),
		"elapsed", time.Since(started))

	return report
}

// aggregate folds physical postings into one row per (nsu, installment).
// Multiple postings per key are expected (a sale and its later refund land
// on the same key) and are summed, not treated as a key violation. The
// cash-date max works because the no-value sentinel predates any real date.
func aggregate(entries []model.StatementEntry, nsuToTransaction map[string]string) ([]model.StatementRow, []string) {
	type key struct {
		nsu         string
		installment int
	}

	rows := make(map[key]*model.StatementRow)
	var order []key

	for _, entry := range entries {
		k := key{nsu: entry.NSU, installment: entry.Installment}
		row, ok := rows[k]
		if !ok {
			row = &model.StatementRow{
				NSU:           entry.NSU,
				Installment:   entry.Installment,
				TransactionID: nsuToTransaction[entry.NSU],
				CashSide: model.CashSide{
					SaleCashDate:   model.NoValueDate,
					RefundCashDate: model.NoValueDate,
				},
			}
			rows[k] = row
			order = append(order, k)
		}

		// One physical posting is either a sale or a refund, never both:
		// the entry's sign decides which side it lands on, fee included.
		day := normalize.Day(entry.OperationDate)
		if entry.Amount.IsNegative() {
			row.RefundAmount = row.RefundAmount.Add(entry.Amount)
			row.RefundFee = row.RefundFee.Add(entry.Fee)
			if day.After(row.RefundCashDate) {
				row.RefundCashDate = day
			}
		} else {
			row.SaleAmount = row.SaleAmount.Add(entry.Amount)
			row.SaleFee = row.SaleFee.Add(entry.Fee)
			if day.After(row.SaleCashDate) {
				row.SaleCashDate = day
			}
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].nsu != order[j].nsu {
			return order[i].nsu < order[j].nsu
		}
		return order[i].installment < order[j].installment
	})

	out := make([]model.StatementRow, 0, len(order))
	unresolvedSet := make(map[string]bool)
	for _, k := range order {
		row := rows[k]
		if row.TransactionID == "" {
			unresolvedSet[row.NSU] = true
		}
		out = append(out, *row)
	}

	unresolved := make([]string, 0, len(unresolvedSet))
	for nsu := range unresolvedSet {
		unresolved = append(unresolved, nsu)
	}
	sort.Strings(unresolved)

	return out, unresolved
}

// windowSales keeps the ledger rows whose sale cash date falls inside the
// reporting calendar year.
func windowSales(sales []model.SaleRecord, year int) []model.SaleRecord {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(1, 0, 0)

	var windowed []model.SaleRecord
	for _, sale := range sales {
		if sale.CashDate.IsZero() {
			continue
		}
		if sale.CashDate.Before(from) || !sale.CashDate.Before(until) {
			continue
		}
		windowed = append(windowed, sale)
	}
	return windowed
}

// monthlyTotals buckets windowed ledger rows by calendar month of the sale
// cash date and sums every cash column. This is a diagnostic aggregate for
// eyeballing against the bank's monthly totals, not a per-row pass/fail rule.
func monthlyTotals(sales []model.SaleRecord) []model.MonthlyTotals {
	byMonth := make(map[time.Time]*model.MonthlyTotals)
	var order []time.Time

	for _, sale := range sales {
		month := time.Date(sale.CashDate.Year(), sale.CashDate.Month(), 1, 0, 0, 0, 0, time.UTC)
		totals, ok := byMonth[month]
		if !ok {
			totals = &model.MonthlyTotals{Month: month}
			byMonth[month] = totals
			order = append(order, month)
		}
		totals.Gross = totals.Gross.Add(sale.GrossAmount)
		totals.Fee = totals.Fee.Add(sale.Fee)
		totals.Cancellation = totals.Cancellation.Add(sale.RefundAmount)
		totals.FeeReimbursement = totals.FeeReimbursement.Add(sale.FeeReimbursement)
		totals.LateInterest = totals.LateInterest.Add(sale.LateInterest)
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	out := make([]model.MonthlyTotals, 0, len(order))
	for _, month := range order {
		totals := byMonth[month]
		totals.Total = totals.Gross.
			Add(totals.Fee).
			Add(totals.Cancellation).
			Add(totals.FeeReimbursement).
			Add(totals.LateInterest)
		out = append(out, *totals)
	}

	return out
}
