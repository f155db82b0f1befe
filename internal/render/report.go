package render

import (
	"fmt"
	"sort"
	"strings"

	"settlecheck/internal/model"
)

// ruleOrder fixes the presentation order of finding categories.
var ruleOrder = []model.DiscrepancyCategory{
	model.InvalidStatus,
	model.InvalidInstallmentCount,
	model.InvalidMissingSale,
	model.InvalidUnexpectedRefund,
	model.InvalidAmountMismatch,
	model.InvalidNoSale,
	model.InvalidSumError,
	model.InvalidRefundNoChargeback,
	model.InvalidNoCounterpart,
	model.CountIntegrityViolation,
}

// Reconciliation renders the ledger-side report for the terminal.
func Reconciliation(report *model.ReconciliationReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Ledger reconciliation"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("run %s · %s", report.RunID, report.GeneratedAt.Format("2006-01-02 15:04:05"))))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Payable status tally"))
	b.WriteString("\n")
	for _, status := range sortedStatuses(report.PayableStatusTally) {
		b.WriteString(fmt.Sprintf("  %-20s %d\n", status, report.PayableStatusTally[model.PayableStatus(status)]))
	}
	b.WriteString("\n")

	if !report.HasFindings() {
		b.WriteString(successStyle.Render("No discrepancies found."))
		b.WriteString("\n")
		return b.String()
	}

	for _, category := range ruleOrder {
		ids := report.IDs(category)
		if len(ids) == 0 {
			continue
		}
		style := warningStyle
		if category == model.CountIntegrityViolation {
			style = errorStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s (%d)", category, len(ids))))
		b.WriteString("\n")
		for _, id := range ids {
			b.WriteString("  " + id + "\n")
		}
	}

	if report.ChargebackResidual != 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("chargeback count identity residual: %+d", report.ChargebackResidual)))
		b.WriteString("\n")
	}

	return b.String()
}

// Statement renders the bank-statement report for the terminal.
func Statement(report *model.StatementReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Statement reconciliation %d", report.Year)))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("run %s · %s", report.RunID, report.GeneratedAt.Format("2006-01-02 15:04:05"))))
	b.WriteString("\n\n")

	matched := len(report.Rows) - len(report.OnlyIn(model.MatchLeftOnly)) - len(report.OnlyIn(model.MatchRightOnly))
	b.WriteString(sectionStyle.Render("Join summary"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  matched              %d\n", matched))
	b.WriteString(fmt.Sprintf("  ledger only          %d\n", len(report.OnlyIn(model.MatchLeftOnly))))
	b.WriteString(fmt.Sprintf("  statement only       %d\n", len(report.OnlyIn(model.MatchRightOnly))))
	b.WriteString(fmt.Sprintf("  unresolved NSUs      %d\n", len(report.UnresolvedNSUs)))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Monthly totals (ledger cash view)"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("  month     gross        fee          cancel       fee reimb    interest     total"))
	b.WriteString("\n")
	for _, m := range report.Monthly {
		b.WriteString(fmt.Sprintf("  %s   %-12s %-12s %-12s %-12s %-12s %s\n",
			m.Month.Format("2006-01"),
			m.Gross.StringFixed(2), m.Fee.StringFixed(2), m.Cancellation.StringFixed(2),
			m.FeeReimbursement.StringFixed(2), m.LateInterest.StringFixed(2), m.Total.StringFixed(2)))
	}

	if len(report.UnresolvedNSUs) > 0 {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render(fmt.Sprintf("unresolved NSUs (%d)", len(report.UnresolvedNSUs))))
		b.WriteString("\n")
		for _, nsu := range report.UnresolvedNSUs {
			b.WriteString("  " + nsu + "\n")
		}
	}

	return b.String()
}

func sortedStatuses(tally map[model.PayableStatus]int) []string {
	statuses := make([]string, 0, len(tally))
	for status := range tally {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	return statuses
}
