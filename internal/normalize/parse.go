// Package normalize converts raw per-source rows into the canonical typed
// records of the model package. All locale, format and identifier quirks of
// the upstream systems are isolated here: downstream packages only ever see
// parsed records.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseGatewayID splits the compound gateway identifier
// "<installment>-<transaction_id>" into its parts. An installment literal of
// 0 means "single installment" upstream and is remapped to 1.
func ParseGatewayID(s string) (installment int, transactionID string, err error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, "", fmt.Errorf("malformed gateway id %q", s)
	}

	installment, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", fmt.Errorf("malformed gateway id %q: %w", s, err)
	}
	if installment == 0 {
		installment = 1
	}

	return installment, parts[1], nil
}

// ParseLocaleDecimal parses an amount written with "." as thousands separator
// and "," as decimal separator (the bank statement convention, e.g.
// "1.234,56"). The statement's "-" placeholder means "no value" and parses
// as zero. Ledger-sourced amounts are already standard decimals and must not
// go through this function.
func ParseLocaleDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}

	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a locale decimal: %q", s)
	}
	return d, nil
}

// NormalizeNSU canonicalizes an external settlement reference. NSUs arrive
// from one source as stringified floats ("123456.0"); the fractional artifact
// is stripped so both sides key identically.
func NormalizeNSU(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	return s
}

// Day truncates a timestamp to its date, time-zone naive, for date-bucket
// comparisons.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ledger date layouts, tried in order.
var ledgerDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// statementDateLayout is the bank's day-first timestamp format.
const statementDateLayout = "02/01/2006 15:04"

func parseLedgerDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range ledgerDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func parseStatementDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := time.Parse(statementDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date %q", s)
	}
	return t, nil
}
