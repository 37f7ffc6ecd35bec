package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Line grammars. Each one is matched against a single line of text.
var (
	// A label word, optional ":" or "-", optional currency marker, then a
	// number with optional thousands separators and up to two decimals.
	// e.g. "grand total: rs. 1,250.50"
	labelAmountPattern = regexp.MustCompile(
		`(?i)(total|amount|grand total|paid)\s*[:\-]?\s*(rs\.?|inr|₹|\$)?\s*([\d,]+(?:\.\d{1,2})?)`,
	)

	// Any number, optionally preceded by a currency marker.
	anyAmountPattern = regexp.MustCompile(
		`(?i)(₹|rs\.?|inr|\$)?\s*([\d,]+(?:\.\d{1,2})?)`,
	)

	// DATE  NOTE  AMOUNT  TYPE
	// e.g. "01/01/2024  Amazon Purchase  1,000.00  Expense"
	// Columns may be split by Unicode spaces (NBSP is common in PDF text layers).
	ledgerLinePattern = regexp.MustCompile(
		`(?i)^(\d{2}/\d{2}/\d{4})[\s\p{Zs}]+(.+?)[\s\p{Zs}]+([\d,]+(?:\.\d{1,2})?)[\s\p{Zs}]+(income|expense)`,
	)
)

const (
	ledgerDateLayout = "02/01/2006"
	isoDateLayout    = "2006-01-02"
)

// parseAmount converts "1,234.56" to 1234.56. Thousands separators are
// dropped; anything left that is not a plain non-negative decimal fails.
func parseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// isoDate rewrites a dd/mm/yyyy date as yyyy-mm-dd. Dates that do not exist
// on the calendar (31/02/2024) are rejected.
func isoDate(s string) (string, bool) {
	t, err := time.Parse(ledgerDateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return t.Format(isoDateLayout), true
}

// splitLines splits on LF, tolerating CRLF input.
func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
