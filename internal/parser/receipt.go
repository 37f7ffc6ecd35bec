package parser

import (
	"strings"

	"github.com/insightdelivered/finance-tracker/internal/models"
)

// amountStrategy looks for the receipt amount in normalized lines.
type amountStrategy struct {
	name string
	find func(lines []string) (float64, bool)
}

// amountStrategies run in order; the first one that finds a value wins.
var amountStrategies = []amountStrategy{
	{name: "label", find: labeledAmount},
	{name: "largest", find: largestAmount},
}

// ExtractReceipt reads the amount and category out of OCR or PDF text of a
// single receipt. It never fails: an amount that cannot be found is left nil.
func ExtractReceipt(text string) models.ExtractedFields {
	fields, _ := extractReceipt(text)
	return fields
}

// extractReceipt also reports which strategy produced the amount ("" when none did).
func extractReceipt(text string) (models.ExtractedFields, string) {
	lines := NormalizeText(text)

	fields := models.ExtractedFields{
		Category: Classify(strings.Join(lines, " ")),
	}

	for _, s := range amountStrategies {
		if amount, ok := s.find(lines); ok {
			fields.Amount = &amount
			return fields, s.name
		}
	}
	return fields, ""
}

// NormalizeText strips OCR noise: every byte outside printable ASCII
// (0x20-0x7E) is dropped except newlines, then each line is trimmed and
// lower-cased and empty lines are removed.
func NormalizeText(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || (r >= 0x20 && r <= 0x7E) {
			b.WriteRune(r)
		}
	}

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// labeledAmount returns the number that follows the first "total", "amount"
// or "paid" label. A label line whose number does not parse is skipped.
func labeledAmount(lines []string) (float64, bool) {
	for _, line := range lines {
		m := labelAmountPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if v, ok := parseAmount(m[3]); ok {
			return v, true
		}
	}
	return 0, false
}

// largestAmount returns the biggest number anywhere on the receipt; on an
// itemised receipt that is normally the total.
func largestAmount(lines []string) (float64, bool) {
	found := false
	var largest float64
	for _, line := range lines {
		for _, m := range anyAmountPattern.FindAllStringSubmatch(line, -1) {
			v, ok := parseAmount(m[2])
			if !ok {
				continue
			}
			if !found || v > largest {
				largest = v
				found = true
			}
		}
	}
	return largest, found
}
