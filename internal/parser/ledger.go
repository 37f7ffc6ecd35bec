package parser

import (
	"strings"

	"github.com/insightdelivered/finance-tracker/internal/models"
)

// ParseLedger extracts transaction rows from the text of a ledger PDF.
//
// Only lines shaped like
//
//	01/01/2024  Amazon Purchase  1,000.00  Expense
//
// are rows; headers, footers and anything else are skipped. Rows keep their
// order in the text. The result is never nil.
func ParseLedger(text string) []models.LedgerLine {
	entries := []models.LedgerLine{}
	for _, line := range splitLines(text) {
		if entry, ok := parseLedgerLine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// parseLedgerLine parses one row. Lines with an impossible date or an
// unparsable amount are treated like any other non-row line.
func parseLedgerLine(line string) (models.LedgerLine, bool) {
	m := ledgerLinePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return models.LedgerLine{}, false
	}

	date, ok := isoDate(m[1])
	if !ok {
		return models.LedgerLine{}, false
	}
	amount, ok := parseAmount(m[3])
	if !ok {
		return models.LedgerLine{}, false
	}
	txType, ok := models.ParseTxType(m[4])
	if !ok {
		return models.LedgerLine{}, false
	}

	note := strings.TrimSpace(m[2])
	return models.LedgerLine{
		Date:     date,
		Note:     note,
		Amount:   amount,
		Type:     txType,
		Category: Classify(note),
	}, true
}
