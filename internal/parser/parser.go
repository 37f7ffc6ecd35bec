package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/finance-tracker/internal/models"
)

// Result is the outcome of running a document through its parser.
type Result struct {
	Kind    models.DocumentKind     `json:"kind"`
	Receipt *models.ExtractedFields `json:"receipt,omitempty"`
	Entries []models.LedgerLine     `json:"entries,omitempty"`
	Method  string                  `json:"method,omitempty"` // receipt amount strategy that matched
}

// ParseKind maps a user-supplied mode to a document kind.
// "" and "auto" return ok with an empty kind, meaning detect from content.
func ParseKind(s string) (models.DocumentKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return "", nil
	case "receipt":
		return models.KindReceipt, nil
	case "ledger", "statement":
		return models.KindLedger, nil
	default:
		return "", fmt.Errorf("unsupported document kind: %q", s)
	}
}

// AutoDetect decides whether text is a ledger export or a single receipt.
// Any line in ledger row shape makes it a ledger.
func AutoDetect(text string) models.DocumentKind {
	for _, line := range splitLines(text) {
		if _, ok := parseLedgerLine(line); ok {
			return models.KindLedger
		}
	}
	return models.KindReceipt
}

// Parse runs text through the parser for kind, detecting the kind when it is empty.
func Parse(kind models.DocumentKind, text string) Result {
	if kind == "" {
		kind = AutoDetect(text)
	}

	if kind == models.KindLedger {
		return Result{Kind: kind, Entries: ParseLedger(text)}
	}

	fields, method := extractReceipt(text)
	return Result{Kind: models.KindReceipt, Receipt: &fields, Method: method}
}
