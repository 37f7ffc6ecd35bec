package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/finance-tracker/internal/models"
)

func TestExtractReceipt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		amount   float64
		noAmount bool
		category models.Category
	}{
		{
			name:     "labelled total with rupee prefix",
			input:    "Total: Rs. 1,250.50",
			amount:   1250.50,
			category: models.CategoryOther,
		},
		{
			name:     "falls back to largest number",
			input:    "item 100\nitem 250\nitem 75",
			amount:   250,
			category: models.CategoryOther,
		},
		{
			name:     "no numbers",
			input:    "no numbers here",
			noAmount: true,
			category: models.CategoryOther,
		},
		{
			name:     "empty input",
			input:    "",
			noAmount: true,
			category: models.CategoryOther,
		},
		{
			name: "first label wins over larger later label",
			input: `Blue Tokai Coffee
Latte 220
Muffin 180
Amount paid 400
Grand Total 999`,
			amount:   400,
			category: models.CategoryFood,
		},
		{
			name:     "dash separator and dollar sign",
			input:    "PAID - $ 42.5",
			amount:   42.5,
			category: models.CategoryOther,
		},
		{
			name:     "inr marker",
			input:    "Uber trip\nTOTAL INR 318",
			amount:   318,
			category: models.CategoryTravel,
		},
		{
			name:     "subtotal line counts as a total label",
			input:    "Subtotal 90\nTax 10",
			amount:   90,
			category: models.CategoryOther,
		},
		{
			name:     "non-ascii noise removed before matching",
			input:    "Tötal™: 15\nTotal 20",
			amount:   20,
			category: models.CategoryOther,
		},
		{
			name:     "rupee symbol never survives normalization",
			input:    "₹ 500\n₹ 700",
			amount:   700,
			category: models.CategoryOther,
		},
		{
			name:     "unparsable label number skipped",
			input:    "total ,\namount 12.75",
			amount:   12.75,
			category: models.CategoryOther,
		},
		{
			name:     "fallback ignores lone separators",
			input:    "a , b\nc 3",
			amount:   3,
			category: models.CategoryOther,
		},
		{
			name:     "fallback picks the larger of dates and prices",
			input:    "Apollo Pharmacy\n12/05/2024\nParacetamol 45.00",
			amount:   2024,
			category: models.CategoryHealth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractReceipt(tt.input)
			assert.Equal(t, tt.category, got.Category)
			if tt.noAmount {
				assert.Nil(t, got.Amount)
				assert.False(t, got.HasAmount())
				return
			}
			require.NotNil(t, got.Amount)
			assert.InDelta(t, tt.amount, *got.Amount, 1e-9)
		})
	}
}

func TestExtractReceipt_Method(t *testing.T) {
	_, method := extractReceipt("Total: 10")
	assert.Equal(t, "label", method)

	_, method = extractReceipt("coffee 10\ntea 20")
	assert.Equal(t, "largest", method)

	_, method = extractReceipt("nothing")
	assert.Equal(t, "", method)
}

func TestExtractReceipt_ZeroIsPresent(t *testing.T) {
	got := ExtractReceipt("Total 0")
	require.NotNil(t, got.Amount)
	assert.Zero(t, *got.Amount)
}

func TestExtractReceipt_NormalizedRoundTrip(t *testing.T) {
	inputs := []string{
		"Café Coffee Day\r\n  Cappuccino   120\n\n\tTOTAL: Rs. 1,120.00 ",
		"item 100\nitem 250\nitem 75",
		"Netflix Premium 649",
		"nothing to see",
	}

	for _, in := range inputs {
		first := ExtractReceipt(in)
		again := ExtractReceipt(strings.Join(NormalizeText(in), "\n"))
		assert.Equal(t, first, again, "input %q", in)
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"\n\n  \n", nil},
		{"  Hello World  ", []string{"hello world"}},
		{"A\r\nB", []string{"a", "b"}},
		{"tab\there", []string{"tabhere"}},
		{"₹100 Café", []string{"100 caf"}},
		{"line1\n\nline2", []string{"line1", "line2"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeText(tt.input))
		})
	}
}

func TestLabelAmountPattern(t *testing.T) {
	tests := []struct {
		line   string
		number string
	}{
		{"total: rs. 1,250.50", "1,250.50"},
		{"grand total 999", "999"},
		{"amount-inr 20", "20"},
		{"paid $3.5", "3.5"},
		{"total 12.345", "12.34"},
		{"items 3", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m := labelAmountPattern.FindStringSubmatch(tt.line)
			if tt.number == "" {
				assert.Nil(t, m)
				return
			}
			require.NotNil(t, m)
			assert.Equal(t, tt.number, m[3])
		})
	}
}
