package parser

import (
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"25.99", 25.99, true},
		{"1,234.56", 1234.56, true},
		{"1,234,567.89", 1234567.89, true},
		{"0", 0, true},
		{" 25.9 ", 25.9, true},
		{"15000", 15000, true},
		{",", 0, false},
		{"", 0, false},
		{"-25.99", 0, false},
		{"1.2.3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseAmount(tt.input)
			if ok != tt.ok {
				t.Fatalf("parseAmount(%q) ok: got %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("parseAmount(%q): got %f, want %f", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsoDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"01/01/2024", "2024-01-01", true},
		{"15/03/2024", "2024-03-15", true},
		{"29/02/2024", "2024-02-29", true},
		{"29/02/2023", "", false},
		{"13/13/2024", "", false},
		{"2024-01-01", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := isoDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("isoDate(%q) ok: got %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("isoDate(%q): got %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines("a\r\nb\nc")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("splitLines: got %q", got)
	}
}
