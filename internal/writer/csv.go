package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/finance-tracker/internal/models"
)

// csvRow is the on-disk shape of a ledger entry.
type csvRow struct {
	Date     string `csv:"date"`
	Note     string `csv:"note"`
	Amount   string `csv:"amount"`
	Type     string `csv:"type"`
	Category string `csv:"category"`
}

// CSVWriter writes parsed ledger entries to CSV format.
type CSVWriter struct{}

// WriteToFile writes entries to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, entries []models.LedgerLine) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}

	if err := w.Write(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write writes entries in CSV format to out. The header row is always written.
func (w *CSVWriter) Write(out io.Writer, entries []models.LedgerLine) error {
	rows := make([]csvRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, csvRow{
			Date:     e.Date,
			Note:     e.Note,
			Amount:   formatAmount(e.Amount),
			Type:     string(e.Type),
			Category: string(e.Category),
		})
	}

	if err := gocsv.Marshal(rows, out); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

func formatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
