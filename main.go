package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/insightdelivered/finance-tracker/internal/config"
	"github.com/insightdelivered/finance-tracker/internal/extractor"
	"github.com/insightdelivered/finance-tracker/internal/logging"
	"github.com/insightdelivered/finance-tracker/internal/models"
	"github.com/insightdelivered/finance-tracker/internal/parser"
	"github.com/insightdelivered/finance-tracker/internal/writer"
)

const version = "1.0.0"

func main() {
	// CLI flags
	modeFlag := flag.String("mode", "auto", "Document kind: receipt, ledger or auto")
	outputFlag := flag.String("output", "", "Output CSV path for ledgers (defaults to input filename with .csv extension)")
	jsonFlag := flag.Bool("json", false, "Print ledger entries as JSON instead of writing CSV")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API")
	migrateFlag := flag.Bool("migrate", false, "Apply database migrations and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Finance Tracker
Reads receipts and ledger PDFs into categorised transactions.

Usage:
  finance-tracker [flags] <file> [file ...]
  finance-tracker --serve
  finance-tracker --migrate

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Detect the document kind and print what was found
  finance-tracker receipt.jpg

  # Convert a ledger export to CSV
  finance-tracker --mode=ledger --output=jan.csv ledger.pdf

  # Start the API on $PORT (default 5000)
  finance-tracker --serve

Environment:
  PORT, DATABASE_URL, JWT_SECRET, JWT_TTL_HOURS, UPLOAD_LIMIT_MB, OCR_LANGUAGE,
  STATIC_DIR, RATE_LIMIT_PER_MINUTE, CORS_ORIGINS, LOG_LEVEL, LOG_JSON
  A .env file in the working directory is loaded first.
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("finance-tracker v%s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("Config error: %v\n", err)
	}
	logger := logging.Setup(logging.DefaultConfig())

	switch {
	case *migrateFlag:
		if err := runMigrate(cfg, logger); err != nil {
			fatalf("Migration failed: %v\n", err)
		}
		return
	case *serveFlag:
		if err := runServer(cfg, logger); err != nil {
			fatalf("Server error: %v\n", err)
		}
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	kind, err := parser.ParseKind(*modeFlag)
	if err != nil {
		fatalf("%v\n", err)
	}

	ext := extractor.New(cfg.OCRLanguage)
	inputFiles := flag.Args()
	for _, inputPath := range inputFiles {
		outPath := *outputFlag
		if len(inputFiles) > 1 {
			outPath = ""
		}
		if err := processFile(ext, inputPath, kind, outPath, *jsonFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

func processFile(ext *extractor.Extractor, inputPath string, kind models.DocumentKind, outputPath string, asJSON bool) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	fmt.Fprintf(os.Stderr, "Processing: %s\n", inputPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := ext.Extract(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("text extraction failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "  Extracted %d characters (%s, %s)\n", len(res.Text), res.Format, res.Method)

	result := parser.Parse(kind, res.Text)
	if kind == "" {
		fmt.Fprintf(os.Stderr, "  Auto-detected: %s\n", result.Kind)
	}

	if result.Kind == models.KindReceipt {
		if !result.Receipt.HasAmount() {
			fmt.Fprintln(os.Stderr, "  Warning: no amount detected.")
		}
		return printJSON(result)
	}

	fmt.Fprintf(os.Stderr, "  Found %d ledger row(s)\n", len(result.Entries))
	if len(result.Entries) == 0 {
		fmt.Fprintln(os.Stderr, "  Warning: no rows matched DD/MM/YYYY <note> <amount> <Income|Expense>.")
	}

	if asJSON {
		return printJSON(result)
	}

	outPath := outputPath
	if outPath == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outPath = base + ".csv"
	}

	w := &writer.CSVWriter{}
	if err := w.WriteToFile(outPath, result.Entries); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "  Output: %s\n", outPath)
	fmt.Fprintln(os.Stderr, "  Done.")
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
