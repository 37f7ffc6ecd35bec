package api

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/finance-tracker/internal/auth"
	"github.com/insightdelivered/finance-tracker/internal/extractor"
	"github.com/insightdelivered/finance-tracker/internal/models"
	"github.com/insightdelivered/finance-tracker/internal/parser"
	"github.com/insightdelivered/finance-tracker/internal/writer"
)

// ReceiptResponse is returned by /api/extract-receipt.
type ReceiptResponse struct {
	Text     string          `json:"text"`
	Amount   float64         `json:"amount"`
	Category models.Category `json:"category"`
	Method   string          `json:"method,omitempty"`
}

// LedgerResponse is returned by /api/upload-pdf-transactions.
type LedgerResponse struct {
	Message string              `json:"message"`
	Count   int                 `json:"count"`
	Entries []models.LedgerLine `json:"entries"`
	Saved   *int                `json:"saved,omitempty"`
}

// HandleHealth reports liveness.
func (s *Server) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": s.cfg.Version,
	})
}

// HandleExtractReceipt reads one receipt (PDF or image) and returns the
// detected total and category.
func (s *Server) HandleExtractReceipt(c *fiber.Ctx) error {
	path, cleanup, err := saveUpload(c)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := extractor.DetectFileFormat(path); err != nil {
		s.metrics.receipts.WithLabelValues("rejected").Inc()
		s.logger.Warn("format detection failed", "error", err)
		return extractionError(err)
	}

	res, err := s.extractText(c, path)
	if err != nil {
		s.metrics.receipts.WithLabelValues("error").Inc()
		return err
	}

	fields := parser.ExtractReceipt(res.Text)
	if !fields.HasAmount() || *fields.Amount <= 0 {
		s.metrics.receipts.WithLabelValues("no_amount").Inc()
		return fiber.NewError(fiber.StatusBadRequest, "Amount not detected in the uploaded file")
	}

	s.metrics.receipts.WithLabelValues("ok").Inc()
	return c.JSON(ReceiptResponse{
		Text:     res.Text,
		Amount:   *fields.Amount,
		Category: fields.Category,
		Method:   res.Method,
	})
}

// HandleUploadLedger parses a ledger PDF. With save=true the rows are stored
// for the authenticated user; with format=csv they are returned as CSV.
func (s *Server) HandleUploadLedger(c *fiber.Ctx) error {
	save := c.FormValue("save") == "true"
	asCSV := strings.EqualFold(c.FormValue("format"), "csv")

	userID := auth.UserID(c)
	if save {
		if s.store == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Saving requires a database")
		}
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Token required")
		}
	}

	path, cleanup, err := saveUpload(c)
	if err != nil {
		return err
	}
	defer cleanup()

	format, err := extractor.DetectFileFormat(path)
	if err != nil {
		s.logger.Warn("format detection failed", "error", err)
		return extractionError(err)
	}
	if format != extractor.FormatPDF {
		return fiber.NewError(fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	res, err := s.extractText(c, path)
	if err != nil {
		return err
	}

	entries := parser.ParseLedger(res.Text)
	s.metrics.ledgerLines.Add(float64(len(entries)))

	var saved *int
	if save {
		txs := make([]models.Transaction, 0, len(entries))
		for _, e := range entries {
			txs = append(txs, models.FromLedgerLine(e))
		}
		n, err := s.store.CreateTransactions(userContext(c), userID, txs)
		if err != nil {
			return err
		}
		saved = &n
	}

	if asCSV {
		var buf bytes.Buffer
		if err := (&writer.CSVWriter{}).Write(&buf, entries); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions.csv"`)
		return c.Send(buf.Bytes())
	}

	return c.JSON(LedgerResponse{
		Message: "Transactions extracted",
		Count:   len(entries),
		Entries: entries,
		Saved:   saved,
	})
}

func (s *Server) extractText(c *fiber.Ctx, path string) (extractor.Result, error) {
	start := time.Now()
	res, err := s.extractor.Extract(userContext(c), path)

	label := string(res.Format)
	if label == "" {
		label = "unknown"
	}
	s.metrics.extractionSeconds.WithLabelValues(label).Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.extractFailures.WithLabelValues(label).Inc()
		s.logger.Warn("text extraction failed", "format", label, "error", err)
		return res, extractionError(err)
	}
	return res, nil
}

func extractionError(err error) error {
	switch {
	case errors.Is(err, extractor.ErrUnsupportedFormat):
		return fiber.NewError(fiber.StatusBadRequest, "Unsupported file format. Upload a PDF or an image.")
	case errors.Is(err, extractor.ErrOCRUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, "OCR is not available on this server")
	case errors.Is(err, extractor.ErrNoText):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "No text could be extracted from the file")
	default:
		// Details stay in the server log; they can carry temp paths and tool output.
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Text extraction failed")
	}
}

// saveUpload copies the multipart "file" field to a temp file. The returned
// cleanup removes it.
func saveUpload(c *fiber.Ctx) (string, func(), error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}

	src, err := fh.Open()
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file.")
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "upload-*"+strings.ToLower(filepath.Ext(fh.Filename)))
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return tmp.Name(), cleanup, nil
}
