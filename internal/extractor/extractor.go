// Package extractor turns uploaded receipt images and PDFs into raw text.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Format is the kind of file an upload contains.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatImage Format = "image"
)

// Extraction methods reported in Result.Method.
const (
	MethodPDFLibrary = "pdf-library"
	MethodPdftotext  = "pdftotext"
	MethodOCR        = "tesseract"
	MethodPDFOCR     = "pdftoppm+tesseract"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither PDF nor image.
	ErrUnsupportedFormat = errors.New("unsupported file format: upload a PDF or an image")
	// ErrNoText is returned when a PDF yields no text at all.
	ErrNoText = errors.New("no text could be extracted")
)

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// DetectFormat classifies a file from its name and first bytes. Content wins
// over the extension when both are available.
func DetectFormat(name string, head []byte) (Format, error) {
	if bytes.HasPrefix(head, []byte("%PDF-")) {
		return FormatPDF, nil
	}
	if len(head) > 0 {
		ct := http.DetectContentType(head)
		if strings.HasPrefix(ct, "image/") {
			return FormatImage, nil
		}
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".pdf" {
		return FormatPDF, nil
	}
	if imageExtensions[ext] {
		return FormatImage, nil
	}
	return "", fmt.Errorf("%w (%q)", ErrUnsupportedFormat, name)
}

// DetectFileFormat reads the head of a file and calls DetectFormat.
func DetectFileFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return DetectFormat(path, head[:n])
}

// Result is the text pulled out of one file.
type Result struct {
	Text   string `json:"text"`
	Format Format `json:"format"`
	Method string `json:"method"`
}

// Extractor dispatches files to the PDF or OCR backend.
type Extractor struct {
	OCR OCR
}

// New returns an extractor whose OCR backend uses the given tesseract language.
func New(ocrLanguage string) *Extractor {
	return &Extractor{OCR: OCR{Language: ocrLanguage}}
}

// Extract returns the raw text of the file at path.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return Result{}, err
	}

	switch format {
	case FormatPDF:
		text, method, err := ExtractPDFText(ctx, path)
		if errors.Is(err, ErrNoText) {
			// Scanned PDF without a text layer.
			ocrText, ocrErr := e.OCR.ExtractPDFText(ctx, path)
			if ocrErr == nil {
				return Result{Text: ocrText, Format: format, Method: MethodPDFOCR}, nil
			}
			if errors.Is(ocrErr, ErrOCRUnavailable) {
				return Result{Format: format}, fmt.Errorf("%w: %w", err, ocrErr)
			}
		}
		if err != nil {
			return Result{Format: format}, err
		}
		return Result{Text: text, Format: format, Method: method}, nil
	default:
		text, err := e.OCR.ExtractText(ctx, path)
		if err != nil {
			return Result{Format: format}, err
		}
		return Result{Text: text, Format: format, Method: MethodOCR}, nil
	}
}
