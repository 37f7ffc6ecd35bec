package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ErrOCRUnavailable is returned when the tesseract binary cannot be found.
var ErrOCRUnavailable = errors.New("tesseract not available (install tesseract-ocr)")

// OCR recognises text in receipt images with the Tesseract command line tool.
type OCR struct {
	// Language is passed to tesseract -l. Defaults to "eng".
	Language string
	// Binary overrides the tesseract executable name or path.
	Binary string
}

// IsOCRAvailable reports whether the tesseract binary is on PATH.
func IsOCRAvailable() bool {
	_, err := exec.LookPath("tesseract")
	return err == nil
}

// ExtractText runs tesseract on an image file and returns the recognised text.
// An image with no legible text yields "" and no error.
func (o OCR) ExtractText(ctx context.Context, imagePath string) (string, error) {
	bin := o.Binary
	if bin == "" {
		bin = "tesseract"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return "", fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
	}

	lang := o.Language
	if lang == "" {
		lang = "eng"
	}

	// PSM 4 = single column of text of variable sizes, which suits receipts.
	cmd := exec.CommandContext(ctx, bin, imagePath, "stdout", "-l", lang, "--psm", "4")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w (output: %s)", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(string(out)), nil
}

// ExtractPDFText rasterises a scanned PDF with pdftoppm (poppler-utils) and
// runs each page image through ExtractText. Pages that fail are skipped.
func (o OCR) ExtractPDFText(ctx context.Context, pdfPath string) (string, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return "", fmt.Errorf("%w: pdftoppm not available (install poppler-utils)", ErrOCRUnavailable)
	}

	tmpDir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// 300 DPI keeps small receipt print legible.
	imgPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", "300", "-png", pdfPath, imgPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return "", fmt.Errorf("failed to read temp dir: %w", err)
	}
	var images []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			images = append(images, filepath.Join(tmpDir, e.Name()))
		}
	}
	sort.Strings(images)
	if len(images) == 0 {
		return "", errors.New("pdftoppm produced no page images")
	}

	var pages []string
	for _, img := range images {
		text, err := o.ExtractText(ctx, img)
		if err != nil {
			if errors.Is(err, ErrOCRUnavailable) || ctx.Err() != nil {
				return "", err
			}
			continue
		}
		if text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("%w: OCR found nothing on %d page image(s)", ErrNoText, len(images))
	}
	return joinPages(pages), nil
}
