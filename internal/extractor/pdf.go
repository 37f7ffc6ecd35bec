package extractor

import (
	"context"
	"fmt"
	"io"
	"math"
	"os/exec"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText reads a PDF file and returns its text, pages separated by a
// newline. The ledongthuc/pdf layouts are tried first, then the external
// pdftotext command (poppler-utils). Output that fails the readability check
// is discarded, so a PDF whose fonts decode to garbage reports ErrNoText and
// can go to OCR instead.
func ExtractPDFText(ctx context.Context, filePath string) (text string, method string, err error) {
	pages, libErr := extractWithLibrary(filePath)
	if libErr == nil && isReadableText(pages) {
		return joinPages(pages), MethodPDFLibrary, nil
	}

	popplerPages, popplerErr := extractWithPdftotext(ctx, filePath)
	if popplerErr == nil && isReadableText(popplerPages) {
		return joinPages(popplerPages), MethodPdftotext, nil
	}

	if libErr != nil && !hasText(popplerPages) {
		return "", "", fmt.Errorf("PDF text extraction failed: %w", libErr)
	}
	return "", "", fmt.Errorf("%w: the PDF may be scanned or image-based", ErrNoText)
}

// Tried in order; the first readable layout wins.
var libraryMethods = []func(r *pdf.Reader, numPages int) []string{
	extractByRow,
	extractByContent,
	extractByPagePlainText,
	extractByReaderPlainText,
}

// extractWithLibrary returns the first readable layout. When none passes,
// the first non-empty one is returned so the caller can still judge it.
func extractWithLibrary(filePath string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, openErr := pdf.Open(filePath)
	if openErr != nil {
		return nil, openErr
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	var fallback []string
	for _, extract := range libraryMethods {
		got := extract(r, numPages)
		if isReadableText(got) {
			return got, nil
		}
		if fallback == nil && hasText(got) {
			fallback = got
		}
	}
	return fallback, nil
}

// extractByRow uses the library's row grouping. Runs on one row are joined
// with a single space unless one side already carries whitespace.
func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			runs := append([]pdf.Text(nil), row.Content...)
			sort.SliceStable(runs, func(a, b int) bool { return runs[a].X < runs[b].X })

			var b strings.Builder
			for _, run := range runs {
				if strings.TrimSpace(run.S) == "" {
					continue
				}
				if b.Len() > 0 && !endsInSpace(b.String()) && !startsWithSpace(run.S) {
					b.WriteByte(' ')
				}
				b.WriteString(run.S)
			}
			if line := strings.TrimSpace(b.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

const (
	// Gaps are measured in multiples of the preceding glyph's font size.
	wordGapEm       = 0.2
	columnGapEm     = 1.5
	defaultFontSize = 10.0
)

// extractByContent rebuilds rows from glyph coordinates. Whitespace glyphs
// are dropped and spacing comes from geometry instead: a word-sized gap
// becomes one space, a column-sized gap becomes two.
func extractByContent(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		rowMap := make(map[int][]pdf.Text)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rowMap[y] = append(rowMap[y], t)
		}

		// PDF Y grows upwards, so the top row has the largest key.
		ys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			ys = append(ys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		var lines []string
		for _, y := range ys {
			glyphs := rowMap[y]
			sort.SliceStable(glyphs, func(a, b int) bool { return glyphs[a].X < glyphs[b].X })
			if line := joinGlyphs(glyphs); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// joinGlyphs expects glyphs sorted by X.
func joinGlyphs(glyphs []pdf.Text) string {
	var b strings.Builder
	for i, g := range glyphs {
		if i > 0 {
			prev := glyphs[i-1]
			size := prev.FontSize
			if size <= 0 {
				size = defaultFontSize
			}
			gap := g.X - (prev.X + prev.W)
			switch {
			case gap > columnGapEm*size:
				b.WriteString("  ")
			case gap > wordGapEm*size:
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	return strings.TrimSpace(b.String())
}

// extractByPagePlainText decodes each page with its own font map, which
// helps when the shared document encoder misreads embedded fonts.
func extractByPagePlainText(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return pages
}

// extractByReaderPlainText returns the whole document as a single page.
func extractByReaderPlainText(r *pdf.Reader, _ int) []string {
	reader, err := r.GetPlainText()
	if err != nil {
		return nil
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return []string{text}
	}
	return nil
}

// extractWithPdftotext shells out to pdftotext -layout for PDFs the Go
// library cannot decode.
func extractWithPdftotext(ctx context.Context, filePath string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", filePath, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	// pdftotext separates pages with a form feed.
	var pages []string
	for _, page := range strings.Split(string(out), "\f") {
		if page = strings.TrimSpace(page); page != "" {
			pages = append(pages, page)
		}
	}
	return pages, nil
}

const (
	minReadableLen     = 10
	minReadableQuality = 0.6
)

// Vocabulary expected on receipts and ledger exports.
var commonWords = []string{
	"total", "amount", "paid", "income", "expense", "date", "balance",
	"receipt", "invoice", "bill", "tax", "gst", "cash", "card", "qty",
	"price", "payment", "credit", "debit", "ledger", "statement",
	"transaction", "rs", "inr",
}

// isReadableText rejects output that is too short, mostly undecodable
// glyphs, or free of any receipt or ledger vocabulary.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) < minReadableLen {
		return false
	}
	if textQuality(pages) <= minReadableQuality {
		return false
	}
	return containsCommonWords(pages)
}

// textQuality is the share of runes that are printable ASCII, whitespace
// or a common currency sign.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 0x20 && r <= 0x7e) || unicode.IsSpace(r) ||
				r == '₹' || r == '£' || r == '€' {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func containsCommonWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}

func endsInSpace(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && unicode.IsSpace(r)
}

func startsWithSpace(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && unicode.IsSpace(r)
}

func joinPages(pages []string) string {
	return strings.Join(pages, "\n")
}
