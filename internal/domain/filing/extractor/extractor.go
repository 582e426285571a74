// Package extractor turns report PDFs into the layout-preserving text the parser reads.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrPageCountMismatch marks a PDF whose extracted text does not account for every page.
// Retrying the same file gives the same result.
var ErrPageCountMismatch = errors.New("page count mismatch")

// TextExtractor extracts the text of a PDF with its column layout preserved and pages
// separated by form feeds.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// PdfToText runs poppler's pdftotext in layout mode.
type PdfToText struct {
	Binary string
}

// NewPdfToText creates an extractor for the given pdftotext binary; empty means "pdftotext" on PATH.
func NewPdfToText(binary string) *PdfToText {
	if binary == "" {
		binary = "pdftotext"
	}
	return &PdfToText{Binary: binary}
}

// ExtractText runs `pdftotext -layout <path> -` and returns its standard output.
func (e *PdfToText) ExtractText(ctx context.Context, path string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Binary, "-layout", path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("failed to extract text from %s: %w: %s", path, err, msg)
		}
		return "", fmt.Errorf("failed to extract text from %s: %w", path, err)
	}
	return stdout.String(), nil
}

// MockExtractor returns fixed text, for tests.
type MockExtractor struct {
	Text string
	Err  error
}

// ExtractText returns the configured text or error.
func (e *MockExtractor) ExtractText(_ context.Context, _ string) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.Text, nil
}

// CountPages reads the page count from the PDF's page tree.
func CountPages(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer f.Close()

	return r.NumPage(), nil
}

// TextPageCount returns how many pages pdftotext output holds. Every page, the last
// included, ends with a form feed.
func TextPageCount(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\f")
	if !strings.HasSuffix(text, "\f") {
		n++
	}
	return n
}

// VerifyPageCount checks extracted text against the PDF's own page count.
func VerifyPageCount(text string, pages int) error {
	if got := TextPageCount(text); got != pages {
		return fmt.Errorf("%w: extracted text has %d pages, pdf has %d", ErrPageCountMismatch, got, pages)
	}
	return nil
}
