// Package pdf extracts plain text from PDF files.
package pdf

import (
	"context"
	"fmt"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
)

// Extractor extracts text from PDF files using a pure Go PDF reader,
// no external tooling required.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// ExtractText extracts the text of every page, pages separated by a
// blank line, and returns the page count.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	f, reader, err := ledongthuc.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("%w: opening %s: %v", domain.ErrExtraction, path, err)
	}
	defer f.Close()

	pageCount := reader.NumPage()
	pages := make([]string, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single damaged page should not lose the whole paper.
			continue
		}
		pages = append(pages, text)
	}

	text := strings.Join(pages, "\n\n")
	if strings.TrimSpace(text) == "" {
		return "", 0, fmt.Errorf("%w: no text extracted from %s", domain.ErrExtraction, path)
	}
	return text, pageCount, nil
}
