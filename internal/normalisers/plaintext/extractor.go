// Package plaintext extracts text from files that already are text.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
)

// Extractor handles plain text and markdown files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".txt", ".md", ".text"}
}

// ExtractText reads the file verbatim. The page count is always 1;
// text files have no page structure.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("%w: reading %s: %v", domain.ErrExtraction, path, err)
	}
	if !utf8.Valid(data) {
		return "", 0, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrExtraction, path)
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", 0, fmt.Errorf("%w: %s is empty", domain.ErrExtraction, path)
	}
	return text, 1, nil
}
