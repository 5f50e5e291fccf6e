package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
	"github.com/paperdex/paperdex-cli/internal/core/ports/driven"
)

// Extractor is a text extractor that declares which file extensions it
// handles.
type Extractor interface {
	driven.TextExtractor

	// Extensions returns the file extensions this extractor handles,
	// lower-case with leading dot (".pdf").
	Extensions() []string
}

// Ensure Registry itself satisfies the extractor port.
var _ driven.TextExtractor = (*Registry)(nil)

// Registry dispatches extraction to the extractor registered for the
// file's extension.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt: make(map[string]Extractor),
	}
}

// Register adds an extractor for all extensions it declares. A later
// registration for the same extension wins.
func (r *Registry) Register(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether a file's extension has a registered
// extractor.
func (r *Registry) Supports(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ExtractText extracts plain text from the file using the extractor
// registered for its extension.
func (r *Registry) ExtractText(ctx context.Context, path string) (string, int, error) {
	ext := strings.ToLower(filepath.Ext(path))

	r.mu.RLock()
	e, ok := r.byExt[ext]
	r.mu.RUnlock()

	if !ok {
		return "", 0, fmt.Errorf("%w: unsupported file type %q", domain.ErrExtraction, ext)
	}
	return e.ExtractText(ctx, path)
}
