package normalisers

import (
	"github.com/paperdex/paperdex-cli/internal/normalisers/pdf"
	"github.com/paperdex/paperdex-cli/internal/normalisers/plaintext"
)

// DefaultRegistry returns a registry with all built-in extractors
// registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(plaintext.New())
	return r
}
