package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
)

// stubExtractor is a test double registered for a fixed extension set.
type stubExtractor struct {
	exts []string
	text string
}

func (s *stubExtractor) Extensions() []string { return s.exts }

func (s *stubExtractor) ExtractText(_ context.Context, _ string) (string, int, error) {
	return s.text, 1, nil
}

func TestRegistry_DispatchesByExtension(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{exts: []string{".pdf"}, text: "from pdf"})
	r.Register(&stubExtractor{exts: []string{".txt", ".md"}, text: "from text"})

	text, _, err := r.ExtractText(context.Background(), "/papers/one.pdf")
	require.NoError(t, err)
	assert.Equal(t, "from pdf", text)

	text, _, err = r.ExtractText(context.Background(), "/papers/NOTES.TXT")
	require.NoError(t, err)
	assert.Equal(t, "from text", text)
}

func TestRegistry_UnsupportedExtension(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{exts: []string{".pdf"}})

	_, _, err := r.ExtractText(context.Background(), "/papers/one.docx")
	assert.ErrorIs(t, err, domain.ErrExtraction)

	assert.True(t, r.Supports("one.pdf"))
	assert.False(t, r.Supports("one.docx"))
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{exts: []string{".txt"}, text: "first"})
	r.Register(&stubExtractor{exts: []string{".txt"}, text: "second"})

	text, _, err := r.ExtractText(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "second", text)
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	exts := r.SupportedExtensions()
	assert.Contains(t, exts, ".pdf")
	assert.Contains(t, exts, ".txt")
	assert.Contains(t, exts, ".md")
}
