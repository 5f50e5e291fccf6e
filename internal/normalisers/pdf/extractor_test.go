package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.Equal(t, []string{".pdf"}, extractor.Extensions())
}

func TestExtractText_MissingFile(t *testing.T) {
	extractor := New()

	_, _, err := extractor.ExtractText(context.Background(), "/nonexistent/paper.pdf")
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtractText_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a pdf"), 0o600))

	extractor := New()
	_, _, err := extractor.ExtractText(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtractText_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := New()
	_, _, err := extractor.ExtractText(ctx, "anything.pdf")
	assert.True(t, errors.Is(err, context.Canceled))
}
