package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
)

func TestStatsCmd_Use(t *testing.T) {
	assert.Equal(t, "stats", statsCmd.Use)
}

func TestStatsCmd_Executes(t *testing.T) {
	ingest, _, cleanup := setupTestServices()
	defer cleanup()
	ingest.stats = &domain.Stats{PaperCount: 7, ChunkCount: 120, VectorCount: 120}

	out, err := execute(t, "stats")

	assert.NoError(t, err)
	assert.Contains(t, out, "Papers:  7")
	assert.Contains(t, out, "Chunks:  120")
	assert.Contains(t, out, "Vectors: 120")
}

func TestStatsCmd_NoServiceConfigured(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	ingestService = nil

	_, err := execute(t, "stats")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
