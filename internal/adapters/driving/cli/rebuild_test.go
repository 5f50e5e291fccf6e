package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
)

func TestRebuildCmd_Use(t *testing.T) {
	assert.Equal(t, "rebuild", rebuildCmd.Use)
}

func TestRebuildCmd_Executes(t *testing.T) {
	ingest, _, cleanup := setupTestServices()
	defer cleanup()
	ingest.dirOutcome = &domain.BatchOutcome{Total: 4, Succeeded: 4}

	out, err := execute(t, "rebuild")

	assert.NoError(t, err)
	assert.True(t, ingest.rebuildCalled)
	assert.Contains(t, out, "Rebuilt 4/4 papers")
}

func TestRebuildCmd_NoServiceConfigured(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	ingestService = nil

	_, err := execute(t, "rebuild")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
