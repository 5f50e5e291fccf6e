package driven

import (
	"context"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
)

// PostProcessor processes paper content to produce chunks.
// PostProcessors are chained in a pipeline (e.g., chunking, filtering).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a paper and returns chunks.
	// A chunk-creating processor (the chunker) receives nil and
	// returns new chunks; a chunk-modifying processor receives and
	// returns chunks.
	Process(ctx context.Context, paper *domain.Paper, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the paper through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, paper *domain.Paper) ([]domain.Chunk, error)
}
