package driven

import (
	"context"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
)

// ChunkStore persists papers and their chunks.
// Backed by SQLite for durable storage.
type ChunkStore interface {
	// SavePaper stores or updates a paper record.
	SavePaper(ctx context.Context, paper *domain.Paper) error

	// GetPaper retrieves a paper by ID.
	GetPaper(ctx context.Context, id string) (*domain.Paper, error)

	// GetFullText returns the stored full text for a paper.
	GetFullText(ctx context.Context, paperID string) (string, error)

	// ListPaperIDs returns the IDs of all stored papers.
	ListPaperIDs(ctx context.Context) ([]string, error)

	// SaveChunks stores a paper's chunks in one transaction.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunksByPaper returns a paper's chunks ordered by position.
	GetChunksByPaper(ctx context.Context, paperID string) ([]domain.Chunk, error)

	// DeleteChunksByPaper removes all chunks for a paper and returns
	// the removed chunk IDs in position order. Used to keep the vector
	// index in lockstep during re-ingestion.
	DeleteChunksByPaper(ctx context.Context, paperID string) ([]string, error)

	// DeletePaper removes a paper record and its chunks.
	DeletePaper(ctx context.Context, id string) error

	// Stats returns paper and chunk counts.
	Stats(ctx context.Context) (papers, chunks int, err error)
}
