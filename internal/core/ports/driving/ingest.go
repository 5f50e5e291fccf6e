package driving

import (
	"context"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
)

// IngestService coordinates paper ingestion and index maintenance.
type IngestService interface {
	// Ingest chunks, embeds and indexes one paper's full text.
	// Re-ingesting a paper ID first retires the paper's prior chunks
	// and vectors; the replacement becomes visible as a single unit.
	Ingest(ctx context.Context, paperID, fullText string) error

	// IngestFile extracts text and metadata from a source document,
	// stores the paper record and ingests it. Returns the paper ID.
	IngestFile(ctx context.Context, path string) (string, error)

	// IngestDir ingests every PDF in a directory, one paper per
	// worker. Per-paper failures are collected, never fatal.
	IngestDir(ctx context.Context, dir string) (*domain.BatchOutcome, error)

	// DeletePaper removes a paper, its chunks and its vectors as one
	// unit. Returns an error wrapping domain.ErrNotFound for an
	// unknown paper ID.
	DeletePaper(ctx context.Context, paperID string) error

	// RebuildIndex drops the vector index and recreates it from every
	// stored paper. Used for offline full reprocessing.
	RebuildIndex(ctx context.Context) (*domain.BatchOutcome, error)

	// Stats reports paper, chunk and vector counts.
	Stats(ctx context.Context) (*domain.Stats, error)
}
