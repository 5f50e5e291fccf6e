package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
	"github.com/paperdex/paperdex-cli/internal/core/ports/driven"
	"github.com/paperdex/paperdex-cli/internal/core/ports/driving"
	"github.com/paperdex/paperdex-cli/internal/logger"
)

// Ensure RetrieveService implements the interface.
var _ driving.RetrieveService = (*RetrieveService)(nil)

// RetrieveService resolves semantic queries against the indexed corpus.
type RetrieveService struct {
	store    driven.ChunkStore
	index    driven.VectorIndex
	embedder driven.EmbeddingService
}

// NewRetrieveService creates a new retrieval service.
func NewRetrieveService(
	store driven.ChunkStore,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
) *RetrieveService {
	return &RetrieveService{
		store:    store,
		index:    index,
		embedder: embedder,
	}
}

// Query embeds the text, searches the vector index and materialises the
// k nearest chunks, ordered by ascending distance.
func (s *RetrieveService) Query(ctx context.Context, text string, k int) ([]domain.RetrievalResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: query text is empty", domain.ErrInvalidInput)
	}

	logger.Section("Query Execution")
	logger.Debug("Query: %q, k=%d", text, k)

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := s.index.Search(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	logger.Debug("Index returned %d hits", len(hits))

	results := make([]domain.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		chunk, err := s.store.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// The index references a chunk the store no longer
				// holds. Degrade rather than fail the whole query.
				logger.Warn("Index and store out of sync: chunk %s not found, skipping", hit.ChunkID)
				continue
			}
			return nil, fmt.Errorf("loading chunk %s: %w", hit.ChunkID, err)
		}

		results = append(results, domain.RetrievalResult{
			ChunkID:  chunk.ID,
			PaperID:  chunk.PaperID,
			Content:  chunk.Content,
			Position: chunk.Position,
			Distance: hit.Distance,
		})
	}

	logger.Info("Query resolved to %d results", len(results))
	return results, nil
}

// Paper returns a stored paper with its chunks in position order.
func (s *RetrieveService) Paper(ctx context.Context, paperID string) (*domain.Paper, []domain.Chunk, error) {
	paperID = strings.TrimSpace(paperID)
	if paperID == "" {
		return nil, nil, fmt.Errorf("%w: paper ID is empty", domain.ErrInvalidInput)
	}

	paper, err := s.store.GetPaper(ctx, paperID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading paper %s: %w", paperID, err)
	}
	chunks, err := s.store.GetChunksByPaper(ctx, paperID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading chunks for paper %s: %w", paperID, err)
	}
	return paper, chunks, nil
}
