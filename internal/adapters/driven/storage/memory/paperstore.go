package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
	"github.com/paperdex/paperdex-cli/internal/core/ports/driven"
)

// Ensure PaperStore implements the interface.
var _ driven.ChunkStore = (*PaperStore)(nil)

// PaperStore is an in-memory implementation of driven.ChunkStore.
// Useful for tests and throwaway sessions; nothing survives a restart.
type PaperStore struct {
	mu     sync.RWMutex
	papers map[string]domain.Paper
	chunks map[string]domain.Chunk
}

// NewPaperStore creates a new in-memory paper store.
func NewPaperStore() *PaperStore {
	return &PaperStore{
		papers: make(map[string]domain.Paper),
		chunks: make(map[string]domain.Chunk),
	}
}

// SavePaper stores or updates a paper record.
func (s *PaperStore) SavePaper(_ context.Context, paper *domain.Paper) error {
	if paper.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *paper
	if p.ProcessedAt.IsZero() {
		p.ProcessedAt = time.Now().UTC()
	}
	s.papers[p.ID] = p
	return nil
}

// GetPaper retrieves a paper by ID.
func (s *PaperStore) GetPaper(_ context.Context, id string) (*domain.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paper, ok := s.papers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &paper, nil
}

// GetFullText returns the stored full text for a paper.
func (s *PaperStore) GetFullText(_ context.Context, paperID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paper, ok := s.papers[paperID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return paper.FullText, nil
}

// ListPaperIDs returns the IDs of all stored papers.
func (s *PaperStore) ListPaperIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.papers))
	for id := range s.papers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// SaveChunks stores chunks keyed by chunk ID.
func (s *PaperStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
	}
	return nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *PaperStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

// GetChunksByPaper returns a paper's chunks ordered by position.
func (s *PaperStore) GetChunksByPaper(_ context.Context, paperID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for _, chunk := range s.chunks {
		if chunk.PaperID == paperID {
			result = append(result, chunk)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

// DeleteChunksByPaper removes all chunks for a paper and returns the
// removed chunk IDs in position order.
func (s *PaperStore) DeleteChunksByPaper(_ context.Context, paperID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []domain.Chunk
	for id, chunk := range s.chunks {
		if chunk.PaperID == paperID {
			removed = append(removed, chunk)
			delete(s.chunks, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Position < removed[j].Position })
	ids := make([]string, len(removed))
	for i, chunk := range removed {
		ids[i] = chunk.ID
	}
	return ids, nil
}

// DeletePaper removes a paper record and its chunks.
func (s *PaperStore) DeletePaper(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.papers, id)
	for chunkID, chunk := range s.chunks {
		if chunk.PaperID == id {
			delete(s.chunks, chunkID)
		}
	}
	return nil
}

// Stats returns paper and chunk counts.
func (s *PaperStore) Stats(_ context.Context) (papers, chunks int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.papers), len(s.chunks), nil
}
