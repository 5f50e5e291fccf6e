package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
	"github.com/paperdex/paperdex-cli/internal/core/ports/driven"
	"github.com/paperdex/paperdex-cli/internal/core/ports/driving"
	"github.com/paperdex/paperdex-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// defaultWorkers bounds batch ingestion parallelism. Embedding is the
// bottleneck, not CPU, so a small pool is enough.
const defaultWorkers = 4

// IngestService coordinates extraction, chunking, embedding and index
// maintenance.
type IngestService struct {
	store     driven.ChunkStore
	index     driven.VectorIndex
	embedder  driven.EmbeddingService
	pipeline  driven.PostProcessorPipeline
	extractor driven.TextExtractor
	parser    driven.MetadataParser
	workers   int

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-paper ingestion locks
}

// NewIngestService creates a new ingestion service.
// The extractor and parser are only needed for IngestFile/IngestDir and
// may be nil when ingestion happens from raw text.
func NewIngestService(
	store driven.ChunkStore,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	pipeline driven.PostProcessorPipeline,
	extractor driven.TextExtractor,
	parser driven.MetadataParser,
) *IngestService {
	return &IngestService{
		store:     store,
		index:     index,
		embedder:  embedder,
		pipeline:  pipeline,
		extractor: extractor,
		parser:    parser,
		workers:   defaultWorkers,
		locks:     make(map[string]*sync.Mutex),
	}
}

// SetWorkers sets the batch ingestion worker count.
func (s *IngestService) SetWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

// paperLock returns the mutex serialising ingestion of one paper.
// Different papers ingest concurrently; re-ingestions of the same paper
// queue up behind each other.
func (s *IngestService) paperLock(paperID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[paperID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[paperID] = lock
	}
	return lock
}

// Ingest chunks, embeds and indexes one paper's full text.
// Re-ingesting a paper ID retires the prior chunks and vectors and
// commits the replacement as a single unit.
func (s *IngestService) Ingest(ctx context.Context, paperID, fullText string) error {
	if strings.TrimSpace(paperID) == "" {
		return fmt.Errorf("%w: paper ID is empty", domain.ErrInvalidInput)
	}

	lock := s.paperLock(paperID)
	lock.Lock()
	defer lock.Unlock()

	logger.Section("Paper Ingestion")
	logger.Debug("Paper ID: %s", paperID)

	paper, err := s.loadOrCreatePaper(ctx, paperID, fullText)
	if err != nil {
		return err
	}

	if err := s.ingestPaper(ctx, paper); err != nil {
		paper.Status = domain.StatusFailed
		paper.ProcessedAt = time.Now().UTC()
		if saveErr := s.store.SavePaper(ctx, paper); saveErr != nil {
			logger.Warn("Recording failure for paper %s: %v", paperID, saveErr)
		}
		return err
	}

	paper.Status = domain.StatusSucceeded
	paper.ProcessedAt = time.Now().UTC()
	if err := s.store.SavePaper(ctx, paper); err != nil {
		return fmt.Errorf("saving paper %s: %w", paperID, err)
	}
	return nil
}

// DeletePaper removes a paper, its chunks and its vectors as one unit.
func (s *IngestService) DeletePaper(ctx context.Context, paperID string) error {
	paperID = strings.TrimSpace(paperID)
	if paperID == "" {
		return fmt.Errorf("%w: paper ID is empty", domain.ErrInvalidInput)
	}

	lock := s.paperLock(paperID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.store.GetPaper(ctx, paperID); err != nil {
		return fmt.Errorf("loading paper %s: %w", paperID, err)
	}

	oldIDs, err := s.store.DeleteChunksByPaper(ctx, paperID)
	if err != nil {
		return fmt.Errorf("retiring chunks for paper %s: %w", paperID, err)
	}
	if err := s.index.Apply(ctx, oldIDs, nil); err != nil {
		return fmt.Errorf("removing vectors for paper %s: %w", paperID, err)
	}
	if err := s.store.DeletePaper(ctx, paperID); err != nil {
		return fmt.Errorf("deleting paper %s: %w", paperID, err)
	}

	logger.Info("Deleted paper %s (%d chunks)", paperID, len(oldIDs))
	return nil
}

// loadOrCreatePaper fetches the stored paper record or builds a fresh
// one, updating the full text and back-filling parsed metadata.
func (s *IngestService) loadOrCreatePaper(ctx context.Context, paperID, fullText string) (*domain.Paper, error) {
	paper, err := s.store.GetPaper(ctx, paperID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		paper = &domain.Paper{ID: paperID}
	case err != nil:
		return nil, fmt.Errorf("loading paper %s: %w", paperID, err)
	}

	paper.FullText = fullText
	if s.parser != nil && paper.Title == "" {
		paper.Title, paper.Authors, paper.Abstract = s.parser.Parse(fullText)
	}
	return paper, nil
}

// ingestPaper runs the chunk-embed-commit sequence for one paper.
// On success the store and index hold exactly the new chunk set.
func (s *IngestService) ingestPaper(ctx context.Context, paper *domain.Paper) error {
	chunks, err := s.pipeline.Process(ctx, paper)
	if err != nil {
		return fmt.Errorf("chunking paper %s: %w", paper.ID, err)
	}
	logger.Debug("Paper %s: %d chunks", paper.ID, len(chunks))

	chunks, err = s.embedChunks(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embedding paper %s: %w", paper.ID, err)
	}

	// Everything is staged; now retire the old generation and commit
	// the new one. DeleteChunksByPaper reports exactly which vector IDs
	// the index must drop.
	oldIDs, err := s.store.DeleteChunksByPaper(ctx, paper.ID)
	if err != nil {
		return fmt.Errorf("retiring chunks for paper %s: %w", paper.ID, err)
	}
	logger.Debug("Paper %s: retired %d prior chunks", paper.ID, len(oldIDs))

	// Chunks reach the store before their vectors reach the index, so
	// a concurrent query never gets back an ID the store cannot
	// resolve.
	if err := s.store.SaveChunks(ctx, chunks); err != nil {
		return fmt.Errorf("saving chunks for paper %s: %w", paper.ID, err)
	}

	entries := make([]driven.Entry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = driven.Entry{ChunkID: chunk.ID, Vector: chunk.Embedding}
	}
	if err := s.index.Apply(ctx, oldIDs, entries); err != nil {
		return fmt.Errorf("committing vectors for paper %s: %w", paper.ID, err)
	}
	return nil
}

// embedChunks embeds all chunk texts in one batch, preserving order.
// A failed batch is retried once with truncated inputs before giving
// up; oversized chunks are the most common embedding failure.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		logger.Warn("Embedding failed, retrying with truncated input: %v", err)
		for i, text := range texts {
			texts[i] = truncateHalf(text)
		}
		embeddings, err = s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
	}

	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks", domain.ErrEmbedding, len(embeddings), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	return chunks, nil
}

// truncateHalf halves a string without splitting a rune.
func truncateHalf(s string) string {
	if len(s) < 2 {
		return s
	}
	n := len(s) / 2
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}

// IngestFile extracts text and metadata from a source document, stores
// the paper record and ingests it. Returns the assigned paper ID.
func (s *IngestService) IngestFile(ctx context.Context, path string) (string, error) {
	if s.extractor == nil {
		return "", fmt.Errorf("%w: no text extractor configured", domain.ErrInvalidInput)
	}

	logger.Section("File Ingestion")
	logger.Debug("Path: %s", path)

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}

	text, pages, err := s.extractor.ExtractText(ctx, path)
	if err != nil {
		return "", err
	}
	logger.Debug("Extracted %d pages, %d bytes of text", pages, len(text))

	paperID := uuid.New().String()
	paper := &domain.Paper{
		ID:        paperID,
		FullText:  text,
		PageCount: pages,
		FileSize:  info.Size(),
	}
	if s.parser != nil {
		paper.Title, paper.Authors, paper.Abstract = s.parser.Parse(text)
	}
	if paper.Title == "" {
		paper.Title = filepath.Base(path)
	}
	if err := s.store.SavePaper(ctx, paper); err != nil {
		return "", fmt.Errorf("saving paper %s: %w", paperID, err)
	}

	if err := s.Ingest(ctx, paperID, text); err != nil {
		return paperID, err
	}
	return paperID, nil
}

// IngestDir ingests every supported file in a directory, one paper per
// worker. Per-paper failures are collected in the outcome, never fatal.
func (s *IngestService) IngestDir(ctx context.Context, dir string) (*domain.BatchOutcome, error) {
	if err := s.embedder.Ping(ctx); err != nil {
		return nil, fmt.Errorf("embedding service check: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if s.supports(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	logger.Info("Ingesting %d files from %s with %d workers", len(paths), dir, s.workers)

	outcome := &domain.BatchOutcome{Total: len(paths)}
	var outcomeMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			paperID, err := s.IngestFile(gctx, path)

			outcomeMu.Lock()
			defer outcomeMu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				outcome.Failed++
				if paperID == "" {
					paperID = filepath.Base(path)
				}
				outcome.Errors = append(outcome.Errors, domain.PaperError{PaperID: paperID, Err: err})
				logger.Warn("Failed to ingest %s: %v", path, err)
				return nil
			}
			outcome.Succeeded++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcome, err
	}
	if outcome.Failed > 0 {
		logger.Error("Batch finished with %d of %d papers failed", outcome.Failed, outcome.Total)
	}
	return outcome, nil
}

// supports reports whether the extractor can handle the file. An
// extractor without extension knowledge accepts everything.
func (s *IngestService) supports(path string) bool {
	type supporter interface{ Supports(string) bool }
	if sup, ok := s.extractor.(supporter); ok {
		return sup.Supports(path)
	}
	return true
}

// RebuildIndex re-chunks and re-embeds every stored paper from its
// persisted full text. Used after switching embedding models or
// recovering from a lost index snapshot.
func (s *IngestService) RebuildIndex(ctx context.Context) (*domain.BatchOutcome, error) {
	if err := s.embedder.Ping(ctx); err != nil {
		return nil, fmt.Errorf("embedding service check: %w", err)
	}

	ids, err := s.store.ListPaperIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}

	logger.Section("Index Rebuild")
	logger.Debug("Rebuilding %d papers", len(ids))

	// Start from an empty index. Re-ingesting into the existing one
	// would let vectors the store no longer knows about survive the
	// rebuild.
	if err := s.index.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clearing index: %w", err)
	}

	outcome := &domain.BatchOutcome{Total: len(ids)}
	var outcomeMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, paperID := range ids {
		paperID := paperID
		g.Go(func() error {
			text, err := s.store.GetFullText(gctx, paperID)
			if err == nil {
				err = s.Ingest(gctx, paperID, text)
			}

			outcomeMu.Lock()
			defer outcomeMu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				outcome.Failed++
				outcome.Errors = append(outcome.Errors, domain.PaperError{PaperID: paperID, Err: err})
				logger.Warn("Failed to rebuild paper %s: %v", paperID, err)
				return nil
			}
			outcome.Succeeded++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcome, err
	}
	if outcome.Failed > 0 {
		logger.Error("Rebuild finished with %d of %d papers failed", outcome.Failed, outcome.Total)
	}
	return outcome, nil
}

// Stats reports paper, chunk and vector counts.
func (s *IngestService) Stats(ctx context.Context) (*domain.Stats, error) {
	papers, chunks, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("store stats: %w", err)
	}
	return &domain.Stats{
		PaperCount:  papers,
		ChunkCount:  chunks,
		VectorCount: s.index.Len(),
	}, nil
}
