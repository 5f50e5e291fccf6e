// Package chunker provides a fixed-size text chunking processor with
// overlapping windows.
package chunker

import (
	"context"
	"fmt"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits paper text into fixed-size overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// The constraint 0 <= overlap < size is enforced here rather than
// silently corrected, so a misconfigured pipeline fails before any
// paper is processed.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidChunking, p.chunkSize)
	}
	if p.overlap < 0 || p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must satisfy 0 <= overlap < size %d",
			domain.ErrInvalidChunking, p.overlap, p.chunkSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the paper's full text into chunks.
// Input chunks are ignored; this processor creates new chunks.
//
// The window slides forward by size-overlap characters; the final chunk
// may be shorter than size and is never empty. Text shorter than one
// window yields a single chunk holding the whole text. Identical input
// always yields identical chunks, which re-ingestion relies on.
func (p *Processor) Process(_ context.Context, paper *domain.Paper, _ []domain.Chunk) ([]domain.Chunk, error) {
	text := paper.FullText
	if text == "" {
		return nil, nil
	}

	// A text that fits in one window is one chunk, whole.
	if len(text) <= p.chunkSize {
		return []domain.Chunk{{
			ID:      domain.ChunkID(paper.ID, 0),
			PaperID: paper.ID,
			Content: text,
		}}, nil
	}

	step := p.chunkSize - p.overlap
	chunks := make([]domain.Chunk, 0, len(text)/step+1)

	position := 0
	for start := 0; start < len(text); start += step {
		end := start + p.chunkSize
		if end > len(text) {
			end = len(text)
		}

		chunks = append(chunks, domain.Chunk{
			ID:       domain.ChunkID(paper.ID, position),
			PaperID:  paper.ID,
			Content:  text[start:end],
			Position: position,
		})
		position++
	}

	return chunks, nil
}

// ChunkSize returns the configured window size.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured window overlap.
func (p *Processor) Overlap() int { return p.overlap }
