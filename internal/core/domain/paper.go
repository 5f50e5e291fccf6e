package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PaperStatus records the outcome of processing a paper.
type PaperStatus string

// Paper processing outcomes.
const (
	// StatusSucceeded means the paper was extracted, chunked, embedded
	// and indexed without error.
	StatusSucceeded PaperStatus = "succeeded"

	// StatusFailed means processing was aborted; the paper is recorded
	// but absent from the retrieval index.
	StatusFailed PaperStatus = "failed"
)

// Paper represents an ingested research paper.
// The full text is produced by the text extractor; metadata fields are
// filled by the heuristic metadata parser and may be empty.
type Paper struct {
	// ID is the stable, externally assigned identifier.
	ID string

	// Title is the parsed paper title.
	Title string

	// Authors is the parsed author line.
	Authors string

	// Abstract is the parsed abstract, empty when none was found.
	Abstract string

	// FullText is the complete extracted text. It is immutable once
	// ingested; re-ingestion replaces the paper's chunks wholesale.
	FullText string

	// PageCount is the number of pages in the source document.
	PageCount int

	// FileSize is the source file size in bytes, 0 when unknown.
	FileSize int64

	// Status records the last processing outcome.
	Status PaperStatus

	// ProcessedAt is when the paper was last (re-)ingested.
	ProcessedAt time.Time
}

// Chunk is the unit of embedding and retrieval: a bounded text window
// cut from a paper's full text.
type Chunk struct {
	// ID is derived from the paper ID and the chunk position, so
	// re-ingesting a paper reproduces the same identifiers.
	ID string

	// PaperID links back to the source paper.
	PaperID string

	// Content is the chunk text. Never empty.
	Content string

	// Position is the ordinal position within the paper's chunk
	// sequence, used to reconstruct surrounding context.
	Position int

	// Embedding is the vector representation. Populated during
	// ingestion, before the chunk is committed to the index.
	Embedding []float32
}

// ChunkID derives the deterministic identifier for a paper's chunk at
// the given position.
func ChunkID(paperID string, position int) string {
	return paperID + ":" + strconv.Itoa(position)
}

// PaperIDOfChunk returns the paper ID encoded in a chunk ID, or the
// input unchanged if it carries no position suffix.
func PaperIDOfChunk(chunkID string) string {
	i := strings.LastIndexByte(chunkID, ':')
	if i < 0 {
		return chunkID
	}
	return chunkID[:i]
}

// RetrievalResult is a single ranked hit returned by a semantic query.
type RetrievalResult struct {
	// ChunkID identifies the matched chunk.
	ChunkID string

	// PaperID identifies the source paper.
	PaperID string

	// Content is the chunk text, materialised from the chunk store.
	Content string

	// Position is the chunk's ordinal position within its paper.
	Position int

	// Distance is the squared Euclidean distance between the query
	// embedding and the chunk embedding. Smaller is more similar.
	Distance float32
}

// Stats summarises the indexed corpus.
type Stats struct {
	// PaperCount is the number of papers with stored chunks.
	PaperCount int

	// ChunkCount is the number of stored chunks.
	ChunkCount int

	// VectorCount is the number of vectors in the index. Equal to
	// ChunkCount when store and index are in lockstep.
	VectorCount int
}

// PaperError records a single paper's failure during batch ingestion.
type PaperError struct {
	// PaperID identifies the failed paper.
	PaperID string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e PaperError) Error() string {
	return fmt.Sprintf("paper %s: %v", e.PaperID, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e PaperError) Unwrap() error {
	return e.Err
}

// BatchOutcome aggregates per-paper results of a batch run. Failures
// never abort the batch; they are collected here instead.
type BatchOutcome struct {
	// Total is the number of papers attempted.
	Total int

	// Succeeded is the number of papers fully ingested.
	Succeeded int

	// Failed is the number of papers that were skipped after an error.
	Failed int

	// Errors holds one entry per failed paper.
	Errors []PaperError
}
