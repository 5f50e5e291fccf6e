package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested paper or chunk does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidChunking indicates invalid chunk size/overlap
	// parameters. Raised at configuration time, not per chunk.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrExtraction indicates a source document could not be read.
	// The paper is reported and skipped; a batch continues.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbedding indicates the embedding model is unavailable or
	// rejected its input. Ingestion retries once with truncated input
	// before marking the paper failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrEmbeddingUnavailable indicates no embedding service is
	// configured. Ingestion and semantic queries are disabled.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// DimensionMismatchError indicates a vector's length differs from the
// index's fixed dimension.
type DimensionMismatchError struct {
	// Want is the index dimension.
	Want int

	// Got is the offending vector's length.
	Got int
}

// Error implements the error interface.
func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: index expects %d, vector has %d", e.Want, e.Got)
}

// Is reports whether target is also a dimension mismatch, so callers
// can match with errors.Is against a zero value.
func (e *DimensionMismatchError) Is(target error) bool {
	_, ok := target.(*DimensionMismatchError)
	return ok
}
