package driven

import (
	"context"
	"io"
)

// VectorIndex provides nearest-neighbour search over chunk embeddings.
// The reference implementation is a flat exact index; alternative
// structures must preserve the ordering and no-stale-id guarantees
// documented on Search.
type VectorIndex interface {
	// Add inserts or overwrites the vector for the given chunk ID.
	// Returns a DimensionMismatchError when the vector's length
	// differs from the index dimension.
	Add(ctx context.Context, chunkID string, vector []float32) error

	// Remove removes the vector for the given chunk ID.
	// Removing an absent ID is a no-op.
	Remove(ctx context.Context, chunkID string) error

	// Apply removes and inserts vectors as one atomic unit: a
	// concurrent Search observes either none or all of the batch.
	// Used to commit one paper's re-ingestion without exposing a
	// half-written paper.
	Apply(ctx context.Context, removeIDs []string, entries []Entry) error

	// Clear removes every vector, keeping the index dimension.
	// A rebuild starts from a cleared index so vectors the store no
	// longer knows about cannot survive it.
	Clear(ctx context.Context) error

	// Search returns the min(k, stored) nearest vectors to the query,
	// ordered by ascending distance with ties broken by insertion
	// order. Returned IDs are always currently present in the index.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the fixed vector dimension.
	Dimensions() int

	// WriteTo serialises the index (dimension plus ordered id/vector
	// pairs) to w.
	WriteTo(w io.Writer) (int64, error)

	// Close releases resources.
	Close() error
}

// Entry pairs a chunk ID with its embedding for batch insertion.
type Entry struct {
	// ChunkID identifies the chunk.
	ChunkID string

	// Vector is the chunk embedding.
	Vector []float32
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Distance is the squared Euclidean distance to the query.
	// Smaller means more similar.
	Distance float32
}
