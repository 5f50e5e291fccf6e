// Package flat provides an exact, in-memory vector index. Every query
// scans all stored vectors, so results are always the true nearest
// neighbours. Suitable for corpora up to the low hundreds of thousands
// of vectors, which comfortably covers a personal paper library.
package flat

import (
	"context"
	"fmt"
	"sync"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
	"github.com/paperdex/paperdex-cli/internal/core/ports/driven"
	"github.com/paperdex/paperdex-cli/internal/queue"
)

type entry struct {
	id  string
	seq uint64
	vec []float32
}

// Index is a flat exact-search vector index keyed by chunk ID.
// All methods are safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	dim     int
	seq     uint64
	entries []entry        // insertion order, oldest first
	slots   map[string]int // chunk ID -> position in entries
}

// New creates an empty index for vectors of the given dimensionality.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dimension)
	}
	return &Index{
		dim:   dimension,
		slots: make(map[string]int),
	}, nil
}

// Add inserts a vector under the given chunk ID. Re-adding an existing
// ID replaces the vector in place without changing its insertion rank.
func (i *Index) Add(ctx context.Context, chunkID string, vector []float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.add(chunkID, vector)
}

func (i *Index) add(chunkID string, vector []float32) error {
	if len(vector) != i.dim {
		return &domain.DimensionMismatchError{Want: i.dim, Got: len(vector)}
	}
	vec := make([]float32, i.dim)
	copy(vec, vector)

	if slot, ok := i.slots[chunkID]; ok {
		i.entries[slot].vec = vec
		return nil
	}
	i.entries = append(i.entries, entry{id: chunkID, seq: i.seq, vec: vec})
	i.slots[chunkID] = len(i.entries) - 1
	i.seq++
	return nil
}

// Remove deletes the vector stored under chunkID. Removing an unknown
// ID is a no-op.
func (i *Index) Remove(ctx context.Context, chunkID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.remove(chunkID)
	return nil
}

func (i *Index) remove(chunkID string) {
	slot, ok := i.slots[chunkID]
	if !ok {
		return
	}
	copy(i.entries[slot:], i.entries[slot+1:])
	i.entries = i.entries[:len(i.entries)-1]
	delete(i.slots, chunkID)
	for j := slot; j < len(i.entries); j++ {
		i.slots[i.entries[j].id] = j
	}
}

// Apply removes and inserts vectors as a single atomic batch: no query
// running after Apply returns can observe a partially updated index.
// All new entries are validated before any mutation takes place.
func (i *Index) Apply(ctx context.Context, removeIDs []string, entries []driven.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, e := range entries {
		if len(e.Vector) != i.dim {
			return &domain.DimensionMismatchError{Want: i.dim, Got: len(e.Vector)}
		}
	}
	for _, id := range removeIDs {
		i.remove(id)
	}
	for _, e := range entries {
		if err := i.add(e.ChunkID, e.Vector); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops every stored vector. The dimension is retained, so the
// index accepts the same vectors afterwards. A rebuild starts here so
// no stale vector can outlive it.
func (i *Index) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = nil
	i.slots = make(map[string]int)
	i.seq = 0
	return nil
}

// Search returns the k stored vectors closest to query by squared
// Euclidean distance, nearest first. Ties are broken in favour of the
// earlier-inserted vector. Fewer than k results are returned when the
// index holds fewer than k vectors.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}
	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(query) != i.dim {
		return nil, &domain.DimensionMismatchError{Want: i.dim, Got: len(query)}
	}
	if len(i.entries) == 0 {
		return []driven.VectorHit{}, nil
	}

	// An oversized k would otherwise size the result heap from
	// caller-controlled input.
	if k > len(i.entries) {
		k = len(i.entries)
	}

	top := queue.NewTopK(k)
	for n, e := range i.entries {
		if n&1023 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		top.Offer(queue.Item{ID: e.id, Seq: e.seq, Distance: squaredL2(query, e.vec)})
	}

	items := top.Drain()
	hits := make([]driven.VectorHit, len(items))
	for n, it := range items {
		hits[n] = driven.VectorHit{ChunkID: it.ID, Distance: it.Distance}
	}
	return hits, nil
}

// Len reports the number of stored vectors.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Dimensions reports the vector dimensionality the index accepts.
func (i *Index) Dimensions() int {
	return i.dim
}

// Close releases the index. The in-memory implementation has nothing
// to release; callers that want durability use Save or WriteTo first.
func (i *Index) Close() error {
	return nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for n := range a {
		d := a[n] - b[n]
		sum += d * d
	}
	return sum
}
