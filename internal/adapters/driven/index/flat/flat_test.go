package flat

import (
	"context"
	"errors"
	"testing"

	"github.com/paperdex/paperdex-cli/internal/core/domain"
	"github.com/paperdex/paperdex-cli/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	t.Run("rejects non-positive dimension", func(t *testing.T) {
		for _, dim := range []int{0, -1} {
			if _, err := New(dim); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("New(%d): expected ErrInvalidInput, got %v", dim, err)
			}
		}
	})

	t.Run("starts empty", func(t *testing.T) {
		idx, err := New(3)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if idx.Len() != 0 {
			t.Errorf("expected empty index, got %d entries", idx.Len())
		}
		if idx.Dimensions() != 3 {
			t.Errorf("expected dimension 3, got %d", idx.Dimensions())
		}
	})
}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects mismatched dimension", func(t *testing.T) {
		idx, _ := New(3)
		err := idx.Add(ctx, "a", []float32{1, 2})
		var mismatch *domain.DimensionMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected DimensionMismatchError, got %v", err)
		}
		if mismatch.Want != 3 || mismatch.Got != 2 {
			t.Errorf("expected want=3 got=2, have want=%d got=%d", mismatch.Want, mismatch.Got)
		}
		if idx.Len() != 0 {
			t.Errorf("rejected add must not grow the index, len=%d", idx.Len())
		}
	})

	t.Run("overwrite keeps insertion rank", func(t *testing.T) {
		idx, _ := New(1)
		mustAdd(t, idx, "a", []float32{5})
		mustAdd(t, idx, "b", []float32{5})
		// Move a to the same distance as b; a was inserted first and
		// must still win the tie after the overwrite.
		mustAdd(t, idx, "a", []float32{5})

		hits, err := idx.Search(ctx, []float32{0}, 2)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if hits[0].ChunkID != "a" || hits[1].ChunkID != "b" {
			t.Errorf("expected order [a b], got [%s %s]", hits[0].ChunkID, hits[1].ChunkID)
		}
	})

	t.Run("does not alias caller slice", func(t *testing.T) {
		idx, _ := New(2)
		vec := []float32{1, 1}
		mustAdd(t, idx, "a", vec)
		vec[0] = 99

		hits, err := idx.Search(ctx, []float32{1, 1}, 1)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if hits[0].Distance != 0 {
			t.Errorf("stored vector changed through caller slice, distance=%f", hits[0].Distance)
		}
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("removed vector is not returned", func(t *testing.T) {
		idx, _ := New(1)
		mustAdd(t, idx, "a", []float32{1})
		mustAdd(t, idx, "b", []float32{2})

		if err := idx.Remove(ctx, "a"); err != nil {
			t.Fatalf("Remove: %v", err)
		}
		hits, err := idx.Search(ctx, []float32{0}, 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(hits) != 1 || hits[0].ChunkID != "b" {
			t.Errorf("expected only b after removal, got %v", hits)
		}
	})

	t.Run("unknown ID is a no-op", func(t *testing.T) {
		idx, _ := New(1)
		mustAdd(t, idx, "a", []float32{1})
		if err := idx.Remove(ctx, "ghost"); err != nil {
			t.Fatalf("Remove of unknown ID: %v", err)
		}
		if idx.Len() != 1 {
			t.Errorf("expected len 1, got %d", idx.Len())
		}
	})

	t.Run("middle removal preserves ordering of the rest", func(t *testing.T) {
		idx, _ := New(1)
		mustAdd(t, idx, "a", []float32{5})
		mustAdd(t, idx, "b", []float32{5})
		mustAdd(t, idx, "c", []float32{5})

		if err := idx.Remove(ctx, "b"); err != nil {
			t.Fatalf("Remove: %v", err)
		}
		hits, err := idx.Search(ctx, []float32{0}, 3)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(hits) != 2 || hits[0].ChunkID != "a" || hits[1].ChunkID != "c" {
			t.Errorf("expected [a c], got %v", hits)
		}
	})
}

func TestClear(t *testing.T) {
	ctx := context.Background()

	idx, _ := New(1)
	mustAdd(t, idx, "a", []float32{1})
	mustAdd(t, idx, "b", []float32{2})

	if err := idx.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("expected empty index, got len %d", idx.Len())
	}
	if idx.Dimensions() != 1 {
		t.Errorf("expected dimension 1 after clear, got %d", idx.Dimensions())
	}

	// The index accepts vectors again and old IDs are gone.
	mustAdd(t, idx, "c", []float32{3})
	hits, err := idx.Search(ctx, []float32{0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ChunkID != "c" {
		t.Errorf("expected only c after clear, got %v", hits)
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("removes then inserts", func(t *testing.T) {
		idx, _ := New(1)
		mustAdd(t, idx, "p1:0", []float32{1})
		mustAdd(t, idx, "p1:1", []float32{2})

		err := idx.Apply(ctx, []string{"p1:0", "p1:1"}, []driven.Entry{
			{ChunkID: "p1:0", Vector: []float32{3}},
		})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		hits, err := idx.Search(ctx, []float32{0}, 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(hits) != 1 || hits[0].ChunkID != "p1:0" || hits[0].Distance != 9 {
			t.Errorf("expected single rewritten entry at distance 9, got %v", hits)
		}
	})

	t.Run("invalid entry leaves the index untouched", func(t *testing.T) {
		idx, _ := New(2)
		mustAdd(t, idx, "a", []float32{1, 1})

		err := idx.Apply(ctx, []string{"a"}, []driven.Entry{
			{ChunkID: "b", Vector: []float32{1, 1}},
			{ChunkID: "c", Vector: []float32{1}},
		})
		var mismatch *domain.DimensionMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected DimensionMismatchError, got %v", err)
		}
		hits, err := idx.Search(ctx, []float32{1, 1}, 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(hits) != 1 || hits[0].ChunkID != "a" {
			t.Errorf("failed Apply must not mutate the index, got %v", hits)
		}
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects k below one", func(t *testing.T) {
		idx, _ := New(1)
		if _, err := idx.Search(ctx, []float32{0}, 0); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for k=0, got %v", err)
		}
	})

	t.Run("rejects mismatched query dimension", func(t *testing.T) {
		idx, _ := New(3)
		_, err := idx.Search(ctx, []float32{1}, 1)
		var mismatch *domain.DimensionMismatchError
		if !errors.As(err, &mismatch) {
			t.Errorf("expected DimensionMismatchError, got %v", err)
		}
	})

	t.Run("empty index yields no results", func(t *testing.T) {
		idx, _ := New(2)
		hits, err := idx.Search(ctx, []float32{1, 2}, 5)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(hits) != 0 {
			t.Errorf("expected no hits, got %v", hits)
		}
	})

	t.Run("returns min of k and stored count", func(t *testing.T) {
		idx, _ := New(1)
		mustAdd(t, idx, "a", []float32{1})
		mustAdd(t, idx, "b", []float32{2})

		hits, err := idx.Search(ctx, []float32{0}, 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(hits) != 2 {
			t.Errorf("expected 2 hits, got %d", len(hits))
		}
	})

	t.Run("huge k is clamped to stored count", func(t *testing.T) {
		idx, _ := New(1)
		mustAdd(t, idx, "a", []float32{1})
		mustAdd(t, idx, "b", []float32{2})

		hits, err := idx.Search(ctx, []float32{0}, 1<<30)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(hits) != 2 {
			t.Errorf("expected 2 hits, got %d", len(hits))
		}
	})

	t.Run("nearest first by squared distance", func(t *testing.T) {
		idx, _ := New(2)
		mustAdd(t, idx, "far", []float32{10, 0})
		mustAdd(t, idx, "near", []float32{1, 0})
		mustAdd(t, idx, "mid", []float32{4, 0})

		hits, err := idx.Search(ctx, []float32{0, 0}, 3)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		want := []string{"near", "mid", "far"}
		for n, id := range want {
			if hits[n].ChunkID != id {
				t.Fatalf("position %d: expected %s, got %s", n, id, hits[n].ChunkID)
			}
		}
		if hits[0].Distance != 1 || hits[1].Distance != 16 || hits[2].Distance != 100 {
			t.Errorf("unexpected distances: %v", hits)
		}
	})

	t.Run("equal distances break toward earlier insertion", func(t *testing.T) {
		idx, _ := New(2)
		mustAdd(t, idx, "first", []float32{1, 0})
		mustAdd(t, idx, "second", []float32{0, 1})
		mustAdd(t, idx, "third", []float32{-1, 0})

		hits, err := idx.Search(ctx, []float32{0, 0}, 2)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if hits[0].ChunkID != "first" || hits[1].ChunkID != "second" {
			t.Errorf("expected [first second], got [%s %s]", hits[0].ChunkID, hits[1].ChunkID)
		}
	})

	t.Run("honours context cancellation", func(t *testing.T) {
		idx, _ := New(1)
		mustAdd(t, idx, "a", []float32{1})
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := idx.Search(cancelled, []float32{0}, 1); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func mustAdd(t *testing.T, idx *Index, id string, vec []float32) {
	t.Helper()
	if err := idx.Add(context.Background(), id, vec); err != nil {
		t.Fatalf("Add(%s): %v", id, err)
	}
}
