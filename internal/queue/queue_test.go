package queue

import (
	"container/heap"
	"testing"
)

func TestTopK_Offer_KeepsBest(t *testing.T) {
	q := NewTopK(2)
	heap.Init(q)

	q.Offer(Item{ID: "a", Seq: 0, Distance: 3})
	q.Offer(Item{ID: "b", Seq: 1, Distance: 1})
	q.Offer(Item{ID: "c", Seq: 2, Distance: 2})

	items := q.Drain()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "b" || items[1].ID != "c" {
		t.Errorf("unexpected order: %s, %s", items[0].ID, items[1].ID)
	}
}

func TestTopK_Offer_TieBreakByInsertionOrder(t *testing.T) {
	q := NewTopK(2)
	heap.Init(q)

	// Same distance: the earlier sequence must win the slot and rank
	// first in the drained output.
	q.Offer(Item{ID: "late", Seq: 5, Distance: 1})
	q.Offer(Item{ID: "early", Seq: 1, Distance: 1})
	q.Offer(Item{ID: "latest", Seq: 9, Distance: 1})

	items := q.Drain()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "early" || items[1].ID != "late" {
		t.Errorf("tie-break violated: got %s, %s", items[0].ID, items[1].ID)
	}
}

func TestTopK_Drain_SortsAscending(t *testing.T) {
	q := NewTopK(5)
	heap.Init(q)

	distances := []float32{4, 0.5, 3, 1, 2}
	for i, d := range distances {
		q.Offer(Item{ID: "x", Seq: uint64(i), Distance: d})
	}

	items := q.Drain()
	for i := 1; i < len(items); i++ {
		if items[i].Distance < items[i-1].Distance {
			t.Fatalf("items not ascending at %d: %v then %v", i, items[i-1].Distance, items[i].Distance)
		}
	}
	if q.Len() != 0 {
		t.Errorf("expected drained queue to be empty, got %d", q.Len())
	}
}
