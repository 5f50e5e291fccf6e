// Package queue provides the bounded priority queue used for top-k
// selection during nearest-neighbour search.
package queue

import "container/heap"

// Compile time check to ensure TopK satisfies the heap interface.
var _ heap.Interface = (*TopK)(nil)

// Item is a search candidate held in the queue.
type Item struct {
	// ID is the candidate chunk identifier.
	ID string

	// Seq is the candidate's insertion sequence number, used to break
	// distance ties deterministically: earlier insertions rank first.
	Seq uint64

	// Distance is the candidate's distance to the query.
	Distance float32
}

// Worse reports whether a ranks after b: greater distance, or equal
// distance with a later insertion sequence.
func Worse(a, b Item) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.Seq > b.Seq
}

// TopK is a max-heap of at most K items keyed by (distance, seq).
// The root is the current worst candidate, so a better item can evict
// it in O(log k).
type TopK struct {
	K     int
	Items []Item
}

// NewTopK creates a queue that retains the k best candidates.
func NewTopK(k int) *TopK {
	return &TopK{K: k, Items: make([]Item, 0, k)}
}

// Len returns the number of elements in the queue.
func (q *TopK) Len() int { return len(q.Items) }

// Less orders the worst candidate at the root.
func (q *TopK) Less(i, j int) bool {
	return Worse(q.Items[i], q.Items[j])
}

// Swap swaps the elements with indexes i and j.
func (q *TopK) Swap(i, j int) {
	q.Items[i], q.Items[j] = q.Items[j], q.Items[i]
}

// Push adds x to the queue.
func (q *TopK) Push(x any) {
	item, _ := x.(Item)
	q.Items = append(q.Items, item)
}

// Pop removes and returns the worst element from the queue.
func (q *TopK) Pop() any {
	old := q.Items
	n := len(old)
	item := old[n-1]
	q.Items = old[:n-1]
	return item
}

// Offer inserts the item if the queue is not full, or evicts the
// current worst when the item ranks better. Returns true if the item
// was retained.
func (q *TopK) Offer(item Item) bool {
	if q.Len() < q.K {
		heap.Push(q, item)
		return true
	}
	if Worse(q.Items[0], item) {
		heap.Pop(q)
		heap.Push(q, item)
		return true
	}
	return false
}

// Drain empties the queue and returns its items ordered best to worst.
func (q *TopK) Drain() []Item {
	out := make([]Item, q.Len())
	for i := q.Len() - 1; i >= 0; i-- {
		out[i], _ = heap.Pop(q).(Item)
	}
	return out
}
