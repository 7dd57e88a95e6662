package routing

import (
	"github.com/globalroute/navigator/pkg/graph"
)

// queueEntry is a partial path waiting in the search frontier.
// Only f, g and seq take part in ordering; the path payload never does.
type queueEntry struct {
	f, g  float64
	seq   uint64
	node  string
	path  []string
	edges []graph.Edge
}

// searchQueue is a min-heap of entries ordered by (f, g, seq). seq is unique
// per push, so the order is total.
type searchQueue []*queueEntry

// Len returns the size of the heap.
func (q searchQueue) Len() int { return len(q) }

// Less orders by estimated total cost, then accumulated cost, then push order.
func (q searchQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.g != b.g {
		return a.g < b.g
	}
	return a.seq < b.seq
}

// Swap swaps the elements at indices i and j.
func (q searchQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

// Push adds an element to the heap.
func (q *searchQueue) Push(x any) { *q = append(*q, x.(*queueEntry)) }

// Pop removes and returns the last element; container/heap moves the minimum there first.
func (q *searchQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*q = old[0 : n-1]
	return x
}
