// Package routing implements the route-search engine: heuristic precomputation,
// the top-N best-first search over the transport network, and the pricing and
// emission scoring of the paths it finds.
//
// Basic usage:
//
//	paths, stats, err := routing.Search(g, routing.Query{
//	    Start: "Shanghai", Goal: "Rotterdam", TopN: 3,
//	    TimeWeight: 0.5, PriceWeight: 0.5,
//	})
//	itineraries := routing.BuildItineraries(g, paths, cargoKg)
package routing

import (
	"container/heap"
	"errors"
	"fmt"
	"slices"

	"github.com/tidwall/btree"

	"github.com/globalroute/navigator/pkg/graph"
)

// Fixed surcharges added to the blended cost of a leg.
const (
	BorderPenalty     = 1.0
	RestrictedPenalty = 1.0
)

var (
	// ErrNodeNotFound is returned when start or goal is not a node of the graph.
	ErrNodeNotFound = errors.New("start or goal node not in graph")
	// ErrBannedEndpoint is returned when start or goal lies in an avoided country.
	ErrBannedEndpoint = errors.New("no valid route: start or goal is in a banned country")
	// ErrNoPathFound is returned when the frontier empties without reaching the goal.
	ErrNoPathFound = errors.New("no paths found with selected parameters")
	// ErrInvalidQuery reports a malformed query (e.g. non-positive TopN).
	ErrInvalidQuery = errors.New("invalid query")
)

// Query describes one search.
type Query struct {
	Start string
	Goal  string

	// Avoid lists country codes no path may enter, endpoints included.
	Avoid []string
	// Penalty lists country codes that cost RestrictedPenalty to enter.
	Penalty []string

	TopN        int
	TimeWeight  float64
	PriceWeight float64

	// Modes restricts the edges that may be used. Nil means all modes; an
	// empty non-nil slice allows none.
	Modes []graph.Mode
}

// CompletedPath is one arrival at the goal.
type CompletedPath struct {
	Nodes []string
	Edges []graph.Edge
	Cost  float64

	arrival int
}

// Stats summarizes the work done by a search.
type Stats struct {
	Popped       int
	Expanded     int
	Pushed       int
	GoalArrivals int
}

// byCostThenArrival ranks completed paths by cost; equal costs keep arrival order.
func byCostThenArrival(a, b CompletedPath) bool {
	if a.Cost != b.Cost {
		return a.Cost < b.Cost
	}
	return a.arrival < b.arrival
}

// Search returns up to q.TopN paths from q.Start to q.Goal, cheapest first.
//
// The frontier is popped in (f, g, push order). A node other than the goal is
// expanded only the first time it is popped; the goal is never closed, so each
// distinct final hop into it is recorded as its own path. Once TopN paths are
// known the search stops as soon as the popped estimate exceeds the cost of the
// TopN-th best. With the fixed-bound heuristic this is a near-optimal
// enumeration, not an exact k-shortest-paths.
func Search(g *graph.Graph, q Query) ([]CompletedPath, Stats, error) {
	var stats Stats

	if q.TopN <= 0 {
		return nil, stats, fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidQuery, q.TopN)
	}

	startNode, okStart := g.Node(q.Start)
	goalNode, okGoal := g.Node(q.Goal)
	if !okStart || !okGoal {
		return nil, stats, fmt.Errorf("%w: start (%s), goal (%s)", ErrNodeNotFound, q.Start, q.Goal)
	}

	avoid := stringSet(q.Avoid)
	if _, banned := avoid[startNode.CountryCode]; banned {
		return nil, stats, fmt.Errorf("%w: start (%s) or goal (%s)", ErrBannedEndpoint, q.Start, q.Goal)
	}
	if _, banned := avoid[goalNode.CountryCode]; banned {
		return nil, stats, fmt.Errorf("%w: start (%s) or goal (%s)", ErrBannedEndpoint, q.Start, q.Goal)
	}
	penalty := stringSet(q.Penalty)
	modes := modeSet(q.Modes)

	h := Heuristics(g, q.Goal, q.TimeWeight, q.PriceWeight)

	completed := btree.NewBTreeGOptions(byCostThenArrival, btree.Options{NoLocks: true})
	visited := make(map[string]struct{})

	pq := make(searchQueue, 0, 64)
	var seq uint64
	heap.Push(&pq, &queueEntry{node: q.Start, path: []string{q.Start}, seq: seq})

	for pq.Len() > 0 {
		cur := heap.Pop(&pq).(*queueEntry)
		stats.Popped++

		if cur.node == q.Goal {
			stats.GoalArrivals++
			completed.Set(CompletedPath{Nodes: cur.path, Edges: cur.edges, Cost: cur.g, arrival: stats.GoalArrivals})
			if completed.Len() >= q.TopN {
				kth, _ := completed.GetAt(q.TopN - 1)
				if cur.f > kth.Cost {
					break
				}
			}
			continue
		}

		if _, seen := visited[cur.node]; seen {
			continue
		}
		visited[cur.node] = struct{}{}
		stats.Expanded++

		curNode, _ := g.Node(cur.node)
		for e := range g.OutEdges(cur.node) {
			if _, allowed := modes[e.Mode]; !allowed {
				continue
			}
			next, _ := g.Node(e.To)
			if slices.Contains(cur.path, e.To) {
				continue
			}
			if _, banned := avoid[next.CountryCode]; banned {
				continue
			}

			cost := cur.g + q.TimeWeight*e.TimeNorm + q.PriceWeight*e.PriceNorm
			if curNode.CountryCode != next.CountryCode {
				cost += BorderPenalty
			}
			if _, restricted := penalty[next.CountryCode]; restricted {
				cost += RestrictedPenalty
			}

			seq++
			heap.Push(&pq, &queueEntry{
				f:     cost + h[e.To],
				g:     cost,
				seq:   seq,
				node:  e.To,
				path:  append(slices.Clip(cur.path), e.To),
				edges: append(slices.Clip(cur.edges), e),
			})
			stats.Pushed++
		}
	}

	if completed.Len() == 0 {
		return nil, stats, fmt.Errorf("%w: between %s and %s", ErrNoPathFound, q.Start, q.Goal)
	}

	paths := make([]CompletedPath, 0, min(completed.Len(), q.TopN))
	completed.Scan(func(p CompletedPath) bool {
		paths = append(paths, p)
		return len(paths) < q.TopN
	})
	return paths, stats, nil
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func modeSet(modes []graph.Mode) map[graph.Mode]struct{} {
	if modes == nil {
		modes = graph.AllModes
	}
	set := make(map[graph.Mode]struct{}, len(modes))
	for _, m := range modes {
		set[m] = struct{}{}
	}
	return set
}
