// Package graph holds the multimodal transport network searched by the routing
// engine.
//
// A Graph is a directed multigraph: nodes are locations with a position and a
// country code, edges are transport services (land, sea or air) between two
// locations. Several edges may connect the same ordered pair; they are told apart
// by their Key.
//
// Graphs are built once with a Builder (or loaded from a snapshot) and are
// read-only afterwards, so a single *Graph can be shared by any number of
// concurrent searches without locking.
package graph

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/paulmach/orb"
)

// Mode is the transport mode of an edge.
type Mode string

const (
	Land Mode = "land"
	Sea  Mode = "sea"
	Air  Mode = "air"
)

// AllModes lists every supported mode in canonical order.
var AllModes = []Mode{Land, Sea, Air}

var (
	ErrInvalidMode    = errors.New("invalid transport mode")
	ErrInvalidNode    = errors.New("invalid node")
	ErrInvalidEdge    = errors.New("invalid edge")
	ErrDuplicateNode  = errors.New("duplicate node")
	ErrDuplicateEdge  = errors.New("duplicate edge")
	ErrUnknownNode    = errors.New("unknown node")
	ErrGraphFinalized = errors.New("builder already finalized")
)

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	return slices.Contains(AllModes, m)
}

// Node is a location of the network.
type Node struct {
	ID          string
	Position    orb.Point // [lon, lat]
	CountryCode string
}

// NewNode is a convenience constructor taking latitude before longitude.
func NewNode(id string, lat, lon float64, country string) Node {
	return Node{ID: id, Position: orb.Point{lon, lat}, CountryCode: country}
}

func (n Node) Latitude() float64  { return n.Position.Lat() }
func (n Node) Longitude() float64 { return n.Position.Lon() }

// Edge is one directed transport service between two nodes.
type Edge struct {
	From string
	To   string
	Key  int

	Mode Mode
	// Distance in km.
	Distance float64
	// Time in hours.
	Time float64
	// Price is the base price of the leg, before cargo weight.
	Price float64
	// WeightFactor is the cost per kg per km.
	WeightFactor float64

	// TimeNorm and PriceNorm are Time and Price rescaled onto 0..100 with the
	// calibration bounds of the whole network. Values outside the calibration
	// window fall outside 0..100 and are kept as-is.
	TimeNorm  float64
	PriceNorm float64
}

// Graph is an immutable directed multigraph. Use a Builder to create one.
type Graph struct {
	nodes     map[string]Node
	out       map[string][]Edge
	ids       []string
	edgeCount int

	calibration *Calibration
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.ids) }

// EdgeCount returns the number of edges, parallel edges included.
func (g *Graph) EdgeCount() int { return g.edgeCount }

// Calibration returns the bounds the edge costs were normalized with, when
// the graph was produced by Calibrate or loaded from a snapshot that recorded
// them.
func (g *Graph) Calibration() (Calibration, bool) {
	if g.calibration == nil {
		return Calibration{}, false
	}
	return *g.calibration, true
}

// HasNode reports whether id is a node of the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes iterates over every node in ascending id order.
func (g *Graph) Nodes() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, id := range g.ids {
			if !yield(g.nodes[id]) {
				return
			}
		}
	}
}

// OutEdges iterates over the outgoing edges of id in insertion order.
func (g *Graph) OutEdges(id string) iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for _, e := range g.out[id] {
			if !yield(e) {
				return
			}
		}
	}
}

// Edges iterates over every edge, grouped by source node in ascending id order.
func (g *Graph) Edges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for _, id := range g.ids {
			for _, e := range g.out[id] {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// OutDegree returns the number of outgoing edges of id.
func (g *Graph) OutDegree(id string) int { return len(g.out[id]) }

// OutModes returns the distinct modes leaving id, in canonical order.
func (g *Graph) OutModes(id string) []Mode {
	var modes []Mode
	for _, m := range AllModes {
		for _, e := range g.out[id] {
			if e.Mode == m {
				modes = append(modes, m)
				break
			}
		}
	}
	return modes
}
