package graph

import (
	"fmt"
	"math"
	"slices"
)

type pairKey struct {
	from, to string
}

// Builder accumulates nodes and edges and produces an immutable Graph.
// Nodes must be added before the edges that reference them.
type Builder struct {
	nodes map[string]Node
	out   map[string][]Edge
	keys  map[pairKey]map[int]struct{}
	count int
	done  bool

	calibration *Calibration
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes: make(map[string]Node),
		out:   make(map[string][]Edge),
		keys:  make(map[pairKey]map[int]struct{}),
	}
}

// AddNode validates and registers a node.
func (b *Builder) AddNode(n Node) error {
	if b.done {
		return ErrGraphFinalized
	}
	if n.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidNode)
	}
	lat, lon := n.Latitude(), n.Longitude()
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: %s has position (%f, %f)", ErrInvalidNode, n.ID, lat, lon)
	}
	if _, exists := b.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	b.nodes[n.ID] = n
	return nil
}

// SetCalibration records the normalization bounds of the edges.
func (b *Builder) SetCalibration(c Calibration) {
	b.calibration = &c
}

// NextKey returns the smallest key not yet used between from and to.
func (b *Builder) NextKey(from, to string) int {
	used := b.keys[pairKey{from, to}]
	k := 0
	for {
		if _, taken := used[k]; !taken {
			return k
		}
		k++
	}
}

// AddEdge validates and registers an edge. The (From, To, Key) triple must be
// unique.
func (b *Builder) AddEdge(e Edge) error {
	if b.done {
		return ErrGraphFinalized
	}
	if _, ok := b.nodes[e.From]; !ok {
		return fmt.Errorf("%w: edge source %s", ErrUnknownNode, e.From)
	}
	if _, ok := b.nodes[e.To]; !ok {
		return fmt.Errorf("%w: edge target %s", ErrUnknownNode, e.To)
	}
	if !e.Mode.Valid() {
		return fmt.Errorf("%w: %s->%s has mode %q", ErrInvalidMode, e.From, e.To, e.Mode)
	}
	if err := checkNonNegative(e); err != nil {
		return err
	}

	pk := pairKey{e.From, e.To}
	used, ok := b.keys[pk]
	if !ok {
		used = make(map[int]struct{})
		b.keys[pk] = used
	}
	if _, dup := used[e.Key]; dup {
		return fmt.Errorf("%w: %s->%s key %d", ErrDuplicateEdge, e.From, e.To, e.Key)
	}
	used[e.Key] = struct{}{}

	b.out[e.From] = append(b.out[e.From], e)
	b.count++
	return nil
}

func checkNonNegative(e Edge) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"distance", e.Distance},
		{"time", e.Time},
		{"price", e.Price},
		{"weight_factor", e.WeightFactor},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || f.value < 0 {
			return fmt.Errorf("%w: %s->%s has %s %f", ErrInvalidEdge, e.From, e.To, f.name, f.value)
		}
	}
	if math.IsNaN(e.TimeNorm) || math.IsNaN(e.PriceNorm) {
		return fmt.Errorf("%w: %s->%s has NaN normalized cost", ErrInvalidEdge, e.From, e.To)
	}
	return nil
}

// Build finalizes the builder. The builder cannot be used afterwards.
func (b *Builder) Build() *Graph {
	b.done = true

	ids := make([]string, 0, len(b.nodes))
	for id := range b.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return &Graph{
		nodes:     b.nodes,
		out:       b.out,
		ids:       ids,
		edgeCount: b.count,

		calibration: b.calibration,
	}
}
