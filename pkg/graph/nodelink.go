package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// nodeID accepts both JSON strings and JSON numbers as identifiers.
type nodeID string

func (id *nodeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = nodeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("node id must be a string or a number: %s", data)
	}
	*id = nodeID(n.String())
	return nil
}

type nodeLinkNode struct {
	ID          nodeID   `json:"id"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	CountryCode string   `json:"country_code"`
}

type nodeLinkEdge struct {
	Source       nodeID   `json:"source"`
	Target       nodeID   `json:"target"`
	Key          *int     `json:"key"`
	Mode         *string  `json:"mode"`
	Distance     *float64 `json:"distance"`
	Time         float64  `json:"time"`
	Price        float64  `json:"price"`
	WeightFactor float64  `json:"weight_factor"`
	TimeNorm     float64  `json:"time_norm"`
	PriceNorm    float64  `json:"price_norm"`
}

// nodeLinkDocument mirrors the node-link JSON layout. Older exporters call the
// edge list "links", newer ones "edges"; both are accepted.
type nodeLinkDocument struct {
	Directed   *bool          `json:"directed"`
	Multigraph bool           `json:"multigraph"`
	Nodes      []nodeLinkNode `json:"nodes"`
	Links      []nodeLinkEdge `json:"links"`
	Edges      []nodeLinkEdge `json:"edges"`
}

// ReadNodeLink parses a node-link JSON document. Mode and distance are required
// on every edge and coordinates on every node; the remaining edge attributes
// default to zero so that a raw network can be fed to Calibrate.
func ReadNodeLink(r io.Reader) (*Graph, error) {
	var doc nodeLinkDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse graph JSON: %w", err)
	}
	if doc.Directed != nil && !*doc.Directed {
		return nil, fmt.Errorf("%w: undirected graphs are not supported", ErrInvalidEdge)
	}

	b := NewBuilder()
	for i, n := range doc.Nodes {
		if n.Latitude == nil || n.Longitude == nil {
			return nil, fmt.Errorf("%w: node #%d (%s) is missing latitude/longitude", ErrInvalidNode, i, n.ID)
		}
		if err := b.AddNode(NewNode(string(n.ID), *n.Latitude, *n.Longitude, n.CountryCode)); err != nil {
			return nil, err
		}
	}

	links := doc.Links
	if len(links) == 0 {
		links = doc.Edges
	}
	for i, l := range links {
		if l.Mode == nil {
			return nil, fmt.Errorf("%w: edge #%d (%s->%s) has no mode", ErrInvalidEdge, i, l.Source, l.Target)
		}
		if l.Distance == nil {
			return nil, fmt.Errorf("%w: edge #%d (%s->%s) has no distance", ErrInvalidEdge, i, l.Source, l.Target)
		}
		mode, err := ParseMode(*l.Mode)
		if err != nil {
			return nil, fmt.Errorf("edge #%d: %w", i, err)
		}

		from, to := string(l.Source), string(l.Target)
		key := b.NextKey(from, to)
		if l.Key != nil {
			key = *l.Key
		}

		e := Edge{
			From: from, To: to, Key: key, Mode: mode,
			Distance: *l.Distance, Time: l.Time, Price: l.Price, WeightFactor: l.WeightFactor,
			TimeNorm: l.TimeNorm, PriceNorm: l.PriceNorm,
		}
		if err := b.AddEdge(e); err != nil {
			return nil, fmt.Errorf("edge #%d: %w", i, err)
		}
	}

	return b.Build(), nil
}

// WriteNodeLink writes g as a directed multigraph node-link document.
func WriteNodeLink(w io.Writer, g *Graph) error {
	type outNode struct {
		ID          string  `json:"id"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		CountryCode string  `json:"country_code"`
	}
	doc := struct {
		Directed   bool         `json:"directed"`
		Multigraph bool         `json:"multigraph"`
		Nodes      []outNode    `json:"nodes"`
		Links      []edgeRecord `json:"links"`
	}{Directed: true, Multigraph: true, Nodes: []outNode{}, Links: []edgeRecord{}}

	for n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, outNode{ID: n.ID, Latitude: n.Latitude(), Longitude: n.Longitude(), CountryCode: n.CountryCode})
	}
	for e := range g.Edges() {
		doc.Links = append(doc.Links, toEdgeRecord(e))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// String renders an id for error messages.
func (id nodeID) String() string { return strconv.Quote(string(id)) }
