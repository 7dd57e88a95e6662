package graph

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/globalroute/navigator/pkg/persistence"
)

// SnapshotVersion is the format version written into snapshot headers.
const SnapshotVersion = 1

// ErrBadSnapshot reports a structurally valid frame stream that does not
// describe a graph (missing header, wrong version, count mismatch).
var ErrBadSnapshot = errors.New("bad graph snapshot")

type snapshotHeader struct {
	Version     int          `json:"version"`
	Nodes       int          `json:"nodes"`
	Edges       int          `json:"edges"`
	Calibration *Calibration `json:"calibration,omitempty"`
}

type nodeRecord struct {
	ID          string  `json:"id"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	CountryCode string  `json:"country_code"`
}

type edgeRecord struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Key          int     `json:"key"`
	Mode         Mode    `json:"mode"`
	Distance     float64 `json:"distance"`
	Time         float64 `json:"time"`
	Price        float64 `json:"price"`
	WeightFactor float64 `json:"weight_factor"`
	TimeNorm     float64 `json:"time_norm"`
	PriceNorm    float64 `json:"price_norm"`
}

func toEdgeRecord(e Edge) edgeRecord {
	return edgeRecord{
		Source: e.From, Target: e.To, Key: e.Key, Mode: e.Mode,
		Distance: e.Distance, Time: e.Time, Price: e.Price, WeightFactor: e.WeightFactor,
		TimeNorm: e.TimeNorm, PriceNorm: e.PriceNorm,
	}
}

func (r edgeRecord) edge() Edge {
	return Edge{
		From: r.Source, To: r.Target, Key: r.Key, Mode: r.Mode,
		Distance: r.Distance, Time: r.Time, Price: r.Price, WeightFactor: r.WeightFactor,
		TimeNorm: r.TimeNorm, PriceNorm: r.PriceNorm,
	}
}

// WriteSnapshot serializes g as a framed snapshot.
func WriteSnapshot(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	fw := persistence.NewFrameWriter(bw)

	hdr := snapshotHeader{Version: SnapshotVersion, Nodes: g.Len(), Edges: g.EdgeCount()}
	if c, ok := g.Calibration(); ok {
		hdr.Calibration = &c
	}
	if err := writeRecord(fw, persistence.OpHeader, hdr); err != nil {
		return err
	}

	for n := range g.Nodes() {
		rec := nodeRecord{ID: n.ID, Latitude: n.Latitude(), Longitude: n.Longitude(), CountryCode: n.CountryCode}
		if err := writeRecord(fw, persistence.OpNode, rec); err != nil {
			return err
		}
	}
	for e := range g.Edges() {
		if err := writeRecord(fw, persistence.OpEdge, toEdgeRecord(e)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(fw *persistence.FrameWriter, op persistence.OpCode, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", op, err)
	}
	if err := fw.WriteFrame(op, payload); err != nil {
		return fmt.Errorf("failed to write %s frame: %w", op, err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot. Every node and edge
// goes through the Builder validation.
func ReadSnapshot(r io.Reader) (*Graph, error) {
	br := bufio.NewReader(r)

	first, err := persistence.ReadFrame(br)
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty stream", ErrBadSnapshot)
		}
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if first.Op != persistence.OpHeader {
		return nil, fmt.Errorf("%w: first frame is %s, want header", ErrBadSnapshot, first.Op)
	}
	var hdr snapshotHeader
	if err := json.Unmarshal(first.Payload, &hdr); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrBadSnapshot, err)
	}
	if hdr.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrBadSnapshot, hdr.Version, SnapshotVersion)
	}

	b := NewBuilder()
	if hdr.Calibration != nil {
		b.SetCalibration(*hdr.Calibration)
	}

	for {
		frame, err := persistence.ReadFrame(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot frame: %w", err)
		}

		switch frame.Op {
		case persistence.OpNode:
			var rec nodeRecord
			if err := json.Unmarshal(frame.Payload, &rec); err != nil {
				return nil, fmt.Errorf("%w: node record: %v", ErrBadSnapshot, err)
			}
			if err := b.AddNode(NewNode(rec.ID, rec.Latitude, rec.Longitude, rec.CountryCode)); err != nil {
				return nil, err
			}
		case persistence.OpEdge:
			var rec edgeRecord
			if err := json.Unmarshal(frame.Payload, &rec); err != nil {
				return nil, fmt.Errorf("%w: edge record: %v", ErrBadSnapshot, err)
			}
			if err := b.AddEdge(rec.edge()); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: unexpected %s frame", ErrBadSnapshot, frame.Op)
		}
	}

	g := b.Build()
	if g.Len() != hdr.Nodes || g.EdgeCount() != hdr.Edges {
		return nil, fmt.Errorf("%w: header announces %d nodes/%d edges, read %d/%d",
			ErrBadSnapshot, hdr.Nodes, hdr.Edges, g.Len(), g.EdgeCount())
	}
	return g, nil
}

// SaveSnapshot writes g to path atomically (temp file + rename).
func SaveSnapshot(path string, g *Graph) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("could not create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteSnapshot(tmp, g); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("could not sync snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close snapshot file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFile loads a graph from disk. Files ending in .json are read as node-link
// documents, anything else as a framed snapshot.
func LoadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open graph file: %w", err)
	}
	defer f.Close()

	var g *Graph
	if strings.EqualFold(filepath.Ext(path), ".json") {
		g, err = ReadNodeLink(f)
	} else {
		g, err = ReadSnapshot(f)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading graph from %s: %w", path, err)
	}

	slog.Info("Graph loaded", "path", path, "nodes", g.Len(), "edges", g.EdgeCount())
	return g, nil
}
