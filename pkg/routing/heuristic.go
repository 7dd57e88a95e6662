package routing

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/globalroute/navigator/pkg/graph"
)

// EarthRadiusKm is the sphere radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Optimistic per-km figures for the heuristic: the fastest mode's speed and the
// cheapest mode's tariff for a 1 kg shipment.
const (
	heuristicSpeedKmh    = 800.0
	heuristicBasePrice   = 20.0
	heuristicPricePerKm  = 0.0003
	heuristicWeightPerKm = 0.00003
)

// Global calibration windows shared with the edge normalization. They are fixed
// rather than derived from the query, so the heuristic is not guaranteed to be
// admissible.
var (
	TimeScale  = graph.Scale{Min: 0.5, Max: 100.0}
	PriceScale = graph.Scale{Min: 10, Max: 1000.0}
)

// Haversine returns the great-circle distance in km between two points.
func Haversine(a, b orb.Point) float64 {
	lat1, lat2 := a.Lat()*math.Pi/180, b.Lat()*math.Pi/180
	dlat := (b.Lat() - a.Lat()) * math.Pi / 180
	dlon := (b.Lon() - a.Lon()) * math.Pi / 180

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// Heuristics estimates the remaining cost from every node of g to goal, blended
// with the same weights as the edge costs. The goal maps to exactly 0.
//
// The estimate is optimistic in spirit (fastest speed, cheapest tariff) but is
// normalized with TimeScale/PriceScale, so it can go negative for short hops and
// can overestimate on networks calibrated with different bounds.
func Heuristics(g *graph.Graph, goal string, timeWeight, priceWeight float64) map[string]float64 {
	h := make(map[string]float64, g.Len())

	goalNode, ok := g.Node(goal)
	if !ok {
		return h
	}

	for n := range g.Nodes() {
		if n.ID == goal {
			h[n.ID] = 0
			continue
		}
		dist := Haversine(n.Position, goalNode.Position)

		timeEst := dist / heuristicSpeedKmh
		priceEst := heuristicBasePrice + dist*heuristicPricePerKm + dist*heuristicWeightPerKm

		h[n.ID] = timeWeight*TimeScale.Normalize(timeEst) + priceWeight*PriceScale.Normalize(priceEst)
	}
	return h
}
