package routing

import (
	"github.com/paulmach/orb"
	"github.com/twpayne/go-polyline"

	"github.com/globalroute/navigator/pkg/graph"
)

// Coordinate is a path node with its position, for plotting.
type Coordinate struct {
	Node      string  `json:"node"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Segment is one priced leg of an itinerary.
type Segment struct {
	From     string     `json:"from"`
	To       string     `json:"to"`
	Mode     graph.Mode `json:"mode"`
	Time     float64    `json:"time"`
	Price    float64    `json:"price"`
	Distance float64    `json:"distance"`
}

// Itinerary is a found path priced for a given cargo weight.
type Itinerary struct {
	Path        []string     `json:"path"`
	Coordinates []Coordinate `json:"coordinates"`
	Edges       []Segment    `json:"edges"`

	TimeSum     float64 `json:"time_sum"`
	PriceSum    float64 `json:"price_sum"`
	DistanceSum float64 `json:"distance_sum"`
	CO2Sum      float64 `json:"CO2_sum"`

	// Cost is the blended search cost the itinerary was ranked by.
	Cost float64 `json:"cost"`
	// Polyline is the encoded (precision 5) polyline of Coordinates.
	Polyline string `json:"polyline"`
}

// Geometry returns the itinerary as a line through its nodes.
func (it Itinerary) Geometry() orb.LineString {
	ls := make(orb.LineString, 0, len(it.Coordinates))
	for _, c := range it.Coordinates {
		ls = append(ls, orb.Point{c.Longitude, c.Latitude})
	}
	return ls
}

// BuildItinerary prices and scores one completed path. Non-positive cargo
// weights are treated as DefaultCargoWeight.
func BuildItinerary(g *graph.Graph, p CompletedPath, cargoKg float64) Itinerary {
	cargoKg = NormalizeCargoWeight(cargoKg)

	it := Itinerary{
		Path:        p.Nodes,
		Coordinates: make([]Coordinate, 0, len(p.Nodes)),
		Edges:       make([]Segment, 0, len(p.Edges)),
		Cost:        p.Cost,
	}

	for _, id := range p.Nodes {
		n, _ := g.Node(id)
		it.Coordinates = append(it.Coordinates, Coordinate{Node: id, Latitude: n.Latitude(), Longitude: n.Longitude()})
	}

	for _, e := range p.Edges {
		price := EdgePrice(e, cargoKg)
		it.Edges = append(it.Edges, Segment{
			From:     e.From,
			To:       e.To,
			Mode:     e.Mode,
			Time:     e.Time,
			Price:    price,
			Distance: e.Distance,
		})
		it.TimeSum += e.Time
		it.PriceSum += price
		it.DistanceSum += e.Distance
		it.CO2Sum += EdgeCO2(e, cargoKg)
	}

	it.Polyline = encodePolyline(it.Geometry())
	return it
}

// BuildItineraries prices every path, preserving order.
func BuildItineraries(g *graph.Graph, paths []CompletedPath, cargoKg float64) []Itinerary {
	out := make([]Itinerary, 0, len(paths))
	for _, p := range paths {
		out = append(out, BuildItinerary(g, p, cargoKg))
	}
	return out
}

func encodePolyline(ls orb.LineString) string {
	coords := make([][]float64, 0, len(ls))
	for _, pt := range ls {
		coords = append(coords, []float64{pt.Lat(), pt.Lon()})
	}
	return string(polyline.EncodeCoords(coords))
}
