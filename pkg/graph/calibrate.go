package graph

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// HandlingHours is added to every leg's travel time for loading and unloading.
const HandlingHours = 0.5

// Scale is a [Min, Max] calibration window used to rescale a raw metric onto
// 0..100.
type Scale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Normalize maps v onto 0..100. Values outside the window map outside the band;
// they are not clamped. A degenerate window maps everything to 0.
func (s Scale) Normalize(v float64) float64 {
	if s.Max == s.Min {
		return 0
	}
	return (v - s.Min) / (s.Max - s.Min) * 100
}

// Calibration holds the time and price windows used to normalize edge costs.
type Calibration struct {
	Time  Scale `json:"time"`
	Price Scale `json:"price"`
}

// ModeProfile describes the nominal performance and tariff of a transport mode.
type ModeProfile struct {
	SpeedKmh     float64 `yaml:"speed_kmh" json:"speed_kmh"`
	FixedCost    float64 `yaml:"fixed_cost" json:"fixed_cost"`
	CostPerKm    float64 `yaml:"cost_per_km" json:"cost_per_km"`
	WeightFactor float64 `yaml:"weight_factor" json:"weight_factor"`
}

// DefaultProfiles are industry benchmark values per mode.
var DefaultProfiles = map[Mode]ModeProfile{
	Air:  {SpeedKmh: 800, FixedCost: 35, CostPerKm: 0.0015, WeightFactor: 0.00012},
	Sea:  {SpeedKmh: 35, FixedCost: 20, CostPerKm: 0.0003, WeightFactor: 0.00003},
	Land: {SpeedKmh: 70, FixedCost: 15, CostPerKm: 0.0008, WeightFactor: 0.00008},
}

// Time returns the travel time in hours for a leg of the given length.
func (p ModeProfile) Time(distance float64) float64 {
	return distance/p.SpeedKmh + HandlingHours
}

// Price returns the base price of a leg, without cargo weight.
func (p ModeProfile) Price(distance float64) float64 {
	return p.FixedCost + distance*p.CostPerKm
}

// Calibrate recomputes time, price and weight factor of every edge from its
// mode profile and distance, then normalizes time and price against the
// min/max observed over the whole network. It returns a new graph; g is left
// untouched.
func Calibrate(g *Graph, profiles map[Mode]ModeProfile) (*Graph, Calibration, error) {
	for _, m := range AllModes {
		p, ok := profiles[m]
		if !ok {
			return nil, Calibration{}, fmt.Errorf("%w: no profile for mode %s", ErrInvalidMode, m)
		}
		if p.SpeedKmh <= 0 {
			return nil, Calibration{}, fmt.Errorf("%w: mode %s has speed %f", ErrInvalidMode, m, p.SpeedKmh)
		}
	}

	edges := make([]Edge, 0, g.EdgeCount())
	times := make([]float64, 0, g.EdgeCount())
	prices := make([]float64, 0, g.EdgeCount())
	for e := range g.Edges() {
		p := profiles[e.Mode]
		e.Time = p.Time(e.Distance)
		e.Price = p.Price(e.Distance)
		e.WeightFactor = p.WeightFactor
		edges = append(edges, e)
		times = append(times, e.Time)
		prices = append(prices, e.Price)
	}

	var cal Calibration
	if len(edges) > 0 {
		cal = Calibration{
			Time:  Scale{Min: floats.Min(times), Max: floats.Max(times)},
			Price: Scale{Min: floats.Min(prices), Max: floats.Max(prices)},
		}
	}

	b := NewBuilder()
	b.SetCalibration(cal)
	for n := range g.Nodes() {
		if err := b.AddNode(n); err != nil {
			return nil, Calibration{}, err
		}
	}
	for _, e := range edges {
		e.TimeNorm = cal.Time.Normalize(e.Time)
		e.PriceNorm = cal.Price.Normalize(e.Price)
		if err := b.AddEdge(e); err != nil {
			return nil, Calibration{}, err
		}
	}
	return b.Build(), cal, nil
}
