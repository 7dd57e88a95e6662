package routing

import (
	"github.com/globalroute/navigator/pkg/graph"
)

// DefaultCargoWeight replaces any non-positive cargo weight (kg).
const DefaultCargoWeight = 1.0

// EmissionFactors are kg of CO2 per ton-km.
var EmissionFactors = map[graph.Mode]float64{
	graph.Sea:  0.015,
	graph.Land: 0.060,
	graph.Air:  0.500,
}

// volumeTiers are the cargo slices of the volume discount schedule. Each slice
// is charged at its own rate; the last one is open-ended.
var volumeTiers = []struct {
	upTo float64
	rate float64
}{
	{upTo: 100, rate: 1.0},
	{upTo: 500, rate: 0.9},
	{upTo: 1000, rate: 0.8},
	{upTo: 0, rate: 0.7},
}

// NormalizeCargoWeight coerces non-positive weights to DefaultCargoWeight.
func NormalizeCargoWeight(kg float64) float64 {
	if kg <= 0 {
		return DefaultCargoWeight
	}
	return kg
}

// TieredWeightPrice is the weight-dependent price of a leg with volume
// discounts: full rate up to 100 kg, 10% off 100-500 kg, 20% off 500-1000 kg,
// 30% off beyond.
func TieredWeightPrice(weightFactor, distance, cargoKg float64) float64 {
	perKg := distance * weightFactor
	total := 0.0
	lower := 0.0
	for _, tier := range volumeTiers {
		if cargoKg <= lower {
			break
		}
		slice := cargoKg - lower
		if tier.upTo > 0 && cargoKg > tier.upTo {
			slice = tier.upTo - lower
		}
		total += slice * perKg * tier.rate
		lower = tier.upTo
		if tier.upTo == 0 {
			break
		}
	}
	return total
}

// TieredEdgePrice is the edge's base price plus its volume-discounted weight
// price.
func TieredEdgePrice(e graph.Edge, cargoKg float64) float64 {
	return e.Price + TieredWeightPrice(e.WeightFactor, e.Distance, cargoKg)
}

// EdgePrice is the quoted price of a leg.
//
// The tiered price is still computed but the quote comes from the per-mode
// tariff below. This mirrors the deployed pricing; see DESIGN.md before
// changing it.
func EdgePrice(e graph.Edge, cargoKg float64) float64 {
	_ = TieredEdgePrice(e, cargoKg)

	d := e.Distance
	switch e.Mode {
	case graph.Air:
		price := 500 + d*0.45*(1+d/1000) + cargoKg*4.2
		if d > 5000 {
			price = max(price, 3500+(d-5000)*0.3)
		}
		return price
	case graph.Sea:
		return 200 + d*0.15 + cargoKg*0.4
	default:
		return 150 + d*0.25 + cargoKg*0.6
	}
}

// EdgeCO2 is the emission of a leg in kg of CO2.
func EdgeCO2(e graph.Edge, cargoKg float64) float64 {
	return e.Distance * EmissionFactors[e.Mode] * (cargoKg / 1000)
}
