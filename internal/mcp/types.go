package mcp

import (
	"github.com/globalroute/navigator/internal/planner"
	"github.com/globalroute/navigator/pkg/routing"
)

// --- Tool Arguments ---

type FindPathsArgs struct {
	Start          string   `json:"start" jsonschema:"Origin location id, e.g. Shanghai"`
	Goal           string   `json:"goal" jsonschema:"Destination location id, e.g. Rotterdam"`
	Description    string   `json:"description" jsonschema:"Free-text description of the cargo, used to look up prohibited and restricted countries"`
	AvoidCountries []string `json:"avoid_countries,omitempty" jsonschema:"Country codes the route must not enter"`
	TopN           int      `json:"top_n,omitempty" jsonschema:"Number of routes to return (default 3)"`
	TimeWeight     *float64 `json:"time_weight,omitempty" jsonschema:"Weight of travel time, 0 to 1 (default 0.5). Must sum to 1 with price_weight"`
	PriceWeight    *float64 `json:"price_weight,omitempty" jsonschema:"Weight of price, 0 to 1 (default 0.5). Must sum to 1 with time_weight"`
	AllowedModes   []string `json:"allowed_modes,omitempty" jsonschema:"Transport modes to use: land, sea, air (default all)"`
	ProhibitedFlag string   `json:"prohibited_flag,omitempty" jsonschema:"What to do with countries prohibiting the cargo: ignore or avoid (default ignore)"`
	RestrictedFlag string   `json:"restricted_flag,omitempty" jsonschema:"What to do with countries restricting the cargo: ignore, avoid or penalty (default ignore)"`
	CargoWeight    *float64 `json:"cargo_weight,omitempty" jsonschema:"Cargo weight in kg (default 1)"`
}

type FindPathsResult struct {
	AvoidedCountries []string                      `json:"avoided_countries"`
	PenaltyCountries []string                      `json:"penalty_countries"`
	Paths            []routing.Itinerary           `json:"paths"`
	Code             string                        `json:"code,omitempty"`
	Error            string                        `json:"error,omitempty"`
	Classification   *planner.ClassificationStatus `json:"classification,omitempty"`
}

type DescribeLocationArgs struct {
	ID string `json:"id" jsonschema:"Location id as used by find_paths"`
}

type DescribeLocationResult = planner.Location
