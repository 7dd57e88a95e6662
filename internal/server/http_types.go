package server

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// maxBodyBytes bounds a request body.
const maxBodyBytes = 1 << 20

func ptr[T any](v T) *T { return &v }

// findPathsSchema describes the body of POST /find_paths/. Only start, goal
// and description are required; the other fields default server side.
func findPathsSchema() *jsonschema.Schema {
	countryList := &jsonschema.Schema{
		Types: []string{"array", "null"},
		Items: &jsonschema.Schema{Type: "string"},
	}
	weight := func(desc string) *jsonschema.Schema {
		return &jsonschema.Schema{Type: "number", Minimum: ptr(0.0), Maximum: ptr(1.0), Description: desc}
	}

	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"start", "goal", "description"},
		Properties: map[string]*jsonschema.Schema{
			"start":           {Type: "string", Description: "Origin node id"},
			"goal":            {Type: "string", Description: "Destination node id"},
			"avoid_countries": countryList,
			"top_n":           {Type: "integer", Minimum: ptr(1.0), Description: "Number of routes to return"},
			"time_weight":     weight("Weight of travel time in the route cost"),
			"price_weight":    weight("Weight of price in the route cost"),
			"allowed_modes": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string", Enum: []any{"land", "sea", "air"}},
			},
			"prohibited_flag": {Type: "string", Enum: []any{"ignore", "avoid"}},
			"restricted_flag": {Type: "string", Enum: []any{"ignore", "avoid", "penalty"}},
			"description":     {Type: "string", Description: "Free-text description of the cargo"},
			"cargo_weight":    {Type: "number", Minimum: ptr(0.0), Description: "Cargo weight in kg"},
		},
	}
}

// rootInfo is the payload of GET /.
type rootInfo struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
	Network   networkInfo       `json:"network"`
}

type networkInfo struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// healthInfo is the payload of GET /health.
type healthInfo struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
