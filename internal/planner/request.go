package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/globalroute/navigator/pkg/classifier"
	"github.com/globalroute/navigator/pkg/countries"
	"github.com/globalroute/navigator/pkg/graph"
	"github.com/globalroute/navigator/pkg/routing"
)

// ErrInvalidRequest is returned for requests rejected before any search runs.
var ErrInvalidRequest = errors.New("invalid request")

// Accepted range of time_weight + price_weight.
const (
	minWeightSum = 0.99
	maxWeightSum = 1.01
)

// Request is a route query as accepted by the public endpoints.
type Request struct {
	Start          string                       `json:"start"`
	Goal           string                       `json:"goal"`
	AvoidCountries []string                     `json:"avoid_countries"`
	TopN           int                          `json:"top_n"`
	TimeWeight     float64                      `json:"time_weight"`
	PriceWeight    float64                      `json:"price_weight"`
	AllowedModes   []graph.Mode                 `json:"allowed_modes"`
	ProhibitedFlag countries.ProhibitedHandling `json:"prohibited_flag"`
	RestrictedFlag countries.RestrictedHandling `json:"restricted_flag"`
	Description    string                       `json:"description"`
	// CargoWeight is in kg. Zero is accepted and priced as 1 kg.
	CargoWeight float64 `json:"cargo_weight"`
}

// DefaultRequest returns a request with every optional field at its default.
// Decode request bodies over it.
func DefaultRequest() Request {
	return Request{
		AvoidCountries: []string{},
		TopN:           3,
		TimeWeight:     0.5,
		PriceWeight:    0.5,
		AllowedModes:   []graph.Mode{graph.Land, graph.Sea, graph.Air},
		ProhibitedFlag: countries.ProhibitedIgnore,
		RestrictedFlag: countries.RestrictedIgnore,
		CargoWeight:    routing.DefaultCargoWeight,
	}
}

// Policy returns the country policy selected by the request flags.
func (r Request) Policy() countries.Policy {
	return countries.Policy{Prohibited: r.ProhibitedFlag, Restricted: r.RestrictedFlag}
}

// Validate checks the request. maxTopN <= 0 disables the top_n cap.
func (r Request) Validate(maxTopN int) error {
	if r.TopN <= 0 {
		return fmt.Errorf("%w: top_n must be greater than 0", ErrInvalidRequest)
	}
	if maxTopN > 0 && r.TopN > maxTopN {
		return fmt.Errorf("%w: top_n must be at most %d", ErrInvalidRequest, maxTopN)
	}
	for name, w := range map[string]float64{"time_weight": r.TimeWeight, "price_weight": r.PriceWeight} {
		if math.IsNaN(w) || w < 0 || w > 1 {
			return fmt.Errorf("%w: %s must be between 0 and 1", ErrInvalidRequest, name)
		}
	}
	if sum := r.TimeWeight + r.PriceWeight; sum < minWeightSum || sum > maxWeightSum {
		return fmt.Errorf("%w: time_weight and price_weight must sum to 1", ErrInvalidRequest)
	}
	if math.IsNaN(r.CargoWeight) || r.CargoWeight < 0 {
		return fmt.Errorf("%w: cargo_weight must be greater than or equal to 0", ErrInvalidRequest)
	}
	for _, m := range r.AllowedModes {
		if !m.Valid() {
			return fmt.Errorf("%w: unknown mode %q in allowed_modes", ErrInvalidRequest, m)
		}
	}
	if err := r.Policy().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Failure is the payload of a valid request that has no answer.
type Failure struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Failure codes.
const (
	CodeNodeNotFound   = "node_not_found"
	CodeBannedEndpoint = "banned_endpoint"
	CodeNoPathFound    = "no_path_found"
)

// ClassificationStatus reports what the classifier contributed.
type ClassificationStatus struct {
	Available    bool     `json:"available"`
	Reason       string   `json:"reason,omitempty"`
	ProhibitedIn []string `json:"prohibited_in"`
	RestrictedIn []string `json:"restricted_in"`
}

func newClassificationStatus(r classifier.Result) *ClassificationStatus {
	s := &ClassificationStatus{
		Available:    r.Available,
		Reason:       r.Reason,
		ProhibitedIn: r.ProhibitedIn,
		RestrictedIn: r.RestrictedIn,
	}
	if s.ProhibitedIn == nil {
		s.ProhibitedIn = []string{}
	}
	if s.RestrictedIn == nil {
		s.RestrictedIn = []string{}
	}
	return s
}

// Response is the answer to a route query. Exactly one of Paths and Failure is
// meaningful; on the wire both go under "paths".
type Response struct {
	AvoidedCountries []string
	PenaltyCountries []string
	Paths            []routing.Itinerary
	Failure          *Failure
	// Classification is set when the request flags asked for the classifier.
	Classification *ClassificationStatus
}

// MarshalJSON renders "paths" as the itinerary list or, for a failed search,
// as the failure object.
func (r Response) MarshalJSON() ([]byte, error) {
	out := struct {
		AvoidedCountries []string              `json:"avoided_countries"`
		PenaltyCountries []string              `json:"penalty_countries"`
		Paths            any                   `json:"paths"`
		Classification   *ClassificationStatus `json:"classification,omitempty"`
	}{
		AvoidedCountries: nonNil(r.AvoidedCountries),
		PenaltyCountries: nonNil(r.PenaltyCountries),
		Classification:   r.Classification,
	}
	switch {
	case r.Failure != nil:
		out.Paths = r.Failure
	case r.Paths != nil:
		out.Paths = r.Paths
	default:
		out.Paths = []routing.Itinerary{}
	}
	return json.Marshal(out)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
