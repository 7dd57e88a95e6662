// Package planner runs a complete route query: country constraints, search and
// pricing. It is shared by the HTTP and MCP surfaces.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/globalroute/navigator/pkg/countries"
	"github.com/globalroute/navigator/pkg/graph"
	"github.com/globalroute/navigator/pkg/metrics"
	"github.com/globalroute/navigator/pkg/routing"
)

// ErrUnknownLocation is returned by Describe for ids not in the network.
var ErrUnknownLocation = errors.New("unknown location")

// Options tunes a Planner.
type Options struct {
	// DefaultTopN replaces the built-in top_n default when positive.
	DefaultTopN int
	// MaxTopN caps top_n; zero disables the cap.
	MaxTopN int
}

// Planner answers route queries over one immutable network.
type Planner struct {
	graph    *graph.Graph
	resolver *countries.Resolver
	opts     Options
}

// New creates a planner. A nil resolver behaves as one without classifier.
func New(g *graph.Graph, resolver *countries.Resolver, opts Options) *Planner {
	if resolver == nil {
		resolver = countries.NewResolver(nil)
	}
	return &Planner{graph: g, resolver: resolver, opts: opts}
}

// Graph returns the network the planner searches.
func (p *Planner) Graph() *graph.Graph { return p.graph }

// Defaults returns the request defaults, with the configured top_n.
func (p *Planner) Defaults() Request {
	req := DefaultRequest()
	if p.opts.DefaultTopN > 0 {
		req.TopN = p.opts.DefaultTopN
	}
	return req
}

// FindPaths validates req, resolves its country constraints and returns the
// priced itineraries. Domain outcomes without a route (unknown endpoint,
// banned endpoint, no path) are reported in Response.Failure with a nil
// error; only invalid requests and internal faults return an error.
func (p *Planner) FindPaths(ctx context.Context, req Request) (Response, error) {
	if err := req.Validate(p.opts.MaxTopN); err != nil {
		return Response{}, err
	}

	policy := req.Policy()
	constraints, classification := p.resolver.Resolve(ctx, req.AvoidCountries, req.Description, policy)

	resp := Response{
		AvoidedCountries: constraints.Avoid,
		PenaltyCountries: constraints.Penalty,
	}
	if policy.NeedsClassification() {
		resp.Classification = newClassificationStatus(classification)
	}

	started := time.Now()
	paths, stats, err := routing.Search(p.graph, routing.Query{
		Start:       req.Start,
		Goal:        req.Goal,
		Avoid:       constraints.Avoid,
		Penalty:     constraints.Penalty,
		TopN:        req.TopN,
		TimeWeight:  req.TimeWeight,
		PriceWeight: req.PriceWeight,
		Modes:       req.AllowedModes,
	})
	metrics.SearchDuration.Observe(time.Since(started).Seconds())
	metrics.NodesExpanded.Observe(float64(stats.Expanded))

	if err != nil {
		failure, outcome := domainFailure(err, req)
		metrics.SearchesTotal.WithLabelValues(outcome).Inc()
		if failure == nil {
			slog.Error("Route search failed", "start", req.Start, "goal", req.Goal, "error", err)
			return Response{}, fmt.Errorf("route search failed: %w", err)
		}
		slog.Info("Route search found no route",
			"start", req.Start, "goal", req.Goal, "reason", outcome, "expanded", stats.Expanded)
		resp.Failure = failure
		return resp, nil
	}

	resp.Paths = routing.BuildItineraries(p.graph, paths, req.CargoWeight)
	metrics.SearchesTotal.WithLabelValues("ok").Inc()

	slog.Info("Route search completed",
		"start", req.Start,
		"goal", req.Goal,
		"paths", len(resp.Paths),
		"expanded", stats.Expanded,
		"goal_arrivals", stats.GoalArrivals,
		"duration", time.Since(started),
	)
	return resp, nil
}

// domainFailure maps search errors to response payloads. A nil Failure means
// the error is not a domain outcome.
func domainFailure(err error, req Request) (*Failure, string) {
	switch {
	case errors.Is(err, routing.ErrNodeNotFound):
		return &Failure{Code: CodeNodeNotFound, Error: "Start or goal node not in graph"}, CodeNodeNotFound
	case errors.Is(err, routing.ErrBannedEndpoint):
		return &Failure{
			Code:  CodeBannedEndpoint,
			Error: fmt.Sprintf("No valid route: Start (%s) or goal (%s) is in a banned country.", req.Start, req.Goal),
		}, CodeBannedEndpoint
	case errors.Is(err, routing.ErrNoPathFound):
		return &Failure{
			Code:  CodeNoPathFound,
			Error: fmt.Sprintf("No paths found between %s and %s with selected parameters.", req.Start, req.Goal),
		}, CodeNoPathFound
	default:
		return nil, "error"
	}
}

// Location describes one node of the network.
type Location struct {
	ID          string       `json:"id"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
	CountryCode string       `json:"country_code"`
	OutDegree   int          `json:"out_degree"`
	Modes       []graph.Mode `json:"modes"`
}

// Describe returns the location with the given id.
func (p *Planner) Describe(id string) (Location, error) {
	n, ok := p.graph.Node(id)
	if !ok {
		return Location{}, fmt.Errorf("%w: %s", ErrUnknownLocation, id)
	}
	modes := p.graph.OutModes(id)
	if modes == nil {
		modes = []graph.Mode{}
	}
	return Location{
		ID:          n.ID,
		Latitude:    n.Latitude(),
		Longitude:   n.Longitude(),
		CountryCode: n.CountryCode,
		OutDegree:   p.graph.OutDegree(id),
		Modes:       modes,
	}, nil
}
