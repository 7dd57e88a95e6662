package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/globalroute/navigator/internal/planner"
	"github.com/globalroute/navigator/pkg/countries"
	"github.com/globalroute/navigator/pkg/graph"
	"github.com/globalroute/navigator/pkg/routing"
)

type Service struct {
	planner *planner.Planner
}

func NewService(p *planner.Planner) *Service {
	return &Service{planner: p}
}

// --- Tool Handlers ---

func (s *Service) FindPaths(ctx context.Context, req *mcp.CallToolRequest, args FindPathsArgs) (*mcp.CallToolResult, FindPathsResult, error) {
	r := s.toRequest(args)

	resp, err := s.planner.FindPaths(ctx, r)
	if err != nil {
		return nil, FindPathsResult{}, err
	}

	out := FindPathsResult{
		AvoidedCountries: nonNil(resp.AvoidedCountries),
		PenaltyCountries: nonNil(resp.PenaltyCountries),
		Paths:            resp.Paths,
		Classification:   resp.Classification,
	}
	if out.Paths == nil {
		out.Paths = []routing.Itinerary{}
	}
	if resp.Failure != nil {
		out.Code = resp.Failure.Code
		out.Error = resp.Failure.Error
	}

	slog.Debug("MCP find_paths", "start", args.Start, "goal", args.Goal, "paths", len(out.Paths))
	return nil, out, nil
}

func (s *Service) DescribeLocation(ctx context.Context, req *mcp.CallToolRequest, args DescribeLocationArgs) (*mcp.CallToolResult, DescribeLocationResult, error) {
	loc, err := s.planner.Describe(args.ID)
	if err != nil {
		return nil, DescribeLocationResult{}, err
	}
	return nil, loc, nil
}

// toRequest fills the omitted arguments with the planner defaults.
func (s *Service) toRequest(args FindPathsArgs) planner.Request {
	r := s.planner.Defaults()
	r.Start = args.Start
	r.Goal = args.Goal
	r.Description = args.Description

	if args.AvoidCountries != nil {
		r.AvoidCountries = args.AvoidCountries
	}
	if args.TopN != 0 {
		r.TopN = args.TopN
	}
	if args.TimeWeight != nil {
		r.TimeWeight = *args.TimeWeight
	}
	if args.PriceWeight != nil {
		r.PriceWeight = *args.PriceWeight
	}
	if len(args.AllowedModes) > 0 {
		r.AllowedModes = make([]graph.Mode, 0, len(args.AllowedModes))
		for _, m := range args.AllowedModes {
			r.AllowedModes = append(r.AllowedModes, graph.Mode(m))
		}
	}
	if args.ProhibitedFlag != "" {
		r.ProhibitedFlag = countries.ProhibitedHandling(args.ProhibitedFlag)
	}
	if args.RestrictedFlag != "" {
		r.RestrictedFlag = countries.RestrictedHandling(args.RestrictedFlag)
	}
	if args.CargoWeight != nil {
		r.CargoWeight = *args.CargoWeight
	}
	return r
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
