package planner

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/globalroute/navigator/pkg/classifier"
	"github.com/globalroute/navigator/pkg/countries"
	"github.com/globalroute/navigator/pkg/graph"
)

type fakeClassifier struct {
	result classifier.Classification
	err    error
}

func (f fakeClassifier) Classify(ctx context.Context, description string) (classifier.Classification, error) {
	return f.result, f.err
}

// testNetwork: Shanghai (CN) reaches Rotterdam (NL) by sea through Singapore
// (SG) or by air directly; Dubai (AE) is a dead end.
func testNetwork(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	for _, n := range []graph.Node{
		graph.NewNode("Shanghai", 31.23, 121.47, "CN"),
		graph.NewNode("Singapore", 1.29, 103.85, "SG"),
		graph.NewNode("Rotterdam", 51.92, 4.48, "NL"),
		graph.NewNode("Dubai", 25.20, 55.27, "AE"),
	} {
		if err := b.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	edges := []graph.Edge{
		{From: "Shanghai", To: "Singapore", Mode: graph.Sea, Distance: 3800, Time: 109, Price: 21, TimeNorm: 20, PriceNorm: 5},
		{From: "Singapore", To: "Rotterdam", Mode: graph.Sea, Distance: 15300, Time: 437, Price: 25, TimeNorm: 80, PriceNorm: 10},
		{From: "Shanghai", To: "Rotterdam", Mode: graph.Air, Distance: 8900, Time: 11.6, Price: 48, TimeNorm: 2, PriceNorm: 90},
		{From: "Shanghai", To: "Dubai", Mode: graph.Air, Distance: 6400, Time: 8.5, Price: 45, TimeNorm: 1, PriceNorm: 70},
	}
	for _, e := range edges {
		e.Key = b.NextKey(e.From, e.To)
		if err := b.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return b.Build()
}

func request(start, goal string) Request {
	req := DefaultRequest()
	req.Start, req.Goal = start, goal
	req.Description = "electronics"
	return req
}

func TestFindPaths(t *testing.T) {
	p := New(testNetwork(t), nil, Options{})

	resp, err := p.FindPaths(context.Background(), request("Shanghai", "Rotterdam"))
	if err != nil {
		t.Fatalf("FindPaths failed: %v", err)
	}
	if resp.Failure != nil {
		t.Fatalf("unexpected failure: %+v", resp.Failure)
	}
	if len(resp.Paths) != 2 {
		t.Fatalf("expected 2 itineraries, got %d", len(resp.Paths))
	}
	if resp.Paths[0].Cost > resp.Paths[1].Cost {
		t.Errorf("itineraries not sorted by cost")
	}
	if resp.Classification != nil {
		t.Errorf("classification reported although flags are ignore")
	}

	t.Run("mode filter", func(t *testing.T) {
		req := request("Shanghai", "Rotterdam")
		req.AllowedModes = []graph.Mode{graph.Sea}
		resp, err := p.FindPaths(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if len(resp.Paths) != 1 || !slices.Equal(resp.Paths[0].Path, []string{"Shanghai", "Singapore", "Rotterdam"}) {
			t.Errorf("unexpected paths: %+v", resp.Paths)
		}
	})
}

func TestFindPathsDomainFailures(t *testing.T) {
	p := New(testNetwork(t), nil, Options{})

	tests := []struct {
		name    string
		req     Request
		code    string
		message string
	}{
		{"unknown node", request("Atlantis", "Rotterdam"), CodeNodeNotFound, "Start or goal node not in graph"},
		{"banned endpoint", func() Request {
			r := request("Shanghai", "Rotterdam")
			r.AvoidCountries = []string{"NL"}
			return r
		}(), CodeBannedEndpoint, "No valid route: Start (Shanghai) or goal (Rotterdam) is in a banned country."},
		{"no path", request("Dubai", "Rotterdam"), CodeNoPathFound, "No paths found between Dubai and Rotterdam with selected parameters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := p.FindPaths(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("domain failures must not be errors, got %v", err)
			}
			if resp.Failure == nil || resp.Failure.Code != tt.code || resp.Failure.Error != tt.message {
				t.Errorf("failure = %+v, want %s %q", resp.Failure, tt.code, tt.message)
			}
		})
	}
}

func TestFindPathsInvalidRequests(t *testing.T) {
	p := New(testNetwork(t), nil, Options{MaxTopN: 10})

	mutate := func(f func(*Request)) Request {
		r := request("Shanghai", "Rotterdam")
		f(&r)
		return r
	}
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"weights sum", mutate(func(r *Request) { r.TimeWeight, r.PriceWeight = 0.7, 0.7 }), "sum to 1"},
		{"weight range", mutate(func(r *Request) { r.TimeWeight, r.PriceWeight = 1.5, -0.5 }), "between 0 and 1"},
		{"top_n zero", mutate(func(r *Request) { r.TopN = 0 }), "top_n"},
		{"top_n cap", mutate(func(r *Request) { r.TopN = 11 }), "at most 10"},
		{"negative cargo", mutate(func(r *Request) { r.CargoWeight = -1 }), "cargo_weight"},
		{"bad mode", mutate(func(r *Request) { r.AllowedModes = []graph.Mode{"rail"} }), "allowed_modes"},
		{"bad flag", mutate(func(r *Request) { r.RestrictedFlag = "block" }), "restricted_flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.FindPaths(context.Background(), tt.req)
			if !errors.Is(err, ErrInvalidRequest) || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected invalid request mentioning %q, got %v", tt.want, err)
			}
		})
	}

	t.Run("weights within tolerance", func(t *testing.T) {
		req := mutate(func(r *Request) { r.TimeWeight, r.PriceWeight = 0.5, 0.505 })
		if _, err := p.FindPaths(context.Background(), req); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestFindPathsWithClassifier(t *testing.T) {
	g := testNetwork(t)

	t.Run("avoid prohibited", func(t *testing.T) {
		resolver := countries.NewResolver(fakeClassifier{result: classifier.Classification{
			ProhibitedIn: []string{"SG"},
			RestrictedIn: []string{"AE"},
		}})
		p := New(g, resolver, Options{})

		req := request("Shanghai", "Rotterdam")
		req.ProhibitedFlag = countries.ProhibitedAvoid
		req.RestrictedFlag = countries.RestrictedPenalty
		resp, err := p.FindPaths(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(resp.AvoidedCountries, []string{"SG"}) || !slices.Equal(resp.PenaltyCountries, []string{"AE"}) {
			t.Errorf("avoid %v, penalty %v", resp.AvoidedCountries, resp.PenaltyCountries)
		}
		if len(resp.Paths) != 1 || resp.Paths[0].Edges[0].Mode != graph.Air {
			t.Errorf("expected the direct flight only, got %+v", resp.Paths)
		}
		if resp.Classification == nil || !resp.Classification.Available {
			t.Errorf("classification = %+v", resp.Classification)
		}
	})

	t.Run("classifier failure", func(t *testing.T) {
		resolver := countries.NewResolver(fakeClassifier{err: errors.New("timeout")})
		p := New(g, resolver, Options{})

		req := request("Shanghai", "Rotterdam")
		req.ProhibitedFlag = countries.ProhibitedAvoid
		resp, err := p.FindPaths(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if len(resp.Paths) != 2 {
			t.Errorf("search should run unconstrained, got %d paths", len(resp.Paths))
		}
		if resp.Classification == nil || resp.Classification.Available || resp.Classification.Reason == "" {
			t.Errorf("classification = %+v", resp.Classification)
		}
	})
}

func TestResponseJSON(t *testing.T) {
	p := New(testNetwork(t), nil, Options{})

	decode := func(resp Response) map[string]json.RawMessage {
		t.Helper()
		data, err := json.Marshal(resp)
		if err != nil {
			t.Fatal(err)
		}
		var out map[string]json.RawMessage
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatal(err)
		}
		return out
	}

	ok, _ := p.FindPaths(context.Background(), request("Shanghai", "Rotterdam"))
	body := decode(ok)
	if string(body["avoided_countries"]) != "[]" || string(body["penalty_countries"]) != "[]" {
		t.Errorf("country lists must be empty arrays: %s %s", body["avoided_countries"], body["penalty_countries"])
	}
	var paths []map[string]any
	if err := json.Unmarshal(body["paths"], &paths); err != nil {
		t.Fatalf("paths is not a list: %s", body["paths"])
	}
	for _, key := range []string{"path", "coordinates", "edges", "time_sum", "price_sum", "distance_sum", "CO2_sum"} {
		if _, present := paths[0][key]; !present {
			t.Errorf("itinerary misses %q", key)
		}
	}

	failed, _ := p.FindPaths(context.Background(), request("Atlantis", "Rotterdam"))
	var failure map[string]string
	if err := json.Unmarshal(decode(failed)["paths"], &failure); err != nil {
		t.Fatalf("paths is not an object: %v", err)
	}
	if failure["error"] != "Start or goal node not in graph" {
		t.Errorf("failure payload = %v", failure)
	}
}

func TestDescribe(t *testing.T) {
	p := New(testNetwork(t), nil, Options{})

	loc, err := p.Describe("Shanghai")
	if err != nil {
		t.Fatal(err)
	}
	if loc.CountryCode != "CN" || loc.OutDegree != 3 || !slices.Equal(loc.Modes, []graph.Mode{graph.Sea, graph.Air}) {
		t.Errorf("unexpected location %+v", loc)
	}

	if _, err := p.Describe("Atlantis"); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("expected ErrUnknownLocation, got %v", err)
	}
}

func TestDefaults(t *testing.T) {
	if got := New(testNetwork(t), nil, Options{DefaultTopN: 7}).Defaults().TopN; got != 7 {
		t.Errorf("TopN = %d, want 7", got)
	}
	if got := New(testNetwork(t), nil, Options{}).Defaults().TopN; got != 3 {
		t.Errorf("TopN = %d, want 3", got)
	}
}
