package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/globalroute/navigator/internal/planner"
	"github.com/globalroute/navigator/pkg/graph"
)

func testPlanner(t *testing.T) *planner.Planner {
	t.Helper()
	b := graph.NewBuilder()
	for _, n := range []graph.Node{
		graph.NewNode("Genoa", 44.41, 8.93, "IT"),
		graph.NewNode("Tunis", 36.81, 10.18, "TN"),
		graph.NewNode("Algiers", 36.75, 3.06, "DZ"),
	} {
		if err := b.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []graph.Edge{
		{From: "Genoa", To: "Tunis", Mode: graph.Sea, Distance: 900, TimeNorm: 5, PriceNorm: 2},
		{From: "Genoa", To: "Algiers", Mode: graph.Sea, Distance: 950, TimeNorm: 6, PriceNorm: 2},
		{From: "Algiers", To: "Tunis", Mode: graph.Land, Distance: 800, TimeNorm: 3, PriceNorm: 3},
	} {
		if err := b.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return planner.New(b.Build(), nil, planner.Options{})
}

func TestFindPathsTool(t *testing.T) {
	svc := NewService(testPlanner(t))
	ctx := context.Background()

	_, res, err := svc.FindPaths(ctx, nil, FindPathsArgs{Start: "Genoa", Goal: "Tunis", Description: "olive oil"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Paths) != 2 || res.Error != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if !slices.Equal(res.Paths[0].Path, []string{"Genoa", "Tunis"}) {
		t.Errorf("best path = %v", res.Paths[0].Path)
	}

	t.Run("arguments override defaults", func(t *testing.T) {
		tw, pw := 1.0, 0.0
		_, res, err := svc.FindPaths(ctx, nil, FindPathsArgs{
			Start: "Genoa", Goal: "Tunis", Description: "olive oil",
			TopN: 1, TimeWeight: &tw, PriceWeight: &pw,
			AllowedModes: []string{"sea", "land"},
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Paths) != 1 {
			t.Errorf("expected 1 path, got %d", len(res.Paths))
		}
	})

	t.Run("domain failure", func(t *testing.T) {
		_, res, err := svc.FindPaths(ctx, nil, FindPathsArgs{Start: "Genoa", Goal: "Tunis", AvoidCountries: []string{"TN"}})
		if err != nil {
			t.Fatal(err)
		}
		if res.Error == "" || res.Paths == nil || len(res.Paths) != 0 {
			t.Errorf("expected an error message and no paths, got %+v", res)
		}
		if res.Code != planner.CodeBannedEndpoint {
			t.Errorf("code = %q, want %q", res.Code, planner.CodeBannedEndpoint)
		}
	})

	t.Run("invalid request", func(t *testing.T) {
		half := 0.2
		_, _, err := svc.FindPaths(ctx, nil, FindPathsArgs{Start: "Genoa", Goal: "Tunis", TimeWeight: &half})
		if !errors.Is(err, planner.ErrInvalidRequest) {
			t.Errorf("expected ErrInvalidRequest, got %v", err)
		}
	})
}

func TestDescribeLocationTool(t *testing.T) {
	svc := NewService(testPlanner(t))

	_, loc, err := svc.DescribeLocation(context.Background(), nil, DescribeLocationArgs{ID: "Algiers"})
	if err != nil {
		t.Fatal(err)
	}
	if loc.CountryCode != "DZ" || !slices.Equal(loc.Modes, []graph.Mode{graph.Land}) {
		t.Errorf("unexpected location %+v", loc)
	}

	if _, _, err := svc.DescribeLocation(context.Background(), nil, DescribeLocationArgs{ID: "Atlantis"}); !errors.Is(err, planner.ErrUnknownLocation) {
		t.Errorf("expected ErrUnknownLocation, got %v", err)
	}
}

func TestMCPServerSession(t *testing.T) {
	ctx := context.Background()
	server := NewMCPServer(testPlanner(t))

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	slices.Sort(names)
	if !slices.Equal(names, []string{"describe_location", "find_paths"}) {
		t.Errorf("tools = %v", names)
	}

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "find_paths",
		Arguments: map[string]any{"start": "Genoa", "goal": "Tunis", "description": "olive oil"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool returned an error: %+v", res.Content)
	}

	data, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatal(err)
	}
	var out FindPathsResult
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Paths) != 2 {
		t.Errorf("expected 2 paths over MCP, got %d", len(out.Paths))
	}
}
