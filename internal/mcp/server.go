package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/globalroute/navigator/internal/planner"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

func NewMCPServer(p *planner.Planner) *mcp.Server {
	service := NewService(p)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "GlobalRoute Navigator",
		Version: Version,
	}, nil)

	// Argument and result schemas are inferred from the structs.

	mcp.AddTool(s, &mcp.Tool{
		Name:        "find_paths",
		Description: "Find the cheapest multimodal (land/sea/air) freight routes between two locations, with prices, transit times and CO2 emissions.",
	}, service.FindPaths)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "describe_location",
		Description: "Look up a location of the transport network: coordinates, country and the transport modes leaving it.",
	}, service.DescribeLocation)

	return s
}
