// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes fleet tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/moore-mac/vehicle-rental-manager/internal/analytics"
	"github.com/moore-mac/vehicle-rental-manager/internal/fleet"
)

// Server wraps the MCP server with fleet tools.
type Server struct {
	mcp  *server.MCPServer
	repo *fleet.Repository
}

// New creates a new MCP server with all fleet tools registered.
func New(repo *fleet.Repository) *Server {
	s := &Server{repo: repo}

	s.mcp = server.NewMCPServer(
		"Vehicle Rental Manager",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_vehicles",
		mcp.WithDescription("Search the fleet. Filters combine with AND; with no filters the result is empty."),
		mcp.WithString("query", mcp.Description("Case-insensitive substring matched against make, model, colour, registration, category and branch")),
		mcp.WithString("branch", mcp.Description("Exact branch name")),
		mcp.WithString("status", mcp.Description("Vehicle status (AVAILABLE, RENTED, DAMAGED, SERVICEREQ)")),
		mcp.WithString("category", mcp.Description("Exact category name")),
	), s.searchVehicles)

	s.mcp.AddTool(mcp.NewTool("get_vehicle",
		mcp.WithDescription("Fetch one vehicle by its registration mark."),
		mcp.WithString("reg", mcp.Required(), mcp.Description("Vehicle registration mark (VRM)")),
	), s.getVehicle)

	s.mcp.AddTool(mcp.NewTool("fleet_summary",
		mcp.WithDescription("Fleet-wide analytics: totals, utilization, average day rate, composition, per-branch performance."),
	), s.fleetSummary)

	s.mcp.AddTool(mcp.NewTool("branch_summary",
		mcp.WithDescription("Analytics for one branch."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Branch name")),
	), s.branchSummary)

	s.mcp.AddTool(mcp.NewTool("rent_vehicle",
		mcp.WithDescription("Mark a vehicle as rented. The status write is unconditional."),
		mcp.WithString("reg", mcp.Required(), mcp.Description("Vehicle registration mark (VRM)")),
	), s.rentVehicle)

	s.mcp.AddTool(mcp.NewTool("return_vehicle",
		mcp.WithDescription("Mark a vehicle as available again."),
		mcp.WithString("reg", mcp.Required(), mcp.Description("Vehicle registration mark (VRM)")),
	), s.returnVehicle)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func asJSON(v any) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchVehicles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := fleet.VehicleFilter{
		Query:    req.GetString("query", ""),
		Branch:   req.GetString("branch", ""),
		Status:   req.GetString("status", ""),
		Category: req.GetString("category", ""),
	}
	return asJSON(fleet.SearchVehicles(s.repo.Vehicles(), f))
}

func (s *Server) getVehicle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vrm, err := req.RequireString("reg")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.repo.VehicleByVRM(vrm)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", vrm)), nil
	}
	return asJSON(v)
}

func (s *Server) fleetSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return asJSON(analytics.Fleet(s.repo.Vehicles()))
}

func (s *Server) branchSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := analytics.Branch(s.repo.Vehicles(), name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no vehicles in branch: %s", name)), nil
	}
	return asJSON(rep)
}

func (s *Server) rentVehicle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vrm, err := req.RequireString("reg")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.repo.Rent(vrm)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return asJSON(v)
}

func (s *Server) returnVehicle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vrm, err := req.RequireString("reg")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.repo.Return(vrm)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return asJSON(v)
}
