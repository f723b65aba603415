// Package mcp provides the MCP (Model Context Protocol) server implementation.
//
// This package exposes the monitor's snapshot and server-control operations
// as tools that AI agents call over the MCP protocol. Every tool is a thin
// adapter over one engine operation; no tool touches the data files
// directly.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/vizzly-testing/monitor/internal/cli"
	"github.com/vizzly-testing/monitor/internal/engine"
	"github.com/vizzly-testing/monitor/internal/registry"
)

// Monitor is the slice of the engine the MCP tools need.
type Monitor interface {
	Snapshot() engine.Snapshot
	Refresh(trigger string)
	StartServer(ctx context.Context, dir string, port int) (cli.Result, error)
	StopServer(ctx context.Context, srv registry.TrackedServer) (cli.Result, error)
	ActionErrors(dir string) []engine.ActionError
}

// Server wraps the MCP server with monitor-specific functionality.
type Server struct {
	mcpServer *mcp.Server
	mon       Monitor
	version   string
	rootCmd   *cobra.Command
}

// NewServer creates a new monitor MCP server.
//
// Parameters:
//   - mon: The engine the tools operate on
//   - version: The monitor version string
//
// Returns:
//   - *Server: A new server instance
func NewServer(mon Monitor, version string) *Server {
	s := &Server{
		mon:     mon,
		version: version,
	}

	s.mcpServer = mcp.NewServer(
		&mcp.Implementation{
			Name:    "vizzly-monitor",
			Version: version,
		},
		nil,
	)

	s.registerTools()

	return s
}

// SetRootCmd sets the root Cobra command for schema generation.
//
// Parameters:
//   - cmd: The root Cobra command
func (s *Server) SetRootCmd(cmd *cobra.Command) {
	s.rootCmd = cmd
}

// Run starts the MCP server over stdio.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - error: Any error that occurred during execution
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// registerTools registers all monitor tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_servers",
		Description: "List every tracked vizzly TDD server with its health state, test stats, and dashboard address.",
	}, s.handleListServers)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "server_stats",
		Description: "Get the latest test results for one server. The server is selected by id, port, project name, or directory.",
	}, s.handleServerStats)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "server_logs",
		Description: "Get recent log lines from one server, newest last. Optionally filter by log level.",
	}, s.handleServerLogs)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "start_server",
		Description: "Start a vizzly TDD server in a project directory. Returns the CLI's verdict; the server appears in list_servers once the registry reflects it.",
	}, s.handleStartServer)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "stop_server",
		Description: "Stop a tracked vizzly TDD server selected by id, port, project name, or directory.",
	}, s.handleStopServer)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "refresh",
		Description: "Ask the monitor to re-read the registry and report files now instead of waiting for a file event. The pass runs asynchronously.",
	}, s.handleRefresh)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_schema",
		Description: "Get the complete CLI command schema and data-file schema for LLM reference.",
	}, s.handleGetSchema)
}
