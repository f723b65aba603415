// Package main provides the MCP command for the monitor.
package main

import (
	"github.com/spf13/cobra"

	"github.com/vizzly-testing/monitor/internal/mcp"
	"github.com/vizzly-testing/monitor/internal/ui"
)

// mcpCmd is the parent command for MCP operations.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long: `MCP (Model Context Protocol) server commands.

The MCP server lets AI agents observe and control the local vizzly TDD
servers through the Model Context Protocol.

Commands:
  serve  - Start the MCP server over stdio`,
}

// mcpServeCmd starts the MCP server.
var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server over stdio",
	Long: `Start the monitor's MCP server over stdio.

This command starts an MCP server that communicates via JSON-RPC over
stdin/stdout. It's designed to be launched by AI hosts like Cursor or
Claude Desktop.

The server exposes the following tools:
  - list_servers: Tracked TDD servers with health and test stats
  - server_stats: Latest test results for one server
  - server_logs: Recent log lines from one server
  - start_server / stop_server: Control servers through the vizzly CLI
  - refresh: Force an immediate registry re-read
  - get_schema: Full CLI and data-file reference

Example Cursor configuration:
  {
    "mcpServers": {
      "vizzly-monitor": {
        "command": "vizzly-monitor",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
}

// runMCPServe starts the engine and serves MCP over stdio until the host
// disconnects.
func runMCPServe(cmd *cobra.Command, args []string) error {
	// Stdout belongs to the protocol; keep human chrome off it.
	ui.SetQuietMode(true)
	defer ui.SetQuietMode(false)

	sess := openSession(cmd.Context())
	defer sess.Close()

	server := mcp.NewServer(sess.engine, version)
	server.SetRootCmd(cmd.Root())

	return server.Run(cmd.Context())
}
