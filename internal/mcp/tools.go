package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vizzly-testing/monitor/internal/cli"
	"github.com/vizzly-testing/monitor/internal/registry"
	"github.com/vizzly-testing/monitor/internal/schema"
	"github.com/vizzly-testing/monitor/internal/status"
)

// StatsInfo carries one server's test results.
type StatsInfo struct {
	Total     int    `json:"total"`
	Passed    int    `json:"passed"`
	Failed    int    `json:"failed"`
	Errors    int    `json:"errors"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ServerSummary describes one tracked server.
type ServerSummary struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Port          int        `json:"port"`
	PID           int        `json:"pid"`
	Directory     string     `json:"directory"`
	Dashboard     string     `json:"dashboard"`
	State         string     `json:"state"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	Stats         *StatsInfo `json:"stats,omitempty"`
}

func statsInfo(stats *registry.ServerStats) *StatsInfo {
	if stats == nil {
		return nil
	}
	info := &StatsInfo{
		Total:  stats.Total,
		Passed: stats.Passed,
		Failed: stats.Failed,
		Errors: stats.Errors,
	}
	if stats.UpdatedAt != nil {
		info.UpdatedAt = stats.UpdatedAt.Format(time.RFC3339)
	}
	return info
}

func (s *Server) summarize(srv registry.TrackedServer, stats *registry.ServerStats, now time.Time) ServerSummary {
	return ServerSummary{
		ID:            srv.ID,
		Name:          srv.Name,
		Port:          srv.Port,
		PID:           srv.PID,
		Directory:     srv.Directory,
		Dashboard:     srv.DashboardAddress(),
		State:         string(status.Classify(stats, now)),
		UptimeSeconds: int64(srv.Uptime(now).Seconds()),
		Stats:         statsInfo(stats),
	}
}

// ListServersInput defines the input parameters for the list_servers tool.
type ListServersInput struct{}

// ListServersOutput defines the output for the list_servers tool.
type ListServersOutput struct {
	Servers     []ServerSummary `json:"servers"`
	Count       int             `json:"count"`
	AnyFailures bool            `json:"any_failures"`
	AllHealthy  bool            `json:"all_healthy"`
}

// handleListServers handles the list_servers tool call.
func (s *Server) handleListServers(ctx context.Context, req *mcp.CallToolRequest, input ListServersInput) (*mcp.CallToolResult, ListServersOutput, error) {
	snap := s.mon.Snapshot()
	now := time.Now()

	servers := make([]ServerSummary, 0, len(snap.Servers))
	for _, srv := range snap.Servers {
		var stats *registry.ServerStats
		if st, ok := snap.Stats[srv.ID]; ok {
			stats = &st
		}
		servers = append(servers, s.summarize(srv, stats, now))
	}

	return nil, ListServersOutput{
		Servers:     servers,
		Count:       len(servers),
		AnyFailures: snap.AnyFailures,
		AllHealthy:  snap.AllHealthy,
	}, nil
}

// ServerStatsInput defines the input parameters for the server_stats tool.
type ServerStatsInput struct {
	Server string `json:"server" jsonschema:"description=Server selector: id, port, project name, or directory"`
}

// ServerStatsOutput defines the output for the server_stats tool.
type ServerStatsOutput struct {
	Server         *ServerSummary `json:"server,omitempty"`
	RecentFailures []string       `json:"recent_failures,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// handleServerStats handles the server_stats tool call.
func (s *Server) handleServerStats(ctx context.Context, req *mcp.CallToolRequest, input ServerStatsInput) (*mcp.CallToolResult, ServerStatsOutput, error) {
	if input.Server == "" {
		return nil, ServerStatsOutput{Error: "server is required"}, nil
	}

	snap := s.mon.Snapshot()
	srv, ok := snap.FindServer(input.Server)
	if !ok {
		return nil, ServerStatsOutput{Error: fmt.Sprintf("no tracked server matches %q", input.Server)}, nil
	}

	var stats *registry.ServerStats
	if st, ok := snap.Stats[srv.ID]; ok {
		stats = &st
	}
	summary := s.summarize(srv, stats, time.Now())

	var failures []string
	for _, ae := range s.mon.ActionErrors(srv.Directory) {
		failures = append(failures, fmt.Sprintf("%s: %s", ae.Command, ae.Detail))
	}

	return nil, ServerStatsOutput{Server: &summary, RecentFailures: failures}, nil
}

// LogLine is one log entry in tool output.
type LogLine struct {
	Timestamp string `json:"timestamp,omitempty"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
}

// ServerLogsInput defines the input parameters for the server_logs tool.
type ServerLogsInput struct {
	Server string `json:"server" jsonschema:"description=Server selector: id, port, project name, or directory"`
	Lines  int    `json:"lines,omitempty" jsonschema:"description=Maximum lines to return, newest kept (default 50)"`
	Level  string `json:"level,omitempty" jsonschema:"description=Only return lines at this level (debug, info, warn, error, success)"`
}

// ServerLogsOutput defines the output for the server_logs tool.
type ServerLogsOutput struct {
	Server  string    `json:"server,omitempty"`
	Entries []LogLine `json:"entries"`
	Count   int       `json:"count"`
	Error   string    `json:"error,omitempty"`
}

// handleServerLogs handles the server_logs tool call.
func (s *Server) handleServerLogs(ctx context.Context, req *mcp.CallToolRequest, input ServerLogsInput) (*mcp.CallToolResult, ServerLogsOutput, error) {
	if input.Server == "" {
		return nil, ServerLogsOutput{Entries: []LogLine{}, Error: "server is required"}, nil
	}

	limit := input.Lines
	if limit <= 0 {
		limit = 50
	}

	snap := s.mon.Snapshot()
	srv, ok := snap.FindServer(input.Server)
	if !ok {
		return nil, ServerLogsOutput{
			Entries: []LogLine{},
			Error:   fmt.Sprintf("no tracked server matches %q", input.Server),
		}, nil
	}

	var entries []LogLine
	for _, e := range snap.Logs[srv.ID] {
		if input.Level != "" && string(e.Level) != input.Level {
			continue
		}
		line := LogLine{
			Level:   string(e.Level),
			Message: e.Message,
			Details: e.Details,
		}
		if e.Timestamp != nil {
			line.Timestamp = e.Timestamp.Format(time.RFC3339)
		}
		entries = append(entries, line)
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	if entries == nil {
		entries = []LogLine{}
	}

	return nil, ServerLogsOutput{
		Server:  srv.ID,
		Entries: entries,
		Count:   len(entries),
	}, nil
}

// StartServerInput defines the input parameters for the start_server tool.
type StartServerInput struct {
	Directory string `json:"directory" jsonschema:"description=Project directory to start the TDD server in"`
	Port      int    `json:"port,omitempty" jsonschema:"description=Port to bind; 0 lets the vizzly CLI choose"`
}

// StartServerOutput defines the output for the start_server tool.
type StartServerOutput struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleStartServer handles the start_server tool call.
func (s *Server) handleStartServer(ctx context.Context, req *mcp.CallToolRequest, input StartServerInput) (*mcp.CallToolResult, StartServerOutput, error) {
	if input.Directory == "" {
		return nil, StartServerOutput{Error: "directory is required"}, nil
	}
	if input.Port < 0 {
		return nil, StartServerOutput{Error: "port must not be negative"}, nil
	}

	res, err := s.mon.StartServer(ctx, input.Directory, input.Port)
	if err != nil {
		return nil, StartServerOutput{Error: cli.DisplayDetail(err.Error())}, nil
	}

	return nil, StartServerOutput{
		Success: res.Success,
		Detail:  res.Detail(),
	}, nil
}

// StopServerInput defines the input parameters for the stop_server tool.
type StopServerInput struct {
	Server string `json:"server" jsonschema:"description=Server selector: id, port, project name, or directory"`
}

// StopServerOutput defines the output for the stop_server tool.
type StopServerOutput struct {
	Success bool   `json:"success"`
	Server  string `json:"server,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleStopServer handles the stop_server tool call.
func (s *Server) handleStopServer(ctx context.Context, req *mcp.CallToolRequest, input StopServerInput) (*mcp.CallToolResult, StopServerOutput, error) {
	if input.Server == "" {
		return nil, StopServerOutput{Error: "server is required"}, nil
	}

	snap := s.mon.Snapshot()
	srv, ok := snap.FindServer(input.Server)
	if !ok {
		return nil, StopServerOutput{Error: fmt.Sprintf("no tracked server matches %q", input.Server)}, nil
	}

	res, err := s.mon.StopServer(ctx, srv)
	if err != nil {
		return nil, StopServerOutput{Server: srv.ID, Error: cli.DisplayDetail(err.Error())}, nil
	}

	return nil, StopServerOutput{
		Success: res.Success,
		Server:  srv.ID,
		Detail:  res.Detail(),
	}, nil
}

// RefreshInput defines the input parameters for the refresh tool.
type RefreshInput struct{}

// RefreshOutput defines the output for the refresh tool.
type RefreshOutput struct {
	Requested bool   `json:"requested"`
	Seq       uint64 `json:"seq"`
}

// handleRefresh handles the refresh tool call.
func (s *Server) handleRefresh(ctx context.Context, req *mcp.CallToolRequest, input RefreshInput) (*mcp.CallToolResult, RefreshOutput, error) {
	s.mon.Refresh("mcp")
	return nil, RefreshOutput{
		Requested: true,
		Seq:       s.mon.Snapshot().Seq,
	}, nil
}

// GetSchemaInput defines input for the get_schema tool.
type GetSchemaInput struct {
	Format string `json:"format,omitempty" jsonschema:"description=Output format: json (default), markdown, or llm"`
}

// GetSchemaOutput defines output for the get_schema tool.
type GetSchemaOutput struct {
	CLISchema      interface{} `json:"cli_schema,omitempty"`
	DataFileSchema string      `json:"data_file_schema,omitempty"`
	Markdown       string      `json:"markdown,omitempty"`
	LLMFormat      string      `json:"llm_format,omitempty"`
}

// handleGetSchema handles the get_schema tool call.
func (s *Server) handleGetSchema(ctx context.Context, req *mcp.CallToolRequest, input GetSchemaInput) (*mcp.CallToolResult, GetSchemaOutput, error) {
	format := input.Format
	if format == "" {
		format = "json"
	}

	var cliSchema *schema.CLISchema
	if s.rootCmd != nil {
		cliSchema = schema.GetCLISchema(s.rootCmd, s.version)
	}

	switch format {
	case "markdown":
		var md string
		if cliSchema != nil {
			md = schema.ToMarkdown(cliSchema)
		}
		md += "\n---\n\n" + schema.DataFileSchema
		return nil, GetSchemaOutput{Markdown: md}, nil
	case "llm":
		var llmOutput string
		if cliSchema != nil {
			llmOutput = schema.ToLLMFormat(cliSchema, schema.DataFileSchema)
		} else {
			llmOutput = schema.DataFileSchema
		}
		return nil, GetSchemaOutput{LLMFormat: llmOutput}, nil
	default:
		return nil, GetSchemaOutput{
			CLISchema:      cliSchema,
			DataFileSchema: schema.DataFileSchema,
		}, nil
	}
}
