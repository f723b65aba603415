// Package main provides tests for the shared command helpers.
package main

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/vizzly-testing/monitor/internal/cli"
	"github.com/vizzly-testing/monitor/internal/engine"
	"github.com/vizzly-testing/monitor/internal/registry"
	"github.com/vizzly-testing/monitor/internal/ui"
)

// testSnapshot fabricates a two-server snapshot for selector tests.
func testSnapshot() engine.Snapshot {
	started := time.Now().Add(-time.Hour)
	return engine.Snapshot{
		Servers: []registry.TrackedServer{
			{
				ID:        "srv-1",
				Name:      "storefront",
				Port:      3001,
				PID:       4242,
				Directory: "/home/dev/storefront",
				StartedAt: started,
			},
			{
				ID:        "srv-2",
				Name:      "checkout",
				Port:      3002,
				PID:       4243,
				Directory: "/home/dev/checkout/",
				StartedAt: started,
			},
		},
		Stats: map[string]registry.ServerStats{
			"srv-1": {Total: 10, Passed: 10},
		},
	}
}

// TestResolveServerSelectors verifies every selector form finds its server.
func TestResolveServerSelectors(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		name     string
		selector string
		wantID   string
	}{
		{name: "by id", selector: "srv-1", wantID: "srv-1"},
		{name: "by port", selector: "3002", wantID: "srv-2"},
		{name: "by project name", selector: "storefront", wantID: "srv-1"},
		{name: "by project name case-insensitive", selector: "CHECKOUT", wantID: "srv-2"},
		{name: "by directory", selector: "/home/dev/storefront", wantID: "srv-1"},
		{name: "by directory trailing slash", selector: "/home/dev/checkout", wantID: "srv-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, err := resolveServer(snap, tt.selector)
			if err != nil {
				t.Fatalf("resolveServer(%q) unexpected error: %v", tt.selector, err)
			}
			if srv.ID != tt.wantID {
				t.Errorf("resolveServer(%q) = %q, want %q", tt.selector, srv.ID, tt.wantID)
			}
		})
	}
}

// TestResolveServerUnknown verifies the error mentions the status command
// when servers exist but none match.
func TestResolveServerUnknown(t *testing.T) {
	_, err := resolveServer(testSnapshot(), "nope")
	if err == nil {
		t.Fatal("expected error for unknown selector, got nil")
	}
	if !strings.Contains(err.Error(), "vizzly-monitor status") {
		t.Errorf("error should point at the status command, got %q", err.Error())
	}
}

// TestResolveServerEmptyRegistry verifies the no-servers case gets its own message.
func TestResolveServerEmptyRegistry(t *testing.T) {
	_, err := resolveServer(engine.Snapshot{}, "storefront")
	if err == nil {
		t.Fatal("expected error for empty registry, got nil")
	}
	if !strings.Contains(err.Error(), "no servers are running") {
		t.Errorf("error should say no servers are running, got %q", err.Error())
	}
}

// newTestRoot builds a minimal root command carrying the global json flag,
// with the command under test attached so cmd.Root() resolves.
func newTestRoot(jsonOutput bool) *cobra.Command {
	root := &cobra.Command{Use: "vizzly-monitor"}
	root.PersistentFlags().Bool("json", jsonOutput, "")
	child := &cobra.Command{Use: "probe"}
	root.AddCommand(child)
	return child
}

// TestReportActionOutcomes verifies the action-to-exit-status mapping.
func TestReportActionOutcomes(t *testing.T) {
	ui.SetQuietMode(true)
	defer ui.SetQuietMode(false)

	tests := []struct {
		name      string
		json      bool
		res       cli.Result
		err       error
		wantError bool
	}{
		{name: "success", res: cli.Result{Success: true}, wantError: false},
		{name: "cli reported failure", res: cli.Result{Success: false, Stderr: "port in use"}, wantError: true},
		{name: "run error", err: cli.ErrNotConfigured, wantError: true},
		{name: "json success", json: true, res: cli.Result{Success: true}, wantError: false},
		{name: "json failure", json: true, res: cli.Result{Success: false}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newTestRoot(tt.json)
			err := reportAction(cmd, "start", "storefront", tt.res, tt.err)
			if (err != nil) != tt.wantError {
				t.Errorf("reportAction() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

// TestCheckSummary verifies the --check failure descriptions.
func TestCheckSummary(t *testing.T) {
	if got := checkSummary(engine.Snapshot{}); got != "no servers running" {
		t.Errorf("checkSummary(empty) = %q, want %q", got, "no servers running")
	}

	snap := testSnapshot() // srv-2 has no stats, so it counts as not passing
	got := checkSummary(snap)
	if got != "1 of 2 server(s) not passing" {
		t.Errorf("checkSummary() = %q, want %q", got, "1 of 2 server(s) not passing")
	}
}

// TestStatsFor verifies the stats lookup returns nil for unknown servers.
func TestStatsFor(t *testing.T) {
	snap := testSnapshot()

	if stats := statsFor(snap, "srv-1"); stats == nil || stats.Total != 10 {
		t.Errorf("statsFor(srv-1) = %+v, want total 10", stats)
	}
	if stats := statsFor(snap, "srv-2"); stats != nil {
		t.Errorf("statsFor(srv-2) = %+v, want nil", stats)
	}
}
