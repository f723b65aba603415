// Package main provides the status command showing tracked TDD servers.
package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vizzly-testing/monitor/internal/engine"
	"github.com/vizzly-testing/monitor/internal/registry"
	"github.com/vizzly-testing/monitor/internal/status"
	"github.com/vizzly-testing/monitor/internal/ui"
)

var statusCheck bool

// statusCmd shows every tracked server in one shot.
var statusCmd = &cobra.Command{
	Use:   "status [server]",
	Short: "Show tracked vizzly TDD servers and their test results",
	Long: `Show every vizzly TDD server the monitor knows about.

Reads the shared ~/.vizzly registry, probes each recorded process, and
prints the servers that are actually alive with their latest test
results. With a server argument (id, port, project name, or directory)
it prints the full detail for that one server instead.

EXAMPLES:
  vizzly-monitor status               # All servers
  vizzly-monitor status my-app        # One server by project name
  vizzly-monitor status 3001          # One server by port
  vizzly-monitor status --check       # Exit 1 unless everything passes
  vizzly-monitor status --json        # Machine-readable output`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "Exit non-zero unless every server is running with passing tests")
}

// runStatus takes one engine pass and prints the result.
func runStatus(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Root().PersistentFlags().GetBool("json")

	sess := openSession(cmd.Context())
	defer sess.Close()

	if !jsonOutput {
		ui.StartSpinner("Reading server registry...")
	}
	snap, err := sess.firstSnapshot(cmd.Context())
	if !jsonOutput {
		ui.StopSpinner()
	}
	if err != nil {
		ui.PrintError("Failed to read server state: %v", err)
		return err
	}

	now := time.Now()

	if len(args) == 1 {
		return statusDetail(sess, snap, args[0], now, jsonOutput)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(payloadFor(snap, now), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printStatusTable(snap, now)
	}

	if statusCheck && !snap.AllHealthy {
		return fmt.Errorf("health check failed: %s", checkSummary(snap))
	}
	return nil
}

// statusPayload mirrors the /api/status response: the snapshot plus the
// derived display state per server.
type statusPayload struct {
	engine.Snapshot
	States map[string]status.ServerState `json:"states"`
}

func payloadFor(snap engine.Snapshot, now time.Time) statusPayload {
	states := make(map[string]status.ServerState, len(snap.Servers))
	for _, srv := range snap.Servers {
		states[srv.ID] = status.Classify(statsFor(snap, srv.ID), now)
	}
	return statusPayload{Snapshot: snap, States: states}
}

// statsFor returns a server's stats as the pointer Classify wants, nil
// when no results were observed yet.
func statsFor(snap engine.Snapshot, serverID string) *registry.ServerStats {
	if st, ok := snap.Stats[serverID]; ok {
		return &st
	}
	return nil
}

// printStatusTable renders the all-servers table.
func printStatusTable(snap engine.Snapshot, now time.Time) {
	if len(snap.Servers) == 0 {
		ui.PrintInfo("No vizzly TDD servers running")
		ui.PrintDim("Start one with: vizzly-monitor start [dir]")
		return
	}

	table := ui.NewTable("", "NAME", "PORT", "PID", "UPTIME", "TESTS", "DASHBOARD")
	table.SetMinWidth(1, 14)
	table.SetMaxWidth(5, 28)
	for _, srv := range snap.Servers {
		stats := statsFor(snap, srv.ID)
		table.AddRow(
			status.Icon(status.Classify(stats, now)),
			srv.Name,
			strconv.Itoa(srv.Port),
			strconv.Itoa(srv.PID),
			ui.FormatUptime(srv.Uptime(now)),
			ui.FormatStats(stats),
			srv.DashboardAddress(),
		)
	}
	table.Render()

	ui.Println()
	switch {
	case snap.AllHealthy:
		ui.PrintSuccess("%d server(s), all tests passing", len(snap.Servers))
	case snap.AnyFailures:
		ui.PrintError("%d server(s), failing tests", len(snap.Servers))
	default:
		ui.PrintInfo("%d server(s)", len(snap.Servers))
	}
}

// statusDetail prints the single-server view.
func statusDetail(sess *session, snap engine.Snapshot, selector string, now time.Time, jsonOutput bool) error {
	srv, err := resolveServer(snap, selector)
	if err != nil {
		if !jsonOutput {
			ui.PrintError("%v", err)
		}
		return err
	}

	stats := statsFor(snap, srv.ID)
	actErrs := sess.engine.ActionErrors(srv.Directory)

	if jsonOutput {
		payload := map[string]interface{}{
			"server": srv,
			"state":  status.Classify(stats, now),
		}
		if stats != nil {
			payload["stats"] = *stats
		}
		if len(actErrs) > 0 {
			payload["actionErrors"] = actErrs
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	ui.PrintServerDetail(srv, stats, now)

	if len(actErrs) > 0 {
		ui.Println()
		ui.PrintWarning("Recent failed actions:")
		recent := actErrs
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		for _, ae := range recent {
			ui.PrintDim("  %s  %s: %s", ae.At.Format("15:04:05"), ae.Command, ae.Detail)
		}
	}

	if entries := snap.Logs[srv.ID]; len(entries) > 0 {
		ui.Println()
		ui.PrintDim("Recent log lines:")
		for _, entry := range entries[max(len(entries)-5, 0):] {
			fmt.Println("  " + ui.RenderLogLine(entry))
		}
		ui.PrintDim("Full window: vizzly-monitor logs %s", selector)
	}
	return nil
}

// checkSummary describes why --check failed.
func checkSummary(snap engine.Snapshot) string {
	if len(snap.Servers) == 0 {
		return "no servers running"
	}
	unhealthy := 0
	for _, srv := range snap.Servers {
		stats, ok := snap.Stats[srv.ID]
		if !ok || !stats.Healthy() {
			unhealthy++
		}
	}
	return fmt.Sprintf("%d of %d server(s) not passing", unhealthy, len(snap.Servers))
}
