// Package ui provides server detail rendering.
package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vizzly-testing/monitor/internal/registry"
	"github.com/vizzly-testing/monitor/internal/status"
)

// FormatUptime renders a duration as a compact human string.
//
// Parameters:
//   - d: The duration to format
//
// Returns:
//   - string: "2h 15m", "3m 20s", "45s", or "-" for zero
func FormatUptime(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatStats renders a stats summary like "12 passed, 2 failed".
//
// Parameters:
//   - stats: The server's stats, or nil when none were observed
//
// Returns:
//   - string: The plain-text summary
func FormatStats(stats *registry.ServerStats) string {
	if stats == nil || stats.Total == 0 {
		return "no results yet"
	}
	out := fmt.Sprintf("%d passed", stats.Passed)
	if stats.Failed > 0 {
		out += fmt.Sprintf(", %d failed", stats.Failed)
	}
	if stats.Errors > 0 {
		out += fmt.Sprintf(", %d errors", stats.Errors)
	}
	return out
}

// PrintServerDetail prints a boxed summary for one tracked server.
//
// Parameters:
//   - srv: The server to render
//   - stats: The server's cached stats, or nil
//   - now: Reference time for uptime and staleness
func PrintServerDetail(srv registry.TrackedServer, stats *registry.ServerStats, now time.Time) {
	if quietMode {
		return
	}

	state := status.Classify(stats, now)

	var boxStyle lipgloss.Style
	switch status.Category(state) {
	case "success":
		boxStyle = HealthyBoxStyle
	case "error":
		boxStyle = FailingBoxStyle
	default:
		boxStyle = BoxStyle
	}

	title := fmt.Sprintf("%s %s %s", StateIcon(state), BoxTitleStyle.Render(srv.Name), StateLabel(state))

	content := title + "\n"
	content += fmt.Sprintf("%s %s\n", DimStyle.Render("Dashboard:"), LinkStyle.Render(srv.DashboardAddress()))
	content += fmt.Sprintf("%s %s\n", DimStyle.Render("Directory:"), srv.Directory)
	content += fmt.Sprintf("%s %d  %s %s\n",
		DimStyle.Render("PID:"), srv.PID,
		DimStyle.Render("Uptime:"), FormatUptime(srv.Uptime(now)))
	content += fmt.Sprintf("%s %s", DimStyle.Render("Tests:"), FormatStats(stats))
	if stats != nil && stats.UpdatedAt != nil {
		content += DimStyle.Render(fmt.Sprintf(" (updated %s ago)", FormatUptime(now.Sub(*stats.UpdatedAt))))
	}

	fmt.Println(boxStyle.Render(content))
}

// PrintActionResult prints the outcome of a start or stop invocation.
//
// Parameters:
//   - verb: "start" or "stop"
//   - target: The directory or server the action ran against
//   - ok: Whether the CLI reported success
//   - detail: The CLI's output detail, shown on failure
func PrintActionResult(verb, target string, ok bool, detail string) {
	if ok {
		PrintSuccess("%s %s", verbPast(verb), target)
		return
	}
	PrintError("failed to %s %s", verb, target)
	if detail != "" {
		PrintDim("  %s", detail)
	}
}

func verbPast(verb string) string {
	switch verb {
	case "start":
		return "started"
	case "stop":
		return "stopped"
	default:
		return verb
	}
}
