// Package status classifies tracked servers into display states.
//
// This package centralizes the health logic so the CLI tables, the TUI, the
// MCP tools, and the snapshot stream all agree on what "failing" means. It
// works purely on cached stats; it never touches the filesystem.
package status

import (
	"time"

	"github.com/vizzly-testing/monitor/internal/registry"
)

// ServerState summarizes one tracked server's health for display.
type ServerState string

const (
	// StateRunning indicates the server is live and its last test run had
	// no failures and no errors. A server with zero tests run is running.
	StateRunning ServerState = "running"

	// StateDegraded indicates the last run recorded errors but no test
	// failures (infrastructure trouble rather than red tests).
	StateDegraded ServerState = "degraded"

	// StateFailing indicates at least one test failed in the last run.
	StateFailing ServerState = "failing"

	// StateStale indicates the server is live but its results are older
	// than StaleAfter, so they may not reflect the current code.
	StateStale ServerState = "stale"

	// StateWaiting indicates no results have been observed yet.
	StateWaiting ServerState = "waiting"
)

// StaleAfter is how old a result set may be before an otherwise healthy
// server is shown as stale.
const StaleAfter = 15 * time.Minute

// Classify maps cached stats to a display state.
//
// Failures outrank errors, and both outrank staleness: a failing server
// with old results is still failing.
//
// Parameters:
//   - stats: The server's cached stats, or nil if none were observed yet
//   - now: The reference time for the staleness check
//
// Returns:
//   - ServerState: The display state for the server
func Classify(stats *registry.ServerStats, now time.Time) ServerState {
	if stats == nil {
		return StateWaiting
	}
	if stats.HasFailures() {
		return StateFailing
	}
	if stats.Errors > 0 {
		return StateDegraded
	}
	if stats.UpdatedAt != nil && now.Sub(*stats.UpdatedAt) > StaleAfter {
		return StateStale
	}
	return StateRunning
}

// Icon returns the single-character icon for a state.
//
// Icons:
//   - running: ✓ (checkmark)
//   - degraded: ⚠ (warning sign)
//   - failing: ✗ (x mark)
//   - stale: ⏱ (stopwatch)
//   - waiting/unknown: ● (bullet)
func Icon(state ServerState) string {
	switch state {
	case StateRunning:
		return "✓"
	case StateDegraded:
		return "⚠"
	case StateFailing:
		return "✗"
	case StateStale:
		return "⏱"
	default:
		return "●"
	}
}

// Category returns the styling category for a state.
//
// Categories:
//   - "success": running
//   - "warning": degraded, stale
//   - "error": failing
//   - "dim": waiting, unknown
func Category(state ServerState) string {
	switch state {
	case StateRunning:
		return "success"
	case StateDegraded, StateStale:
		return "warning"
	case StateFailing:
		return "error"
	default:
		return "dim"
	}
}
