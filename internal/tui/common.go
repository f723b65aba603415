// Package tui provides the Bubble Tea dashboard behind `vizzly-monitor watch`.
//
// The dashboard launches when a human runs `watch` in an interactive terminal.
// It is never activated for agents, CI/CD, or piped output -- three independent
// gates (--json, --quiet, isatty) prevent it.
package tui

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/vizzly-testing/monitor/internal/cli"
	"github.com/vizzly-testing/monitor/internal/engine"
	"github.com/vizzly-testing/monitor/internal/registry"
)

// --- TTY gate ---

// ShouldRunTUI returns true if the dashboard should be launched.
// Returns false when stdout is not a terminal, or --json/--quiet flags are set.
//
// Parameters:
//   - jsonOutput: whether --json was passed
//   - quiet: whether --quiet was passed
//
// Returns:
//   - bool: true if the dashboard should run
func ShouldRunTUI(jsonOutput, quiet bool) bool {
	if jsonOutput || quiet {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// --- Snapshot feed and control surfaces ---

// Feed streams reconciled snapshots into the dashboard. A local engine and a
// connection to a remote `serve` instance both satisfy it.
type Feed interface {
	Subscribe() (string, <-chan engine.Snapshot, func())
}

// Actions is the engine surface the dashboard drives for start/stop/refresh.
// A nil Actions puts the dashboard in view-only mode (attached to a remote
// feed).
type Actions interface {
	StartServer(ctx context.Context, dir string, port int) (cli.Result, error)
	StopServer(ctx context.Context, srv registry.TrackedServer) (cli.Result, error)
	Refresh(trigger string)
}

// --- Brand colors (mirrors internal/ui/styles.go) ---

var (
	violet  = lipgloss.Color("#7C5CFF")
	teal    = lipgloss.Color("#14B8A6")
	red     = lipgloss.Color("#EF4444")
	amber   = lipgloss.Color("#F59E0B")
	green   = lipgloss.Color("#22C55E")
	gray    = lipgloss.Color("#6B7280")
	dimGray = lipgloss.Color("#9CA3AF")
	white   = lipgloss.Color("#E5E7EB")
)

// --- Shared TUI styles ---

var (
	// titleStyle renders the VIZZLY header.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(violet)

	// versionStyle renders the version badge.
	versionStyle = lipgloss.NewStyle().
			Foreground(dimGray)

	// sectionStyle renders section headers (e.g. "SERVERS", "LOG").
	sectionStyle = lipgloss.NewStyle().
			Foreground(dimGray).
			Bold(true)

	// normalStyle renders regular list text.
	normalStyle = lipgloss.NewStyle().
			Foreground(white)

	// dimStyle renders low-priority text.
	dimStyle = lipgloss.NewStyle().
			Foreground(dimGray)

	// successStyle renders passing indicators.
	successStyle = lipgloss.NewStyle().
			Foreground(green)

	// errorStyle renders failing indicators.
	errorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	// warningStyle renders degraded indicators.
	warningStyle = lipgloss.NewStyle().
			Foreground(amber)

	// runningStyle renders live-activity indicators.
	runningStyle = lipgloss.NewStyle().
			Foreground(teal)

	// linkStyle renders dashboard URLs.
	linkStyle = lipgloss.NewStyle().
			Foreground(violet).
			Underline(true)

	// helpStyle renders the bottom key hint bar.
	helpStyle = lipgloss.NewStyle().
			Foreground(gray)

	// separatorStyle renders horizontal rules.
	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#374151"))
)

// separator returns a horizontal line of the given width.
func separator(width int) string {
	s := ""
	for i := 0; i < width; i++ {
		s += "─"
	}
	return separatorStyle.Render(s)
}

// --- Shared message types ---

// snapshotMsg carries one published snapshot from the feed.
// nextCmd must be issued by the Update handler to continue the streaming chain.
type snapshotMsg struct {
	snap    engine.Snapshot
	nextCmd tea.Cmd
}

// feedClosedMsg signals that the feed has shut down (engine stopped, or the
// remote serve instance went away).
type feedClosedMsg struct{}

// actionDoneMsg signals that a start or stop action finished.
type actionDoneMsg struct {
	verb   string
	target string
	res    cli.Result
	err    error
}

// tickMsg is sent every second so uptime and age columns stay current
// between snapshots.
type tickMsg struct{}

// --- Snapshot streaming bridge ---

// waitSnapshotCmd reads the next snapshot from the subscription channel. It
// yields a snapshotMsg that re-issues itself, so the dashboard receives a
// continuous stream until the feed closes the channel.
func waitSnapshotCmd(ch <-chan engine.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return snapshotMsg{snap: snap, nextCmd: waitSnapshotCmd(ch)}
	}
}

// --- Shared spinner factory ---

// newSpinner creates a consistently styled braille spinner.
func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(teal)
	return s
}

// --- View enum ---

// view represents the current dashboard screen.
type view int

const (
	viewServers view = iota // server table landing screen
	viewLogs                // per-server log pane
)

// --- Key bindings ---

// serverKeys holds the key bindings for the server table screen.
type serverKeys struct {
	Up      key.Binding
	Down    key.Binding
	Logs    key.Binding
	Start   key.Binding
	Stop    key.Binding
	Copy    key.Binding
	Open    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

var defaultServerKeys = serverKeys{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "select")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("", "")),
	Logs:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "logs")),
	Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start here")),
	Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
	Copy:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy url")),
	Open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// logKeys holds the key bindings for the log pane.
type logKeys struct {
	Back   key.Binding
	Follow key.Binding
	Copy   key.Binding
	Open   key.Binding
	Quit   key.Binding
}

var defaultLogKeys = logKeys{
	Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Follow: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow")),
	Copy:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy url")),
	Open:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// helpBar renders a bottom hint bar from key binding help metadata.
func helpBar(bindings ...key.Binding) string {
	out := ""
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		if out != "" {
			out += "  "
		}
		out += lipgloss.NewStyle().Foreground(violet).Bold(true).Render(h.Key) +
			" " + helpStyle.Render(h.Desc)
	}
	return out
}

// --- Tea program runner ---

// RunDashboard launches the watch dashboard. This is the main entry point
// called from cmd/vizzly-monitor/watch.go.
//
// Parameters:
//   - feed: snapshot subscription source (local engine or remote attach)
//   - actions: engine action surface; nil for a view-only attached session
//   - version: the CLI version string for display
//
// Returns:
//   - error: any error from the Bubble Tea runtime
func RunDashboard(feed Feed, actions Actions, version string) error {
	p := tea.NewProgram(
		newDashboardModel(feed, actions, version),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
