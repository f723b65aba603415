// Package tui provides the dashboard model -- the server table with quick actions.
package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vizzly-testing/monitor/internal/cli"
	"github.com/vizzly-testing/monitor/internal/engine"
	"github.com/vizzly-testing/monitor/internal/registry"
	"github.com/vizzly-testing/monitor/internal/status"
	"github.com/vizzly-testing/monitor/internal/ui"
)

// dashboardModel is the top-level Bubble Tea model for the watch dashboard.
type dashboardModel struct {
	version string

	// feed delivers published snapshots; unsub cancels the subscription.
	feed    Feed
	actions Actions
	updates <-chan engine.Snapshot
	unsub   func()

	currentView view

	// snap is the latest snapshot; haveSnap is false until the first one lands.
	snap     engine.Snapshot
	haveSnap bool

	table table.Model
	spin  spinner.Model

	// Stop confirmation
	confirmStop bool
	stopTarget  registry.TrackedServer

	// Action feedback
	busy      bool
	notice    string
	noticeErr bool

	// Log pane (sub-screen)
	logPane *logModel

	width  int
	height int
}

// newDashboardModel creates the initial dashboard model and subscribes to
// the feed.
func newDashboardModel(feed Feed, actions Actions, version string) dashboardModel {
	_, ch, cancel := feed.Subscribe()

	columns := []table.Column{
		{Title: "", Width: 2},
		{Title: "NAME", Width: 18},
		{Title: "PORT", Width: 5},
		{Title: "PID", Width: 7},
		{Title: "UPTIME", Width: 8},
		{Title: "TESTS", Width: 24},
		{Title: "UPDATED", Width: 11},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#374151")).
		BorderBottom(true).
		Bold(false).
		Foreground(dimGray)
	s.Selected = s.Selected.
		Foreground(violet).
		Bold(true)
	t.SetStyles(s)

	return dashboardModel{
		version: version,
		feed:    feed,
		actions: actions,
		updates: ch,
		unsub:   cancel,
		table:   t,
		spin:    newSpinner(),
	}
}

// --- Tea commands ---

// tickCmd sends a tick every second so uptime and age columns stay current.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// startServerCmd starts a TDD server in the given directory via the engine.
func startServerCmd(actions Actions, dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res, err := actions.StartServer(ctx, dir, 0)
		return actionDoneMsg{verb: "start", target: dir, res: res, err: err}
	}
}

// stopServerCmd stops the given tracked server via the engine.
func stopServerCmd(actions Actions, srv registry.TrackedServer) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res, err := actions.StopServer(ctx, srv)
		return actionDoneMsg{verb: "stop", target: srv.Name, res: res, err: err}
	}
}

// --- Bubble Tea interface ---

// Init starts the spinner, the clock, and the snapshot stream.
func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, tickCmd(), waitSnapshotCmd(m.updates))
}

// Update handles all incoming messages and key events.
func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(m.height-10, 4))
		if m.logPane != nil {
			m.logPane.resize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		if m.currentView == viewLogs {
			return m.handleLogKey(msg)
		}
		return m.handleServerKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tickMsg:
		if m.haveSnap {
			m.refreshRows()
		}
		return m, tickCmd()

	case snapshotMsg:
		m.snap = msg.snap
		m.haveSnap = true
		m.refreshRows()
		if m.logPane != nil {
			m.logPane.setEntries(m.snap, time.Now())
		}
		// Continue the streaming chain -- nextCmd reads the next snapshot.
		return m, msg.nextCmd

	case feedClosedMsg:
		m.unsub()
		return m, tea.Quit

	case actionDoneMsg:
		m.busy = false
		m.notice, m.noticeErr = actionNotice(msg)
		return m, nil
	}

	return m, nil
}

// handleServerKey processes key events on the server table screen.
func (m dashboardModel) handleServerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmStop {
		switch msg.String() {
		case "y", "Y":
			target := m.stopTarget
			m.confirmStop = false
			m.stopTarget = registry.TrackedServer{}
			if m.actions == nil {
				return m, nil
			}
			m.busy = true
			m.notice = ""
			return m, stopServerCmd(m.actions, target)
		case "n", "N", "esc":
			m.confirmStop = false
			m.stopTarget = registry.TrackedServer{}
			return m, nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, defaultServerKeys.Quit):
		m.unsub()
		return m, tea.Quit

	case key.Matches(msg, defaultServerKeys.Logs):
		srv, ok := m.selectedServer()
		if !ok {
			return m, nil
		}
		lp := newLogModel(srv, m.snap, m.width, m.height)
		m.logPane = &lp
		m.currentView = viewLogs
		return m, nil

	case key.Matches(msg, defaultServerKeys.Start):
		if m.actions == nil {
			m.notice, m.noticeErr = viewOnlyNotice()
			return m, nil
		}
		dir, err := os.Getwd()
		if err != nil {
			m.notice = errorStyle.Render("✗ ") + normalStyle.Render(err.Error())
			m.noticeErr = true
			return m, nil
		}
		m.busy = true
		m.notice = ""
		return m, startServerCmd(m.actions, dir)

	case key.Matches(msg, defaultServerKeys.Stop):
		srv, ok := m.selectedServer()
		if !ok {
			return m, nil
		}
		if m.actions == nil {
			m.notice, m.noticeErr = viewOnlyNotice()
			return m, nil
		}
		m.confirmStop = true
		m.stopTarget = srv
		return m, nil

	case key.Matches(msg, defaultServerKeys.Copy):
		if srv, ok := m.selectedServer(); ok {
			m.notice, m.noticeErr = copyAddress(srv)
		}
		return m, nil

	case key.Matches(msg, defaultServerKeys.Open):
		if srv, ok := m.selectedServer(); ok {
			_ = ui.OpenBrowser(srv.DashboardAddress())
			m.notice = dimStyle.Render("opened " + srv.DashboardAddress())
			m.noticeErr = false
		}
		return m, nil

	case key.Matches(msg, defaultServerKeys.Refresh):
		if m.actions == nil {
			m.notice, m.noticeErr = viewOnlyNotice()
			return m, nil
		}
		m.actions.Refresh("tui")
		m.notice = dimStyle.Render("refresh requested")
		m.noticeErr = false
		return m, nil
	}

	// Up/down and paging go to the table.
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleLogKey processes key events in the log pane.
func (m dashboardModel) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, defaultLogKeys.Quit):
		m.unsub()
		return m, tea.Quit

	case key.Matches(msg, defaultLogKeys.Back):
		m.logPane = nil
		m.currentView = viewServers
		return m, nil

	case key.Matches(msg, defaultLogKeys.Follow):
		if m.logPane != nil {
			m.logPane.pinToTail()
		}
		return m, nil

	case key.Matches(msg, defaultLogKeys.Copy):
		if m.logPane != nil {
			m.notice, m.noticeErr = copyAddress(m.logPane.server)
		}
		return m, nil

	case key.Matches(msg, defaultLogKeys.Open):
		if m.logPane != nil {
			_ = ui.OpenBrowser(m.logPane.server.DashboardAddress())
			m.notice = dimStyle.Render("opened " + m.logPane.server.DashboardAddress())
			m.noticeErr = false
		}
		return m, nil
	}

	// Everything else scrolls the viewport.
	if m.logPane != nil {
		return m, m.logPane.update(msg)
	}
	return m, nil
}

// --- Helpers ---

// selectedServer returns the server under the table cursor.
func (m dashboardModel) selectedServer() (registry.TrackedServer, bool) {
	i := m.table.Cursor()
	if !m.haveSnap || i < 0 || i >= len(m.snap.Servers) {
		return registry.TrackedServer{}, false
	}
	return m.snap.Servers[i], true
}

// refreshRows rebuilds the table rows from the current snapshot, keeping the
// cursor on the same row index.
func (m *dashboardModel) refreshRows() {
	cursor := m.table.Cursor()
	now := time.Now()

	rows := make([]table.Row, 0, len(m.snap.Servers))
	for _, srv := range m.snap.Servers {
		var stats *registry.ServerStats
		if st, ok := m.snap.Stats[srv.ID]; ok {
			stats = &st
		}
		state := status.Classify(stats, now)
		updated := "-"
		if stats != nil && stats.UpdatedAt != nil {
			updated = relativeTime(*stats.UpdatedAt)
		}
		rows = append(rows, table.Row{
			status.Icon(state),
			srv.Name,
			strconv.Itoa(srv.Port),
			strconv.Itoa(srv.PID),
			ui.FormatUptime(srv.Uptime(now)),
			ui.FormatStats(stats),
			updated,
		})
	}
	m.table.SetRows(rows)
	if cursor >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// copyAddress puts the server's dashboard URL on the system clipboard.
func copyAddress(srv registry.TrackedServer) (string, bool) {
	addr := srv.DashboardAddress()
	if err := clipboard.WriteAll(addr); err != nil {
		return errorStyle.Render("✗ ") + normalStyle.Render("copy failed: "+err.Error()), true
	}
	return dimStyle.Render("copied " + addr), false
}

// viewOnlyNotice is shown when an action key is pressed on an attached feed.
func viewOnlyNotice() (string, bool) {
	return dimStyle.Render("attached in view-only mode"), false
}

// pastTense maps an action verb to its completed form for notices.
func pastTense(verb string) string {
	switch verb {
	case "start":
		return "started"
	case "stop":
		return "stopped"
	}
	return verb
}

// actionNotice formats the outcome of a start/stop action.
func actionNotice(msg actionDoneMsg) (string, bool) {
	if msg.err != nil {
		return errorStyle.Render("✗ ") + normalStyle.Render(cli.DisplayDetail(msg.err.Error())), true
	}
	detail := cli.DisplayDetail(msg.res.Detail())
	if !msg.res.Success {
		out := errorStyle.Render("✗ ") + normalStyle.Render(msg.verb+" "+msg.target+" failed")
		if detail != "" {
			out += dimStyle.Render(" · " + detail)
		}
		return out, true
	}
	out := successStyle.Render("✓ ") + normalStyle.Render(pastTense(msg.verb)+" "+msg.target)
	if detail != "" {
		out += dimStyle.Render(" · " + detail)
	}
	return out, false
}

// relativeTime formats a timestamp as a human-readable relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", h)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	}
}

// --- View rendering ---

// View renders the current screen.
func (m dashboardModel) View() string {
	if m.currentView == viewLogs && m.logPane != nil {
		return m.renderLogScreen()
	}
	return m.renderServers()
}

// header renders the title line and rule shared by both screens.
func (m dashboardModel) header(sepW int) string {
	h := titleStyle.Render(" VIZZLY") + " " + sectionStyle.Render("MONITOR") +
		"  " + versionStyle.Render("v"+m.version)
	if m.actions == nil {
		h += "  " + dimStyle.Render("(attached)")
	}
	return h + "\n" + separator(sepW) + "\n"
}

// renderServers renders the server table screen.
func (m dashboardModel) renderServers() string {
	var b strings.Builder
	w := m.width
	if w == 0 {
		w = 80
	}
	sepW := min(w, 72)

	b.WriteString(m.header(sepW))

	if !m.haveSnap {
		b.WriteString("\n  " + m.spin.View() + " Waiting for first snapshot...\n")
		b.WriteString("\n  " + helpBar(defaultServerKeys.Quit) + "\n")
		return b.String()
	}

	b.WriteString(m.summaryLine())

	if len(m.snap.Servers) > 0 {
		b.WriteString(m.table.View() + "\n")
	}

	if n := m.noticeLine(); n != "" {
		b.WriteString(n + "\n")
	}

	bindings := []key.Binding{defaultServerKeys.Up, defaultServerKeys.Logs}
	if m.actions != nil {
		bindings = append(bindings, defaultServerKeys.Start, defaultServerKeys.Stop)
	}
	bindings = append(bindings, defaultServerKeys.Copy, defaultServerKeys.Open)
	if m.actions != nil {
		bindings = append(bindings, defaultServerKeys.Refresh)
	}
	bindings = append(bindings, defaultServerKeys.Quit)
	b.WriteString("\n  " + helpBar(bindings...) + "\n")
	return b.String()
}

// renderLogScreen renders the log pane with shared notice and help chrome.
func (m dashboardModel) renderLogScreen() string {
	var b strings.Builder
	b.WriteString(m.logPane.view())
	if n := m.noticeLine(); n != "" {
		b.WriteString(n + "\n")
	}
	b.WriteString("\n  " + helpBar(
		defaultLogKeys.Back,
		defaultLogKeys.Follow,
		defaultLogKeys.Copy,
		defaultLogKeys.Open,
		defaultLogKeys.Quit,
	) + "\n")
	return b.String()
}

// summaryLine renders the per-state server counts and snapshot age.
func (m dashboardModel) summaryLine() string {
	if len(m.snap.Servers) == 0 {
		return "\n  " + dimStyle.Render("No vizzly TDD servers running. Press s to start one here.") + "\n\n"
	}

	now := time.Now()
	counts := map[status.ServerState]int{}
	for _, srv := range m.snap.Servers {
		var stats *registry.ServerStats
		if st, ok := m.snap.Stats[srv.ID]; ok {
			stats = &st
		}
		counts[status.Classify(stats, now)]++
	}

	label := "servers"
	if len(m.snap.Servers) == 1 {
		label = "server"
	}
	parts := []string{normalStyle.Render(fmt.Sprintf("%d %s", len(m.snap.Servers), label))}
	if n := counts[status.StateRunning]; n > 0 {
		parts = append(parts, successStyle.Render(fmt.Sprintf("%d passing", n)))
	}
	if n := counts[status.StateFailing]; n > 0 {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("%d failing", n)))
	}
	if n := counts[status.StateDegraded]; n > 0 {
		parts = append(parts, warningStyle.Render(fmt.Sprintf("%d degraded", n)))
	}
	if n := counts[status.StateStale]; n > 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d stale", n)))
	}
	if n := counts[status.StateWaiting]; n > 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d waiting", n)))
	}

	return "\n  " + strings.Join(parts, dimStyle.Render(" · ")) +
		"  " + dimStyle.Render("as of "+relativeTime(m.snap.TakenAt)) + "\n"
}

// noticeLine renders the confirmation prompt, busy spinner, or last action
// outcome under the table.
func (m dashboardModel) noticeLine() string {
	if m.confirmStop {
		return "  " + warningStyle.Render(fmt.Sprintf("Stop %q? (y/n)", m.stopTarget.Name))
	}
	if m.busy {
		return "  " + m.spin.View() + dimStyle.Render(" working...")
	}
	if m.notice != "" {
		return "  " + m.notice
	}
	return ""
}
