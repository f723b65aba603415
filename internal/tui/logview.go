// Package tui provides the per-server log pane.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vizzly-testing/monitor/internal/engine"
	"github.com/vizzly-testing/monitor/internal/logtail"
	"github.com/vizzly-testing/monitor/internal/registry"
	"github.com/vizzly-testing/monitor/internal/status"
	"github.com/vizzly-testing/monitor/internal/ui"
)

// logModel scrolls one server's recent log window. New snapshots refresh the
// content; the view stays pinned to the tail until the user scrolls up.
type logModel struct {
	server registry.TrackedServer
	state  status.ServerState

	vp     viewport.Model
	follow bool
	lines  int

	// gone is set when the server drops out of the snapshot while the pane
	// is open; the last known log stays visible.
	gone bool

	width  int
	height int
}

// newLogModel creates a log pane for the given server, seeded from the
// current snapshot.
func newLogModel(srv registry.TrackedServer, snap engine.Snapshot, width, height int) logModel {
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	vp := viewport.New(width-4, max(height-8, 4))
	lm := logModel{
		server: srv,
		vp:     vp,
		follow: true,
		width:  width,
		height: height,
	}
	lm.setEntries(snap, time.Now())
	return lm
}

// resize adjusts the viewport to new terminal dimensions.
func (l *logModel) resize(width, height int) {
	l.width = width
	l.height = height
	l.vp.Width = width - 4
	l.vp.Height = max(height-8, 4)
	if l.follow {
		l.vp.GotoBottom()
	}
}

// setEntries refreshes the pane from a new snapshot.
func (l *logModel) setEntries(snap engine.Snapshot, now time.Time) {
	if srv, ok := snap.FindServer(l.server.ID); ok {
		l.gone = false
		l.server = srv
	} else {
		l.gone = true
	}

	var stats *registry.ServerStats
	if st, ok := snap.Stats[l.server.ID]; ok {
		stats = &st
	}
	l.state = status.Classify(stats, now)

	entries := snap.Logs[l.server.ID]
	l.lines = len(entries)
	l.vp.SetContent(renderEntries(entries))
	if l.follow {
		l.vp.GotoBottom()
	}
}

// pinToTail re-enables auto-scroll and jumps to the newest line.
func (l *logModel) pinToTail() {
	l.follow = true
	l.vp.GotoBottom()
}

// update forwards scroll keys to the viewport. Scrolling away from the tail
// unpins the view until the user presses f.
func (l *logModel) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.vp, cmd = l.vp.Update(msg)
	l.follow = l.vp.AtBottom()
	return cmd
}

// view renders the header, the viewport, and the tail status line.
func (l *logModel) view() string {
	var b strings.Builder
	sepW := min(l.width, 72)
	if sepW <= 0 {
		sepW = 72
	}

	b.WriteString(titleStyle.Render(" "+l.server.Name) +
		"  " + ui.StateIcon(l.state) + " " + dimStyle.Render(string(l.state)) +
		"  " + linkStyle.Render(l.server.DashboardAddress()) + "\n")
	b.WriteString(separator(sepW) + "\n")

	if l.gone {
		b.WriteString("  " + warningStyle.Render("server is no longer tracked; showing last known log") + "\n")
	}

	b.WriteString(l.vp.View() + "\n")

	label := "lines"
	if l.lines == 1 {
		label = "line"
	}
	tail := dimStyle.Render(fmt.Sprintf("%d %s", l.lines, label))
	if !l.follow {
		tail += "  " + warningStyle.Render("scrolled (f to follow)")
	}
	b.WriteString("  " + tail + "\n")
	return b.String()
}

// renderEntries formats the log window for the viewport.
func renderEntries(entries []logtail.Entry) string {
	if len(entries) == 0 {
		return dimStyle.Render("  no log lines yet")
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(ui.RenderLogLine(e) + "\n")
	}
	return b.String()
}
