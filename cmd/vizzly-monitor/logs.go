// Package main provides the logs command.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vizzly-testing/monitor/internal/logtail"
	"github.com/vizzly-testing/monitor/internal/ui"
)

var (
	logsLines  int
	logsFollow bool
	logsLevel  string
)

// logsCmd prints the recent log window for one server.
var logsCmd = &cobra.Command{
	Use:   "logs <server>",
	Short: "Show recent log lines from a TDD server",
	Long: `Print the recent log window for one vizzly TDD server.

The monitor keeps a bounded window of each server's log file (100 lines
by default, monitor.yaml raises it). Lines are parsed from vizzly's
JSON log format and rendered with level colors; unparseable lines pass
through as-is.

With --follow the command stays attached and prints new lines as the
server writes them.

EXAMPLES:
  vizzly-monitor logs my-app            # Recent lines
  vizzly-monitor logs 3001 -n 50        # Last 50 lines
  vizzly-monitor logs my-app --follow   # Keep streaming
  vizzly-monitor logs my-app --level error`,
	Args: cobra.ExactArgs(1),
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 0, "Number of lines to show (default: full window)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Keep streaming new lines")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Only show lines at this level (debug, info, warn, error, success)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Root().PersistentFlags().GetBool("json")

	sess := openSession(cmd.Context())
	defer sess.Close()

	snap, err := sess.firstSnapshot(cmd.Context())
	if err != nil {
		ui.PrintError("Failed to read server state: %v", err)
		return err
	}

	srv, err := resolveServer(snap, args[0])
	if err != nil {
		if !jsonOutput {
			ui.PrintError("%v", err)
		}
		return err
	}

	window := snap.Logs[srv.ID]
	visible := filterEntries(window, logsLevel, logsLines)

	// One-shot JSON keeps the array shape; --follow switches to one
	// object per line so the stream stays parseable.
	if jsonOutput && !logsFollow {
		if visible == nil {
			visible = []logtail.Entry{}
		}
		data, err := json.MarshalIndent(visible, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal log lines: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	emit := func(entry logtail.Entry) {
		if jsonOutput {
			if data, err := json.Marshal(entry); err == nil {
				fmt.Println(string(data))
			}
			return
		}
		fmt.Println(ui.RenderLogLine(entry))
	}

	if !jsonOutput {
		ui.PrintDim("%s  %s", srv.Name, srv.LogPath())
	}
	for _, entry := range visible {
		emit(entry)
	}
	if len(visible) == 0 && !jsonOutput {
		ui.PrintDim("no log lines yet")
	}

	if !logsFollow {
		return nil
	}
	return followLogs(cmd.Context(), sess, srv.ID, window, emit)
}

// followLogs streams newly appended lines until interrupted or the server
// disappears. The seen window must be the unfiltered one; filtering is
// applied to the appended slice only.
func followLogs(ctx context.Context, sess *session, serverID string, seen []logtail.Entry, emit func(logtail.Entry)) error {
	_, updates, cancel := sess.engine.Subscribe()
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sigCh:
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if _, ok := snap.Server(serverID); !ok {
				ui.PrintWarning("server is no longer tracked")
				return nil
			}
			next := snap.Logs[serverID]
			for _, entry := range filterLevel(appendedEntries(seen, next), logsLevel) {
				emit(entry)
			}
			seen = next
		}
	}
}

// appendedEntries returns the entries in next that follow the last entry
// of prev. The log cache is a sliding window without global indices, so
// this anchors on the previous tail; if the tail is gone the window
// rotated past us entirely and everything counts as new.
func appendedEntries(prev, next []logtail.Entry) []logtail.Entry {
	if len(prev) == 0 {
		return next
	}
	tail := prev[len(prev)-1]
	for i := len(next) - 1; i >= 0; i-- {
		if sameEntry(next[i], tail) {
			return next[i+1:]
		}
	}
	return next
}

func sameEntry(a, b logtail.Entry) bool {
	if a.Level != b.Level || a.Message != b.Message || a.Details != b.Details {
		return false
	}
	switch {
	case a.Timestamp == nil && b.Timestamp == nil:
		return true
	case a.Timestamp == nil || b.Timestamp == nil:
		return false
	}
	return a.Timestamp.Equal(*b.Timestamp)
}

// filterEntries applies the level filter, then keeps the last n lines.
func filterEntries(entries []logtail.Entry, level string, n int) []logtail.Entry {
	entries = filterLevel(entries, level)
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries
}

func filterLevel(entries []logtail.Entry, level string) []logtail.Entry {
	if level == "" {
		return entries
	}
	out := make([]logtail.Entry, 0, len(entries))
	for _, e := range entries {
		if strings.EqualFold(string(e.Level), level) {
			out = append(out, e)
		}
	}
	return out
}
