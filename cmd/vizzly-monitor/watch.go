// Package main provides the watch command running the live dashboard.
package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vizzly-testing/monitor/internal/engine"
	"github.com/vizzly-testing/monitor/internal/stream"
	"github.com/vizzly-testing/monitor/internal/tui"
	"github.com/vizzly-testing/monitor/internal/ui"
)

var watchAttach string

// watchCmd runs the live dashboard.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard of every tracked TDD server",
	Long: `Run the live terminal dashboard.

The dashboard tracks every vizzly TDD server in real time: test results
as they land, recent log lines, and keys to start, stop, and inspect
servers without leaving the terminal.

By default it runs its own monitoring engine. With --attach it renders
the snapshot feed of an already-running 'vizzly-monitor serve' instance
instead; attached dashboards are view-only.

KEYS:
  up/down  select a server       enter  log pane
  s        start a server here   x      stop selected
  c        copy dashboard URL    o      open dashboard
  r        refresh now           q      quit

EXAMPLES:
  vizzly-monitor watch                            # Own engine
  vizzly-monitor watch --attach 127.0.0.1:47621   # Shared engine`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchAttach, "attach", "", "Attach to a running monitor's feed (host:port) instead of starting an engine")
}

func runWatch(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Root().PersistentFlags().GetBool("json")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	if !tui.ShouldRunTUI(jsonOutput, quiet) {
		err := fmt.Errorf("watch needs an interactive terminal (try 'vizzly-monitor status')")
		ui.PrintError("%v", err)
		return err
	}

	if watchAttach != "" {
		return runWatchAttached(cmd.Context(), watchAttach)
	}

	sess := openSession(cmd.Context())
	defer sess.Close()

	// The dashboard's start/stop/refresh keys drive the same engine the
	// feed comes from.
	return tui.RunDashboard(sess.engine, sess.engine, version)
}

// runWatchAttached renders another monitor's feed instead of starting an
// engine of our own.
func runWatchAttached(ctx context.Context, addr string) error {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := stream.Dial(dialCtx, addr)
	if err != nil {
		ui.PrintError("%v", err)
		ui.PrintDim("  Is 'vizzly-monitor serve' running there?")
		return err
	}
	defer client.Close()

	return tui.RunDashboard(&feedClient{client: client}, nil, version)
}

// feedClient adapts the websocket client to the dashboard's feed
// interface. Subscribe is single-use, which is all the dashboard needs.
type feedClient struct {
	client *stream.Client
}

func (f *feedClient) Subscribe() (string, <-chan engine.Snapshot, func()) {
	ch := make(chan engine.Snapshot, 8)
	done := make(chan struct{})

	go func() {
		defer close(ch)
		for {
			select {
			case upd, ok := <-f.client.Updates():
				if !ok {
					return
				}
				select {
				case ch <- upd.Snapshot:
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			f.client.Close()
		})
	}
	return uuid.NewString(), ch, cancel
}
