// Package main provides the serve command running the headless monitor.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vizzly-testing/monitor/internal/notify"
	"github.com/vizzly-testing/monitor/internal/stream"
	"github.com/vizzly-testing/monitor/internal/ui"
)

var serveAddrFlag string

// serveCmd runs the monitor headless with the local snapshot feed.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve snapshots over HTTP and WebSocket",
	Long: `Run the monitor headless and serve its snapshots locally.

ENDPOINTS (loopback only):
  GET /healthz      liveness plus the current snapshot sequence
  GET /api/status   latest snapshot with derived server states
  GET /ws           snapshot push on every change

While serve runs, other vizzly-monitor invocations poke it for an
immediate re-read through the ~/.vizzly/monitor.sock datagram socket
(SIGUSR1 works too), and 'vizzly-monitor watch --attach' renders this
instance's feed instead of starting its own engine.

EXAMPLES:
  vizzly-monitor serve                       # Default 127.0.0.1:47621
  vizzly-monitor serve --addr 127.0.0.1:5599`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddrFlag, "addr", "", "Listen address (default from monitor.yaml, else 127.0.0.1:47621)")
}

func runServe(cmd *cobra.Command, args []string) error {
	sess := openSession(cmd.Context())
	defer sess.Close()

	addr := serveAddrFlag
	if addr == "" {
		addr = sess.serveAddr()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Out-of-band change signal: socket datagrams and SIGUSR1 both funnel
	// into the engine's refresh channel.
	listener, err := notify.Listen(sess.dir, sess.engine.Refresh)
	if err != nil {
		log.Warn("change-signal socket unavailable", "error", err)
	} else {
		defer listener.Close()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	ui.PrintInfo("Serving snapshots on http://%s", addr)
	ui.PrintLink("Status", "http://"+addr+"/api/status")
	ui.PrintDim("Attach a dashboard: vizzly-monitor watch --attach %s", addr)
	ui.Println()

	srv := stream.NewServer(addr, sess.engine)
	if err := srv.ListenAndServe(ctx); err != nil {
		ui.PrintError("Feed server failed: %v", err)
		return err
	}
	return nil
}
