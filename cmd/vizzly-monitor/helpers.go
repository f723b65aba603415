// Package main provides shared engine bootstrap helpers for CLI commands.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vizzly-testing/monitor/internal/cli"
	"github.com/vizzly-testing/monitor/internal/config"
	"github.com/vizzly-testing/monitor/internal/engine"
	"github.com/vizzly-testing/monitor/internal/registry"
	"github.com/vizzly-testing/monitor/internal/telemetry"
	"github.com/vizzly-testing/monitor/internal/ui"
)

// readyTimeout bounds how long one-shot commands wait for the first
// reconciliation pass before giving up. The pass is local file reads and
// signal-0 probes, so hitting this means something is badly stuck.
const readyTimeout = 10 * time.Second

// session is one running engine plus the telemetry attached to it.
// One-shot commands open a session, take a snapshot, and close it again;
// watch and serve keep theirs for the life of the process.
type session struct {
	dir      config.Dir
	settings *config.Settings
	engine   *engine.Engine
	tel      *telemetry.Telemetry
	cancel   context.CancelFunc
}

// openSession loads settings, wires telemetry, and starts the engine's
// owning goroutine. Callers must Close the session.
//
// A malformed monitor.yaml or failed telemetry setup is reported but
// never blocks a command; defaults apply.
func openSession(ctx context.Context) *session {
	dir := config.DefaultDir()

	settings, err := config.LoadSettings(dir)
	if err != nil {
		log.Warn("monitor settings unreadable, using defaults", "error", err)
		settings = nil
	}

	tel, err := telemetry.Setup(dir, telemetry.Enabled(settings), version)
	if err != nil {
		log.Warn("telemetry setup failed", "error", err)
		tel, _ = telemetry.Setup(dir, false, version)
	}

	opts := engine.Options{
		Dir:    dir,
		Tracer: tel.Tracer("vizzly-monitor"),
	}
	if settings != nil {
		opts.LogWindow = settings.LogWindow
		opts.Debounce = settings.Debounce()
	}

	eng := engine.New(opts)
	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		_ = eng.Run(runCtx)
	}()

	return &session{
		dir:      dir,
		settings: settings,
		engine:   eng,
		tel:      tel,
		cancel:   cancel,
	}
}

// Close stops the engine and flushes buffered telemetry.
func (s *session) Close() {
	s.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.tel.Shutdown(ctx); err != nil {
		log.Debug("telemetry shutdown failed", "error", err)
	}
}

// serveAddr returns the configured snapshot-feed address.
func (s *session) serveAddr() string {
	if s.settings != nil && s.settings.ServeAddr != "" {
		return s.settings.ServeAddr
	}
	return config.DefaultServeAddr
}

// firstSnapshot blocks until the engine publishes its first pass.
func (s *session) firstSnapshot(ctx context.Context) (engine.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	snap, err := s.engine.WaitReady(ctx)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("timed out waiting for the first registry read: %w", err)
	}
	return snap, nil
}

// resolveServer finds one tracked server by id, port, project name, or
// project directory.
func resolveServer(snap engine.Snapshot, selector string) (registry.TrackedServer, error) {
	srv, ok := snap.FindServer(selector)
	if ok {
		return srv, nil
	}
	if len(snap.Servers) == 0 {
		return registry.TrackedServer{}, fmt.Errorf("no tracked server matches %q: no servers are running", selector)
	}
	return registry.TrackedServer{}, fmt.Errorf("no tracked server matches %q (see 'vizzly-monitor status')", selector)
}

// reportAction prints one CLI action outcome and converts it into the
// command's exit status. JSON mode emits the result object instead of the
// styled line.
func reportAction(cmd *cobra.Command, verb, target string, res cli.Result, err error) error {
	jsonOutput, _ := cmd.Root().PersistentFlags().GetBool("json")

	if jsonOutput {
		payload := map[string]interface{}{
			"action":  verb,
			"target":  target,
			"success": err == nil && res.Success,
		}
		if detail := res.Detail(); detail != "" {
			payload["detail"] = detail
		}
		if err != nil {
			payload["error"] = err.Error()
		}
		data, mErr := json.MarshalIndent(payload, "", "  ")
		if mErr != nil {
			return fmt.Errorf("failed to marshal action result: %w", mErr)
		}
		fmt.Println(string(data))
		switch {
		case err != nil:
			return err
		case !res.Success:
			return fmt.Errorf("failed to %s %s", verb, target)
		}
		return nil
	}

	if err != nil {
		if errors.Is(err, cli.ErrNotConfigured) {
			ui.PrintError("vizzly CLI not configured")
			ui.PrintDim("  Install vizzly, or record its path in ~/.vizzly/config.json")
			ui.PrintDim("  Then run: vizzly-monitor doctor")
			return err
		}
		ui.PrintActionResult(verb, target, false, cli.DisplayDetail(err.Error()))
		return err
	}

	ui.PrintActionResult(verb, target, res.Success, res.Detail())
	if !res.Success {
		return fmt.Errorf("failed to %s %s", verb, target)
	}
	return nil
}
