// Package main provides the stop command.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vizzly-testing/monitor/internal/notify"
	"github.com/vizzly-testing/monitor/internal/registry"
	"github.com/vizzly-testing/monitor/internal/ui"
)

var stopAll bool

// stopCmd stops tracked servers through the vizzly CLI.
var stopCmd = &cobra.Command{
	Use:   "stop [server]",
	Short: "Stop a vizzly TDD server",
	Long: `Stop a vizzly TDD server.

The stop goes through 'vizzly tdd stop' in the server's project
directory; the monitor then observes the registry to confirm the server
is gone. With a server argument (id, port, project name, or directory)
that one server is stopped. Bare 'stop' offers to stop every tracked
server.

EXAMPLES:
  vizzly-monitor stop my-app       # By project name
  vizzly-monitor stop 3001         # By port
  vizzly-monitor stop              # Stop everything (asks first)
  vizzly-monitor stop --all        # Stop everything without asking`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStop,
}

func init() {
	stopCmd.Flags().BoolVar(&stopAll, "all", false, "Stop every tracked server without prompting")
}

func runStop(cmd *cobra.Command, args []string) error {
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

	if len(args) == 1 {
		srv, err := resolveServer(snap, args[0])
		if err != nil {
			if !jsonOutput {
				ui.PrintError("%v", err)
			}
			return err
		}
		return stopOne(cmd, sess, srv, jsonOutput)
	}

	if len(snap.Servers) == 0 {
		ui.PrintInfo("No vizzly TDD servers running")
		return nil
	}

	if !stopAll {
		if jsonOutput || !ui.InteractiveStdout() {
			return fmt.Errorf("refusing to stop every server without confirmation (use --all)")
		}
		for _, srv := range snap.Servers {
			ui.PrintDim("  %s (port %d, pid %d)", srv.Name, srv.Port, srv.PID)
		}
		if !ui.Confirm(fmt.Sprintf("Stop all %d server(s)?", len(snap.Servers))) {
			ui.PrintInfo("Cancelled")
			return nil
		}
	}

	failed := 0
	for _, srv := range snap.Servers {
		if err := stopOne(cmd, sess, srv, jsonOutput); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to stop %d of %d server(s)", failed, len(snap.Servers))
	}
	return nil
}

func stopOne(cmd *cobra.Command, sess *session, srv registry.TrackedServer, jsonOutput bool) error {
	if !jsonOutput {
		ui.StartSpinner(fmt.Sprintf("Stopping %s...", srv.Name))
	}
	res, err := sess.engine.StopServer(cmd.Context(), srv)
	if !jsonOutput {
		ui.StopSpinner()
	}

	_ = notify.Emit(sess.dir, "stop")

	return reportAction(cmd, "stop", srv.Name, res, err)
}
