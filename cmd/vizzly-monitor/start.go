// Package main provides the start command.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vizzly-testing/monitor/internal/notify"
	"github.com/vizzly-testing/monitor/internal/ui"
)

var startPort int

// startCmd starts a vizzly TDD server in a project directory.
var startCmd = &cobra.Command{
	Use:   "start [dir]",
	Short: "Start a vizzly TDD server",
	Long: `Start a vizzly TDD server in a project directory.

The server itself belongs to the vizzly CLI; this runs 'vizzly tdd
start' there and then watches the shared registry for the new server to
appear. With no directory argument the current directory is used.

EXAMPLES:
  vizzly-monitor start                 # Start in the current directory
  vizzly-monitor start ~/work/my-app   # Start in a project
  vizzly-monitor start --port 3005     # Pin the dashboard port`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

func init() {
	startCmd.Flags().IntVar(&startPort, "port", 0, "Dashboard port (0 lets the CLI pick)")
}

func runStart(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Root().PersistentFlags().GetBool("json")

	if startPort < 0 {
		err := fmt.Errorf("invalid port %d", startPort)
		ui.PrintError("%v", err)
		return err
	}

	dir, err := targetDir(args)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}

	sess := openSession(cmd.Context())
	defer sess.Close()

	if !jsonOutput {
		ui.StartSpinner(fmt.Sprintf("Starting TDD server in %s...", dir))
	}
	res, err := sess.engine.StartServer(cmd.Context(), dir, startPort)
	if !jsonOutput {
		ui.StopSpinner()
	}

	// Poke any running watch/serve instance so the new server shows up
	// there without waiting for a registry file event.
	_ = notify.Emit(sess.dir, "start")

	if err := reportAction(cmd, "start", dir, res, err); err != nil {
		return err
	}
	if !jsonOutput {
		ui.PrintDim("It appears in 'vizzly-monitor status' once the registry reflects it")
	}
	return nil
}

// targetDir resolves the optional directory argument to an absolute,
// existing directory.
func targetDir(args []string) (string, error) {
	if len(args) == 0 {
		dir, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to resolve current directory: %w", err)
		}
		return dir, nil
	}

	dir, err := filepath.Abs(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory %q: %w", args[0], err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("directory %s does not exist", dir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return dir, nil
}
