// Package main provides the entry point for the vizzly-monitor CLI.
//
// vizzly-monitor is a local control plane for the background TDD servers
// the vizzly CLI runs. It reads the shared ~/.vizzly state, keeps test
// results and logs current, and exposes them to humans (status, watch,
// logs) and to tools (serve, mcp, schema).
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vizzly-testing/monitor/internal/ui"
)

// Version information set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "vizzly-monitor",
	Short: "Local control plane for vizzly TDD servers",
	Long:  ui.GetCondensedHelp(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		if debug {
			log.SetLevel(log.DebugLevel)
			log.Debug("Debug logging enabled")
		} else {
			// The engine and watchers narrate every pass at Debug/Info;
			// that chatter stays out of command output unless asked for.
			log.SetLevel(log.WarnLevel)
		}

		// Set quiet mode from global flag
		quiet, _ := cmd.Flags().GetBool("quiet")
		ui.SetQuietMode(quiet)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON (where supported)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(docsCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		ui.PrintBanner(version)
		ui.PrintInfo("Version: %s", version)
		ui.PrintInfo("Commit: %s", commit)
		ui.PrintInfo("Built: %s", date)
	},
}

// docsCmd opens the documentation in the browser.
var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Open Vizzly documentation in browser",
	Run: func(cmd *cobra.Command, args []string) {
		docsURL := "https://vizzly.dev/docs"
		ui.PrintInfo("Opening documentation: %s", docsURL)
		if err := ui.OpenBrowser(docsURL); err != nil {
			ui.PrintError("Failed to open browser: %v", err)
		}
	},
}

func main() {
	Execute()
}
