package main

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vizzly-testing/monitor/internal/config"
	"github.com/vizzly-testing/monitor/internal/notify"
	"github.com/vizzly-testing/monitor/internal/ui"
)

// nameCmd reads or sets a project's display name override.
var nameCmd = &cobra.Command{
	Use:   "name [dir] [display-name]",
	Short: "Show or set a project's display name",
	Long: `Show or set the display name the monitor uses for a project directory.

Without a display name the monitor derives one from the project directory.
An override is stored in ~/.vizzly/config.json and survives server restarts.
Setting an empty name ("") clears the override.

EXAMPLES:
  vizzly-monitor name                     # Show the current directory's name
  vizzly-monitor name ~/work/my-app       # Show another project's name
  vizzly-monitor name . "Storefront"      # Set a display name
  vizzly-monitor name . ""                # Clear the override`,
	Args: cobra.MaximumNArgs(2),
	RunE: runName,
}

// runName handles both the read and write paths.
func runName(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Root().PersistentFlags().GetBool("json")

	projectDir, err := targetDir(args)
	if err != nil {
		return err
	}
	dir := config.DefaultDir()

	if len(args) < 2 {
		return showName(dir, projectDir, jsonOutput)
	}
	return setName(dir, projectDir, args[1], jsonOutput)
}

// showName prints the effective display name override for a directory.
func showName(dir config.Dir, projectDir string, jsonOutput bool) error {
	cfg, err := config.LoadGlobal(dir)
	if err != nil {
		return err
	}
	name := cfg.ProjectName(projectDir)

	if jsonOutput {
		data, err := json.MarshalIndent(map[string]interface{}{
			"directory": config.NormalizeDir(projectDir),
			"name":      name,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal name info: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if name == "" {
		ui.PrintInfo("No display-name override for %s", projectDir)
		ui.PrintDim("Set one with: vizzly-monitor name %s \"My Project\"", projectDir)
		return nil
	}
	ui.PrintInfo("%s is shown as %q", projectDir, name)
	return nil
}

// setName records (or clears) the display name in the global config.
func setName(dir config.Dir, projectDir, name string, jsonOutput bool) error {
	if err := config.SetProjectName(dir, projectDir, name); err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}

	// A running watch or serve should relabel its rows right away.
	if err := notify.Emit(dir, "name-change"); err != nil {
		log.Debug("No monitor listening for the name change", "error", err)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(map[string]interface{}{
			"directory": config.NormalizeDir(projectDir),
			"name":      name,
			"cleared":   name == "",
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal name info: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if name == "" {
		ui.PrintSuccess("Cleared display name for %s", projectDir)
	} else {
		ui.PrintSuccess("Set display name for %s to %q", projectDir, name)
	}
	return nil
}
