// Package main provides the doctor command for monitor diagnostics.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/vizzly-testing/monitor/internal/cli"
	"github.com/vizzly-testing/monitor/internal/config"
	"github.com/vizzly-testing/monitor/internal/notify"
	"github.com/vizzly-testing/monitor/internal/ui"
)

// DoctorCheck represents a single diagnostic check result.
type DoctorCheck struct {
	// Name is the check name (e.g., "Registry", "Vizzly CLI").
	Name string `json:"name"`

	// Status is the check status: "ok", "warning", "error".
	Status string `json:"status"`

	// Message is the human-readable result message.
	Message string `json:"message"`

	// Details contains additional information (optional).
	Details string `json:"details,omitempty"`
}

// DoctorResult contains all diagnostic check results.
type DoctorResult struct {
	// Checks contains all individual check results.
	Checks []DoctorCheck `json:"checks"`

	// Issues is the count of checks with status "error" or "warning".
	Issues int `json:"issues"`

	// Healthy is true if no errors were found.
	Healthy bool `json:"healthy"`
}

var doctorOutputJSON bool

// doctorCmd runs diagnostic checks on the monitor's environment.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the monitor's environment",
	Long: `Run diagnostic checks on the monitor's environment.

CHECKS PERFORMED:
  - Monitor version (release vs development build)
  - Vizzly state directory (~/.vizzly exists and readable?)
  - Server registry (servers.json parses?)
  - Legacy server file (server.json shape, older vizzly versions)
  - Vizzly CLI (resolvable from config.json? start/stop need it)
  - Monitor settings (monitor.yaml parses?)
  - Change signal (refresh socket bindable?)

OUTPUT:
  Human-readable by default, JSON with --json flag.

EXAMPLES:
  vizzly-monitor doctor              # Run all checks
  vizzly-monitor doctor --json       # Output as JSON for scripting`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorOutputJSON, "json", false, "Output results as JSON")
}

// runDoctor executes all diagnostic checks.
func runDoctor(cmd *cobra.Command, args []string) error {
	// Check if --json flag is set (either local or global)
	jsonOutput := doctorOutputJSON
	if globalJSON, _ := cmd.Root().PersistentFlags().GetBool("json"); globalJSON {
		jsonOutput = true
	}

	dir := config.DefaultDir()

	result := DoctorResult{
		Checks:  make([]DoctorCheck, 0),
		Healthy: true,
	}

	if !jsonOutput {
		ui.PrintBanner(version)
		ui.PrintInfo("Checking the monitor's environment...")
		ui.Println()
	}

	for _, check := range []DoctorCheck{
		checkVersionInfo(),
		checkStateDir(dir),
		checkRegistryFile(dir),
		checkLegacyFile(dir),
		checkVizzlyCLI(dir),
		checkSettingsFile(dir),
		checkSignalSocket(dir),
	} {
		result.Checks = append(result.Checks, check)
		switch check.Status {
		case "error":
			result.Healthy = false
			result.Issues++
		case "warning":
			result.Issues++
		}
	}

	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal doctor result: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printDoctorResults(result)
	}

	if !result.Healthy {
		return fmt.Errorf("environment check failed")
	}
	return nil
}

// checkVersionInfo reports the build the monitor is running.
func checkVersionInfo() DoctorCheck {
	check := DoctorCheck{
		Name:   "Version",
		Status: "ok",
	}

	if version == "dev" {
		check.Status = "warning"
		check.Message = "Development build"
		check.Details = "Running a development build, not a released version"
	} else {
		check.Message = fmt.Sprintf("v%s", version)
		check.Details = fmt.Sprintf("Commit: %s, Built: %s", commit, date)
	}

	return check
}

// checkStateDir verifies the vizzly home directory.
func checkStateDir(dir config.Dir) DoctorCheck {
	check := DoctorCheck{
		Name:   "State Dir",
		Status: "ok",
	}

	info, err := os.Stat(string(dir))
	if err != nil {
		if os.IsNotExist(err) {
			check.Status = "warning"
			check.Message = fmt.Sprintf("%s does not exist", dir)
			check.Details = "Created when vizzly starts its first TDD server"
			return check
		}
		check.Status = "error"
		check.Message = fmt.Sprintf("%s is unreadable", dir)
		check.Details = err.Error()
		return check
	}
	if !info.IsDir() {
		check.Status = "error"
		check.Message = fmt.Sprintf("%s is not a directory", dir)
		return check
	}

	check.Message = string(dir)
	return check
}

// checkRegistryFile verifies servers.json parses as a registry.
func checkRegistryFile(dir config.Dir) DoctorCheck {
	check := DoctorCheck{
		Name:   "Registry",
		Status: "ok",
	}

	data, err := os.ReadFile(dir.RegistryPath())
	if err != nil {
		if os.IsNotExist(err) {
			check.Message = "no servers.json yet"
			check.Details = "Written by vizzly when a TDD server starts"
			return check
		}
		check.Status = "error"
		check.Message = "servers.json unreadable"
		check.Details = err.Error()
		return check
	}

	if !gjson.ValidBytes(data) {
		check.Status = "error"
		check.Message = "servers.json is not valid JSON"
		check.Details = "Treated as empty until vizzly rewrites it"
		return check
	}

	root := gjson.ParseBytes(data)
	if v := root.Get("version"); !v.Exists() || v.Int() < 1 {
		check.Status = "warning"
		check.Message = fmt.Sprintf("unsupported registry version %d", v.Int())
		check.Details = "The monitor only reads version 1 registries"
		return check
	}

	check.Message = fmt.Sprintf("%d server(s) recorded", len(root.Get("servers").Array()))
	return check
}

// checkLegacyFile verifies the shape of the single-server server.json.
func checkLegacyFile(dir config.Dir) DoctorCheck {
	check := DoctorCheck{
		Name:   "Legacy File",
		Status: "ok",
	}

	data, err := os.ReadFile(dir.LegacyServerPath())
	if err != nil {
		if os.IsNotExist(err) {
			check.Message = "no server.json (fine)"
			return check
		}
		check.Status = "warning"
		check.Message = "server.json unreadable"
		check.Details = err.Error()
		return check
	}

	if !gjson.ValidBytes(data) {
		check.Status = "warning"
		check.Message = "server.json is not valid JSON"
		check.Details = "Ignored; only older vizzly versions write this file"
		return check
	}

	root := gjson.ParseBytes(data)
	pid := root.Get("pid").Int()
	port := root.Get("port").Int()
	if pid <= 0 || port <= 0 {
		check.Status = "warning"
		check.Message = "server.json has no usable pid/port"
		check.Details = "Ignored by the monitor"
		return check
	}

	check.Message = fmt.Sprintf("server.json present (pid %d, port %d)", pid, port)
	return check
}

// checkVizzlyCLI verifies the vizzly CLI can be invoked for start/stop.
func checkVizzlyCLI(dir config.Dir) DoctorCheck {
	check := DoctorCheck{
		Name:   "Vizzly CLI",
		Status: "ok",
	}

	argv, err := cli.NewRunner(dir).Resolve()
	if err != nil {
		if errors.Is(err, cli.ErrNotConfigured) {
			check.Status = "error"
			check.Message = "not configured"
			check.Details = "Install vizzly or record userPath/npxPath in ~/.vizzly/config.json; only start/stop need it"
			return check
		}
		check.Status = "error"
		check.Message = "resolution failed"
		check.Details = err.Error()
		return check
	}

	check.Message = argv
	return check
}

// checkSettingsFile verifies the monitor's own monitor.yaml.
func checkSettingsFile(dir config.Dir) DoctorCheck {
	check := DoctorCheck{
		Name:   "Settings",
		Status: "ok",
	}

	settings, err := config.LoadSettings(dir)
	if err != nil {
		check.Status = "warning"
		check.Message = "monitor.yaml is malformed"
		check.Details = err.Error()
		return check
	}

	if _, statErr := os.Stat(dir.SettingsPath()); os.IsNotExist(statErr) {
		check.Message = "defaults (no monitor.yaml)"
		return check
	}

	check.Message = fmt.Sprintf("log window %d, debounce %s, feed %s",
		settings.LogWindow, settings.Debounce(), settings.ServeAddr)
	return check
}

// checkSignalSocket verifies the refresh socket can be bound.
func checkSignalSocket(dir config.Dir) DoctorCheck {
	check := DoctorCheck{
		Name:   "Change Signal",
		Status: "ok",
	}

	listener, err := notify.Listen(dir, func(string) {})
	if err != nil {
		check.Status = "warning"
		check.Message = "refresh socket unavailable"
		check.Details = fmt.Sprintf("%v; a running 'vizzly-monitor serve' also holds it", err)
		return check
	}
	_ = listener.Close()

	check.Message = dir.SocketPath()
	return check
}

// printDoctorResults prints the doctor results in human-readable format.
func printDoctorResults(result DoctorResult) {
	checks := make([]ui.Check, 0, len(result.Checks))
	for _, c := range result.Checks {
		checks = append(checks, ui.Check{
			Name:   fmt.Sprintf("%-12s %s", c.Name+":", c.Message),
			Ok:     c.Status == "ok",
			Warn:   c.Status == "warning",
			Detail: c.Details,
		})
	}
	ui.PrintChecklist("Environment", checks)

	ui.Println()
	if result.Issues > 0 {
		ui.PrintWarning("%d issue(s) found", result.Issues)
	} else {
		ui.PrintSuccess("All checks passed")
	}
}
