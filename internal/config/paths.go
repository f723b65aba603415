package config

import (
	"os"
	"path/filepath"
)

// Dir is the vizzly home directory (~/.vizzly). All well-known file paths
// the monitor reads or writes hang off it. Tests construct one over a
// temporary directory.
type Dir string

// DefaultDir returns the vizzly home directory for the current user.
func DefaultDir() Dir {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return Dir(filepath.Join(homeDir, ".vizzly"))
}

// RegistryPath returns the multi-server registry file path.
func (d Dir) RegistryPath() string {
	return filepath.Join(string(d), "servers.json")
}

// LegacyServerPath returns the legacy single-server file path.
func (d Dir) LegacyServerPath() string {
	return filepath.Join(string(d), "server.json")
}

// GlobalConfigPath returns the path of vizzly's own config.json.
func (d Dir) GlobalConfigPath() string {
	return filepath.Join(string(d), "config.json")
}

// SettingsPath returns the monitor's preferences file path.
func (d Dir) SettingsPath() string {
	return filepath.Join(string(d), "monitor.yaml")
}

// SocketPath returns the change-signal socket path.
func (d Dir) SocketPath() string {
	return filepath.Join(string(d), "monitor.sock")
}

// TracePath returns the telemetry export file path.
func (d Dir) TracePath() string {
	return filepath.Join(string(d), "monitor-traces.jsonl")
}

// ProjectReportPath returns the report-data file for a project directory.
func ProjectReportPath(projectDir string) string {
	return filepath.Join(projectDir, ".vizzly", "report-data.json")
}

// ProjectLogPath returns the default server log file for a project directory.
func ProjectLogPath(projectDir string) string {
	return filepath.Join(projectDir, ".vizzly", "server.log")
}
