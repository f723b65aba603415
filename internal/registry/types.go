package registry

import (
	"fmt"
	"path/filepath"
	"time"
)

// TrackedServer is one running vizzly TDD server as recorded by the
// registry. Instances are value types; the engine hands out copies and
// never shares its own.
type TrackedServer struct {
	// ID is stable for the lifetime of one running instance. A restarted
	// server gets a new identity unless the producer reuses the id.
	ID string `json:"id"`

	// Name is the display name, either from the registry or overridden by
	// the per-project projectName in config.json.
	Name string `json:"name"`

	Port int `json:"port"`
	PID  int `json:"pid"`

	// Directory is the absolute project directory the server runs in.
	Directory string `json:"directory"`

	StartedAt time.Time `json:"startedAt"`

	ConfigPath string `json:"configPath,omitempty"`

	// LogFile overrides the default log location when set.
	LogFile string `json:"logFile,omitempty"`

	// Stats is the registry-embedded snapshot, if the producer wrote one.
	// The live report file supersedes it on the next reload.
	Stats *ServerStats `json:"stats,omitempty"`
}

// DashboardAddress returns the local dashboard URL for this server.
func (s TrackedServer) DashboardAddress() string {
	return fmt.Sprintf("http://localhost:%d", s.Port)
}

// HealthAddress returns the health endpoint URL for this server.
func (s TrackedServer) HealthAddress() string {
	return s.DashboardAddress() + "/health"
}

// ReportDataPath returns the report-data file the server writes under its
// project directory.
func (s TrackedServer) ReportDataPath() string {
	return filepath.Join(s.Directory, ".vizzly", "report-data.json")
}

// LogPath returns the server's log file, honoring a registry-specified
// override.
func (s TrackedServer) LogPath() string {
	if s.LogFile != "" {
		return s.LogFile
	}
	return filepath.Join(s.Directory, ".vizzly", "server.log")
}

// Uptime returns how long the server has been running as of now.
func (s TrackedServer) Uptime(now time.Time) time.Duration {
	if s.StartedAt.IsZero() || now.Before(s.StartedAt) {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// Clone returns a deep copy, including the embedded stats.
func (s TrackedServer) Clone() TrackedServer {
	c := s
	if s.Stats != nil {
		stats := *s.Stats
		c.Stats = &stats
	}
	return c
}

// ServerStats is the test-run summary for one server. Replaced wholesale on
// every successful report read; never mutated in place.
type ServerStats struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Errors int `json:"errors"`

	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Healthy reports whether the server has no failures and no errors. A
// server that has run zero tests is healthy.
func (s ServerStats) Healthy() bool {
	return s.Failed == 0 && s.Errors == 0
}

// HasFailures reports whether any test failed.
func (s ServerStats) HasFailures() bool {
	return s.Failed > 0
}
