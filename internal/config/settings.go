package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when monitor.yaml is absent or leaves a field unset.
const (
	DefaultLogWindow  = 100
	DefaultDebounceMS = 100
	DefaultServeAddr  = "127.0.0.1:47621"
)

// Settings is the monitor's own preferences file (~/.vizzly/monitor.yaml).
// Everything is optional; zero values fall back to defaults.
type Settings struct {
	// LogWindow is how many trailing log lines to keep per server.
	LogWindow int `yaml:"log_window,omitempty"`

	// DebounceMS is the quiet period applied to per-server file events
	// before reloading, in milliseconds.
	DebounceMS int `yaml:"debounce_ms,omitempty"`

	// ServeAddr is the listen address for the snapshot feed.
	ServeAddr string `yaml:"serve_addr,omitempty"`

	// Telemetry controls trace export.
	Telemetry Telemetry `yaml:"telemetry,omitempty"`
}

// Telemetry controls the OTLP trace export of the monitor itself.
type Telemetry struct {
	Enabled bool `yaml:"enabled"`
}

// LoadSettings reads monitor.yaml, returning defaults when the file is
// missing. A malformed file is an error; the caller decides whether that is
// fatal.
func LoadSettings(dir Dir) (*Settings, error) {
	s := &Settings{}
	data, err := os.ReadFile(dir.SettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			s.applyDefaults()
			return s, nil
		}
		return nil, fmt.Errorf("failed to read monitor settings: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse monitor settings: %w", err)
	}
	s.applyDefaults()
	return s, nil
}

// WriteSettings writes monitor.yaml, creating ~/.vizzly if needed.
func WriteSettings(dir Dir, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal monitor settings: %w", err)
	}
	if err := os.MkdirAll(string(dir), 0755); err != nil {
		return fmt.Errorf("failed to create vizzly directory: %w", err)
	}
	if err := os.WriteFile(dir.SettingsPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write monitor settings: %w", err)
	}
	return nil
}

// Debounce returns DebounceMS as a duration.
func (s *Settings) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

func (s *Settings) applyDefaults() {
	if s.LogWindow <= 0 {
		s.LogWindow = DefaultLogWindow
	}
	if s.DebounceMS <= 0 {
		s.DebounceMS = DefaultDebounceMS
	}
	if s.ServeAddr == "" {
		s.ServeAddr = DefaultServeAddr
	}
}
