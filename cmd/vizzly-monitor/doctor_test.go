// Package main provides tests for the doctor environment checks.
package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vizzly-testing/monitor/internal/config"
	"github.com/vizzly-testing/monitor/internal/notify"
)

// writeFixture writes one file under a temporary vizzly home.
func writeFixture(t *testing.T, dir config.Dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(string(dir), name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
}

// TestCheckVersionInfo verifies the development build warning.
func TestCheckVersionInfo(t *testing.T) {
	// Tests run against the default ldflags values.
	check := checkVersionInfo()
	if check.Status != "warning" {
		t.Errorf("checkVersionInfo() status = %q, want %q", check.Status, "warning")
	}
	if check.Message != "Development build" {
		t.Errorf("checkVersionInfo() message = %q, want %q", check.Message, "Development build")
	}
}

// TestCheckStateDir verifies the three state-directory outcomes.
func TestCheckStateDir(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		dir := config.Dir(t.TempDir())
		check := checkStateDir(dir)
		if check.Status != "ok" {
			t.Errorf("status = %q, want ok (%s)", check.Status, check.Message)
		}
	})

	t.Run("missing", func(t *testing.T) {
		dir := config.Dir(filepath.Join(t.TempDir(), "absent"))
		check := checkStateDir(dir)
		if check.Status != "warning" {
			t.Errorf("status = %q, want warning (%s)", check.Status, check.Message)
		}
	})

	t.Run("not a directory", func(t *testing.T) {
		parent := t.TempDir()
		file := filepath.Join(parent, "vizzly")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		check := checkStateDir(config.Dir(file))
		if check.Status != "error" {
			t.Errorf("status = %q, want error (%s)", check.Status, check.Message)
		}
	})
}

// TestCheckRegistryFile verifies registry parsing outcomes.
func TestCheckRegistryFile(t *testing.T) {
	tests := []struct {
		name       string
		content    string // empty means no file
		wantStatus string
		wantIn     string
	}{
		{
			name:       "missing",
			wantStatus: "ok",
			wantIn:     "no servers.json yet",
		},
		{
			name:       "invalid json",
			content:    `{"version": 1, "servers": [`,
			wantStatus: "error",
			wantIn:     "not valid JSON",
		},
		{
			name:       "unsupported version",
			content:    `{"servers": []}`,
			wantStatus: "warning",
			wantIn:     "unsupported registry version",
		},
		{
			name:       "two servers",
			content:    `{"version": 1, "servers": [{"id": "a"}, {"id": "b"}]}`,
			wantStatus: "ok",
			wantIn:     "2 server(s) recorded",
		},
		{
			name:       "empty registry",
			content:    `{"version": 1, "servers": []}`,
			wantStatus: "ok",
			wantIn:     "0 server(s) recorded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := config.Dir(t.TempDir())
			if tt.content != "" {
				writeFixture(t, dir, "servers.json", tt.content)
			}
			check := checkRegistryFile(dir)
			if check.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q (%s)", check.Status, tt.wantStatus, check.Message)
			}
			if !strings.Contains(check.Message, tt.wantIn) {
				t.Errorf("message = %q, want containing %q", check.Message, tt.wantIn)
			}
		})
	}
}

// TestCheckLegacyFile verifies the legacy server.json never escalates past a warning.
func TestCheckLegacyFile(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantStatus string
		wantIn     string
	}{
		{
			name:       "missing",
			wantStatus: "ok",
			wantIn:     "no server.json",
		},
		{
			name:       "invalid json",
			content:    `pid=1234`,
			wantStatus: "warning",
			wantIn:     "not valid JSON",
		},
		{
			name:       "no usable fields",
			content:    `{"startTime": 1724500000000}`,
			wantStatus: "warning",
			wantIn:     "no usable pid/port",
		},
		{
			name:       "usable",
			content:    `{"pid": 1234, "port": 3001, "startTime": 1724500000000}`,
			wantStatus: "ok",
			wantIn:     "pid 1234, port 3001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := config.Dir(t.TempDir())
			if tt.content != "" {
				writeFixture(t, dir, "server.json", tt.content)
			}
			check := checkLegacyFile(dir)
			if check.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q (%s)", check.Status, tt.wantStatus, check.Message)
			}
			if !strings.Contains(check.Message, tt.wantIn) {
				t.Errorf("message = %q, want containing %q", check.Message, tt.wantIn)
			}
		})
	}
}

// TestCheckVizzlyCLI verifies CLI resolution against the config fixture,
// independent of the test environment's PATH.
func TestCheckVizzlyCLI(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		dir := config.Dir(t.TempDir())
		check := checkVizzlyCLI(dir)
		if check.Status != "error" {
			t.Errorf("status = %q, want error (%s)", check.Status, check.Message)
		}
		if check.Message != "not configured" {
			t.Errorf("message = %q, want %q", check.Message, "not configured")
		}
	})

	t.Run("binary on configured path", func(t *testing.T) {
		dir := config.Dir(t.TempDir())
		binDir := t.TempDir()
		bin := filepath.Join(binDir, "vizzly")
		if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatal(err)
		}
		writeFixture(t, dir, "config.json", `{"userPath": `+jsonString(binDir)+`}`)

		check := checkVizzlyCLI(dir)
		if check.Status != "ok" {
			t.Fatalf("status = %q, want ok (%s)", check.Status, check.Details)
		}
		if !strings.Contains(check.Message, bin) {
			t.Errorf("message = %q, want containing %q", check.Message, bin)
		}
	})

	t.Run("recorded npx launcher", func(t *testing.T) {
		dir := config.Dir(t.TempDir())
		writeFixture(t, dir, "config.json", `{"runtime": {"npxPath": "/opt/node/bin/npx"}}`)

		check := checkVizzlyCLI(dir)
		if check.Status != "ok" {
			t.Fatalf("status = %q, want ok (%s)", check.Status, check.Details)
		}
		if check.Message != "/opt/node/bin/npx vizzly" {
			t.Errorf("message = %q, want %q", check.Message, "/opt/node/bin/npx vizzly")
		}
	})
}

// jsonString quotes a string for embedding in a JSON fixture.
func jsonString(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}

// TestCheckSettingsFile verifies monitor.yaml outcomes.
func TestCheckSettingsFile(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		dir := config.Dir(t.TempDir())
		check := checkSettingsFile(dir)
		if check.Status != "ok" {
			t.Errorf("status = %q, want ok (%s)", check.Status, check.Message)
		}
		if !strings.Contains(check.Message, "defaults") {
			t.Errorf("message = %q, want mention of defaults", check.Message)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		dir := config.Dir(t.TempDir())
		writeFixture(t, dir, "monitor.yaml", "log_window: [50\n")
		check := checkSettingsFile(dir)
		if check.Status != "warning" {
			t.Errorf("status = %q, want warning (%s)", check.Status, check.Message)
		}
	})

	t.Run("configured", func(t *testing.T) {
		dir := config.Dir(t.TempDir())
		writeFixture(t, dir, "monitor.yaml", "log_window: 250\ndebounce_ms: 50\n")
		check := checkSettingsFile(dir)
		if check.Status != "ok" {
			t.Fatalf("status = %q, want ok (%s)", check.Status, check.Message)
		}
		if !strings.Contains(check.Message, "log window 250") {
			t.Errorf("message = %q, want containing %q", check.Message, "log window 250")
		}
	})
}

// TestCheckSignalSocket verifies the socket probe binds and releases.
func TestCheckSignalSocket(t *testing.T) {
	dir := config.Dir(t.TempDir())

	check := checkSignalSocket(dir)
	if check.Status != "ok" {
		t.Fatalf("status = %q, want ok (%s)", check.Status, check.Details)
	}
	if check.Message != dir.SocketPath() {
		t.Errorf("message = %q, want %q", check.Message, dir.SocketPath())
	}

	// The probe must release the socket so a later serve can take it.
	if _, err := os.Stat(dir.SocketPath()); !os.IsNotExist(err) {
		t.Errorf("socket file still present after probe: %v", err)
	}
}

// TestCheckSignalSocketHeld verifies a live listener downgrades the check.
func TestCheckSignalSocketHeld(t *testing.T) {
	dir := config.Dir(t.TempDir())

	held, err := notify.Listen(dir, func(string) {})
	if err != nil {
		t.Fatalf("failed to hold socket: %v", err)
	}
	defer held.Close()

	check := checkSignalSocket(dir)
	if check.Status != "warning" {
		t.Errorf("status = %q, want warning (%s)", check.Status, check.Message)
	}
	if !strings.Contains(check.Details, "serve") {
		t.Errorf("details = %q, want pointer at the serve command", check.Details)
	}
}
