//go:build !windows

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vizzly-testing/monitor/internal/config"
)

// newTestRunner returns a Runner whose state directory and binary directory
// both live under a temp root. Scripts stand in for the real CLI.
func newTestRunner(t *testing.T) (*Runner, string, string) {
	t.Helper()
	root := t.TempDir()
	stateDir := filepath.Join(root, "state")
	binDir := filepath.Join(root, "bin")
	for _, d := range []string{stateDir, binDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	return NewRunner(config.Dir(stateDir)), stateDir, binDir
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func writeGlobalConfig(t *testing.T, stateDir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(stateDir, "config.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestRunDirectBinary(t *testing.T) {
	r, stateDir, binDir := newTestRunner(t)
	writeScript(t, binDir, "vizzly", `echo "ready $@"`)
	writeGlobalConfig(t, stateDir, fmt.Sprintf(`{"userPath": %q}`, binDir))

	res, err := r.Run(context.Background(), t.TempDir(), "tdd", "start")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Success {
		t.Errorf("Success = false, stderr = %q", res.Stderr)
	}
	if got, want := res.Stdout, "ready tdd start\n"; got != want {
		t.Errorf("Stdout = %q, want %q", got, want)
	}
}

func TestRunCapturesFailure(t *testing.T) {
	r, stateDir, binDir := newTestRunner(t)
	writeScript(t, binDir, "vizzly", `echo "boom" >&2; exit 3`)
	writeGlobalConfig(t, stateDir, fmt.Sprintf(`{"userPath": %q}`, binDir))

	res, err := r.Run(context.Background(), t.TempDir(), "tdd", "stop")
	if err != nil {
		t.Fatalf("non-zero exit should not be an error, got %v", err)
	}
	if res.Success {
		t.Error("Success = true, want false")
	}
	if got, want := res.Stderr, "boom\n"; got != want {
		t.Errorf("Stderr = %q, want %q", got, want)
	}
}

func TestRunNotConfigured(t *testing.T) {
	r, _, _ := newTestRunner(t)

	_, err := r.Run(context.Background(), t.TempDir(), "tdd", "start")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestRunFallsBackToNpxPath(t *testing.T) {
	r, stateDir, binDir := newTestRunner(t)
	npx := writeScript(t, binDir, "npx-launcher", `echo "$@"`)
	writeGlobalConfig(t, stateDir, fmt.Sprintf(`{"runtime": {"npxPath": %q}}`, npx))

	res, err := r.Run(context.Background(), t.TempDir(), "tdd", "stop")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := res.Stdout, "vizzly tdd stop\n"; got != want {
		t.Errorf("Stdout = %q, want %q", got, want)
	}
}

func TestRunFindsNpxOnUserPath(t *testing.T) {
	r, stateDir, binDir := newTestRunner(t)
	writeScript(t, binDir, "npx", `echo "via-npx $@"`)
	writeGlobalConfig(t, stateDir, fmt.Sprintf(`{"userPath": %q}`, binDir))

	res, err := r.Run(context.Background(), t.TempDir(), "tdd", "start")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := res.Stdout, "via-npx vizzly tdd start\n"; got != want {
		t.Errorf("Stdout = %q, want %q", got, want)
	}
}

func TestRunPrefersDirectBinary(t *testing.T) {
	r, stateDir, binDir := newTestRunner(t)
	writeScript(t, binDir, "vizzly", `echo "direct"`)
	writeScript(t, binDir, "npx", `echo "npx"`)
	writeGlobalConfig(t, stateDir, fmt.Sprintf(`{"userPath": %q}`, binDir))

	res, err := r.Run(context.Background(), t.TempDir(), "tdd", "start")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := res.Stdout, "direct\n"; got != want {
		t.Errorf("Stdout = %q, want %q", got, want)
	}
}

func TestRunOverridesPathEnv(t *testing.T) {
	r, stateDir, binDir := newTestRunner(t)
	writeScript(t, binDir, "vizzly", `echo "$PATH"`)
	writeGlobalConfig(t, stateDir, fmt.Sprintf(`{"userPath": %q}`, binDir))

	res, err := r.Run(context.Background(), t.TempDir(), "tdd", "start")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := strings.TrimSpace(res.Stdout), binDir; got != want {
		t.Errorf("child PATH = %q, want %q", got, want)
	}
}

func TestRunSetsWorkingDirectory(t *testing.T) {
	r, stateDir, binDir := newTestRunner(t)
	writeScript(t, binDir, "vizzly", `pwd -P`)
	writeGlobalConfig(t, stateDir, fmt.Sprintf(`{"userPath": %q}`, binDir))

	workDir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(workDir)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}

	res, err := r.Run(context.Background(), workDir, "tdd", "start")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(res.Stdout); got != resolved {
		t.Errorf("child cwd = %q, want %q", got, resolved)
	}
}

func TestRunLaunchFailure(t *testing.T) {
	r, stateDir, _ := newTestRunner(t)
	writeGlobalConfig(t, stateDir, `{"runtime": {"npxPath": "/nonexistent/npx"}}`)

	res, err := r.Run(context.Background(), t.TempDir(), "tdd", "start")
	if err == nil {
		t.Fatal("expected a launch error")
	}
	if errors.Is(err, ErrNotConfigured) {
		t.Error("launch failure must be distinct from ErrNotConfigured")
	}
	if res.Success {
		t.Error("Success = true, want false")
	}
}

func TestLookPathInSkipsNonExecutable(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "vizzly"), []byte("not a program"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := lookPathIn("vizzly", dir); got != "" {
		t.Errorf("lookPathIn = %q, want empty for non-executable", got)
	}
}
