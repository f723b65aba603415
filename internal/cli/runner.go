// Package cli invokes the vizzly CLI on behalf of the monitor.
//
// The monitor never talks to a TDD server directly. Starting and stopping
// go through the same `vizzly tdd ...` commands a developer would type, and
// the outcome is observed through the registry file afterwards rather than
// through the command's own output.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vizzly-testing/monitor/internal/config"
)

// ErrNotConfigured reports that no way of invoking the vizzly CLI could be
// resolved from config.json. It is a persistent, user-actionable state, not
// a transient failure, and callers should not retry without a config change.
var ErrNotConfigured = errors.New("vizzly CLI not configured")

// Result is the captured outcome of one CLI invocation. Output is buffered
// in full, never streamed.
type Result struct {
	Success bool
	Stdout  string
	Stderr  string
}

// Detail returns the most useful single line for presenting a failure:
// stderr if any, otherwise stdout, cleaned of shell noise.
func (r Result) Detail() string {
	out := strings.TrimSpace(r.Stderr)
	if out == "" {
		out = strings.TrimSpace(r.Stdout)
	}
	return DisplayDetail(out)
}

// Runner resolves and executes the vizzly CLI. Config is re-read on every
// invocation so a PATH fix takes effect without restarting the monitor.
type Runner struct {
	dir config.Dir
}

// NewRunner returns a Runner resolving the CLI via config.json in dir.
func NewRunner(dir config.Dir) *Runner {
	return &Runner{dir: dir}
}

// Resolve reports how the vizzly CLI would be invoked right now, without
// running anything. Doctor-style callers get the same ErrNotConfigured the
// actions would hit.
func (r *Runner) Resolve() (string, error) {
	cfg, err := config.LoadGlobal(r.dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	argv, err := resolveArgv(cfg, nil)
	if err != nil {
		return "", err
	}
	return strings.Join(argv, " "), nil
}

// Run invokes `vizzly args...` in workDir and waits for it to finish.
//
// A non-zero exit is not an error here: it comes back as Result.Success ==
// false with both streams captured. The error return is reserved for
// ErrNotConfigured and for failures to launch the process at all.
func (r *Runner) Run(ctx context.Context, workDir string, args ...string) (Result, error) {
	cfg, err := config.LoadGlobal(r.dir)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}

	argv, err := resolveArgv(cfg, args)
	if err != nil {
		return Result{}, err
	}

	log.Debug("invoking vizzly CLI", "argv", strings.Join(argv, " "), "dir", workDir)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = workDir
	cmd.Env = overridePath(os.Environ(), cfg.UserPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	res := Result{
		Success: runErr == nil,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		// The process never ran (bad interpreter path, permission, ...).
		return res, fmt.Errorf("failed to launch %s: %w", argv[0], runErr)
	}
	return res, nil
}

// resolveArgv builds the full argument vector for one invocation. Three
// strategies, in order: a vizzly binary on the configured PATH, the npx
// launcher recorded by the installer, and finally npx found on the
// configured PATH.
func resolveArgv(cfg *config.Global, args []string) ([]string, error) {
	if bin := lookPathIn("vizzly", cfg.UserPath); bin != "" {
		return append([]string{bin}, args...), nil
	}
	if npx := cfg.Runtime.NpxPath; npx != "" {
		return append([]string{npx, "vizzly"}, args...), nil
	}
	if npx := lookPathIn("npx", cfg.UserPath); npx != "" {
		return append([]string{npx, "vizzly"}, args...), nil
	}
	return nil, ErrNotConfigured
}

// lookPathIn searches a PATH-style list for an executable named name.
// exec.LookPath only consults the process environment, which is exactly
// what the configured userPath is meant to replace.
func lookPathIn(name, pathList string) string {
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Mode().Perm()&0111 != 0 {
			return candidate
		}
	}
	return ""
}

// overridePath replaces the PATH entry in an environment so the child
// resolves node and friends the way the user's shell would. Duplicate PATH
// entries are removed rather than shadowed; execve lookup order for
// duplicates is platform dependent.
func overridePath(env []string, userPath string) []string {
	if userPath == "" {
		return env
	}
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			continue
		}
		out = append(out, kv)
	}
	return append(out, "PATH="+userPath)
}

// shellPrefixRE matches the "zsh:1: " style prefix shells prepend to error
// lines when a command fails inside `sh -c`.
var shellPrefixRE = regexp.MustCompile(`^[a-z]+:\d+: `)

// DisplayDetail cleans one line of CLI output for display, stripping the
// shell's own error prefix so "zsh:1: command not found: npx" reads as
// "command not found: npx".
func DisplayDetail(s string) string {
	s = strings.TrimSpace(s)
	return shellPrefixRE.ReplaceAllString(s, "")
}
