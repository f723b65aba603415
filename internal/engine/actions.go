package engine

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vizzly-testing/monitor/internal/cli"
	"github.com/vizzly-testing/monitor/internal/config"
	"github.com/vizzly-testing/monitor/internal/registry"
)

// maxActionErrors bounds the per-directory failure history.
const maxActionErrors = 20

// ActionError is one recorded CLI action failure.
type ActionError struct {
	Directory string    `json:"directory"`
	Command   string    `json:"command"`
	Detail    string    `json:"detail"`
	At        time.Time `json:"at"`
}

// StartServer asks the vizzly CLI to start a TDD server in dir. A zero
// port lets the CLI pick one.
//
// The returned result is the CLI's own verdict. The tracked set changes
// only once the registry file reflects the new server, which the follow-up
// reconciliation pass picks up.
func (e *Engine) StartServer(ctx context.Context, dir string, port int) (cli.Result, error) {
	args := []string{"tdd", "start"}
	if port > 0 {
		args = append(args, "--port", strconv.Itoa(port))
	}
	return e.runAction(ctx, dir, args)
}

// StopServer asks the vizzly CLI to stop the given server.
func (e *Engine) StopServer(ctx context.Context, srv registry.TrackedServer) (cli.Result, error) {
	return e.runAction(ctx, srv.Directory, []string{"tdd", "stop"})
}

// runAction invokes the CLI, records any failure, and always requests a
// reconciliation pass afterwards: the action's real effect is observed
// through the registry, not through the command's output.
func (e *Engine) runAction(ctx context.Context, dir string, args []string) (cli.Result, error) {
	ctx, span := e.opts.Tracer.Start(ctx, "cli.invoke", trace.WithAttributes(
		attribute.String("command", strings.Join(args, " ")),
		attribute.String("dir", dir),
	))
	defer span.End()

	res, err := e.opts.Runner.Run(ctx, dir, args...)
	switch {
	case err != nil:
		span.RecordError(err)
		e.recordActionError(dir, args, cli.DisplayDetail(err.Error()))
	case !res.Success:
		e.recordActionError(dir, args, res.Detail())
	}

	e.Refresh("action")
	return res, err
}

func (e *Engine) recordActionError(dir string, args []string, detail string) {
	key := config.NormalizeDir(dir)
	entry := ActionError{
		Directory: key,
		Command:   strings.Join(args, " "),
		Detail:    detail,
		At:        e.opts.Clock(),
	}

	e.emu.Lock()
	hist := append(e.actErrs[key], entry)
	if len(hist) > maxActionErrors {
		hist = hist[len(hist)-maxActionErrors:]
	}
	e.actErrs[key] = hist
	e.emu.Unlock()

	log.Warn("vizzly CLI action failed", "dir", dir, "command", entry.Command, "detail", detail)
}

// ActionErrors returns the recent failed actions for a directory, oldest
// first. The slice is the caller's to keep.
func (e *Engine) ActionErrors(dir string) []ActionError {
	key := config.NormalizeDir(dir)
	e.emu.Lock()
	defer e.emu.Unlock()
	if len(e.actErrs[key]) == 0 {
		return nil
	}
	out := make([]ActionError, len(e.actErrs[key]))
	copy(out, e.actErrs[key])
	return out
}
