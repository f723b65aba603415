package engine

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vizzly-testing/monitor/internal/logtail"
	"github.com/vizzly-testing/monitor/internal/registry"
)

type reloadKind int

const (
	kindStats reloadKind = iota
	kindLogs
)

// serverWatch bundles one server's two watchers and their debounce timers.
// Owned by the Run goroutine.
type serverWatch struct {
	report Watcher
	logW   Watcher

	statsTimer *time.Timer
	logsTimer  *time.Timer
}

func (sw *serverWatch) teardown() {
	if sw.statsTimer != nil {
		sw.statsTimer.Stop()
	}
	if sw.logsTimer != nil {
		sw.logsTimer.Stop()
	}
	if sw.report != nil {
		sw.report.Close()
	}
	if sw.logW != nil {
		sw.logW.Close()
	}
}

// startPass begins a reconciliation pass unless one is already running, in
// which case a single follow-up is remembered. Runs on the owning
// goroutine.
func (e *Engine) startPass(trigger string) {
	if e.passing {
		if e.pending == "" {
			e.pending = trigger
		}
		return
	}
	e.passing = true

	_, span := e.opts.Tracer.Start(context.Background(), "reconcile.pass",
		trace.WithAttributes(attribute.String("trigger", trigger)))
	go e.collect(span, trigger)
}

func (e *Engine) finishPass() {
	e.passing = false
	if e.pending != "" {
		trigger := e.pending
		e.pending = ""
		e.startPass(trigger)
	}
}

// collect is the blocking half of a pass: registry read plus liveness
// probes, off the owning goroutine. The result is marshaled back to apply.
func (e *Engine) collect(span trace.Span, trigger string) {
	candidates := e.opts.Source.Load()

	live := make([]registry.TrackedServer, 0, len(candidates))
	for _, srv := range candidates {
		if e.opts.Prober.Alive(srv.PID) {
			live = append(live, srv)
		} else {
			log.Debug("dropping dead server", "id", srv.ID, "pid", srv.PID)
		}
	}
	span.SetAttributes(
		attribute.Int("servers.candidates", len(candidates)),
		attribute.Int("servers.live", len(live)),
	)

	e.post(func() {
		e.apply(trigger, live)
		span.End()
		e.finishPass()
	})
}

// apply is the state-mutating half of a pass. Removals run before
// additions so a recycled id can never inherit a previous instance's
// caches.
func (e *Engine) apply(trigger string, live []registry.TrackedServer) {
	incoming := make(map[string]bool, len(live))
	for _, srv := range live {
		incoming[srv.ID] = true
	}
	for id := range e.servers {
		if !incoming[id] {
			e.remove(id)
		}
	}

	var added int
	for _, srv := range live {
		prev, existed := e.servers[srv.ID]
		if existed {
			// A running instance's start time cannot change; keeping the
			// first observation makes uptime monotone even when the legacy
			// file forces the reader to substitute the read time.
			srv.StartedAt = prev.StartedAt
		}
		e.servers[srv.ID] = srv

		switch {
		case !existed:
			added++
			e.startWatching(srv)
		case prev.ReportDataPath() != srv.ReportDataPath() || prev.LogPath() != srv.LogPath():
			// Watched paths moved; retained servers otherwise keep their
			// watchers untouched to avoid descriptor churn.
			e.rewatch(srv)
		}

		if srv.Stats != nil {
			stats := *srv.Stats
			e.stats[srv.ID] = &stats
		}
	}

	e.publish()
	log.Debug("reconciled", "trigger", trigger, "servers", len(e.servers), "added", added)
}

// remove tears down one server's watchers and purges its caches.
func (e *Engine) remove(id string) {
	if sw, ok := e.watchers[id]; ok {
		sw.teardown()
		delete(e.watchers, id)
	}
	delete(e.servers, id)
	delete(e.stats, id)
	delete(e.logs, id)
	log.Debug("server removed", "id", id)
}

// startWatching creates the report and log watchers for a newly observed
// server and kicks off the one-time initial load of both files.
func (e *Engine) startWatching(srv registry.TrackedServer) {
	id := srv.ID
	reportPath := srv.ReportDataPath()
	logPath := srv.LogPath()

	e.watchers[id] = &serverWatch{
		report: e.opts.Watch(reportPath, func() {
			e.post(func() { e.scheduleReload(id, kindStats) })
		}),
		logW: e.opts.Watch(logPath, func() {
			e.post(func() { e.scheduleReload(id, kindLogs) })
		}),
	}
	e.initialLoad(id, reportPath, logPath)
}

func (e *Engine) rewatch(srv registry.TrackedServer) {
	if sw, ok := e.watchers[srv.ID]; ok {
		sw.teardown()
		delete(e.watchers, srv.ID)
	}
	e.startWatching(srv)
}

// scheduleReload arms (or re-arms) the debounce timer for one server
// resource. A callback arriving after the server's removal finds no
// watcher entry and does nothing.
func (e *Engine) scheduleReload(id string, kind reloadKind) {
	sw, ok := e.watchers[id]
	if !ok {
		return
	}

	fire := func() {
		e.post(func() { e.runReload(id, kind) })
	}

	timer := &sw.statsTimer
	if kind == kindLogs {
		timer = &sw.logsTimer
	}
	if *timer == nil {
		*timer = time.AfterFunc(e.opts.Debounce, fire)
	} else {
		(*timer).Reset(e.opts.Debounce)
	}
}

// runReload performs the debounced read on a worker goroutine and applies
// the result back on the owning one.
func (e *Engine) runReload(id string, kind reloadKind) {
	srv, ok := e.servers[id]
	if !ok {
		return
	}

	switch kind {
	case kindStats:
		path := srv.ReportDataPath()
		go func() {
			stats := e.opts.ReadStats(path)
			e.post(func() { e.applyStats(id, stats) })
		}()
	case kindLogs:
		path := srv.LogPath()
		window := e.opts.LogWindow
		go func() {
			entries := e.opts.LoadLogs(path, window)
			e.post(func() { e.applyLogs(id, entries) })
		}()
	}
}

// initialLoad reads both files for a just-added server in one worker and
// publishes once.
func (e *Engine) initialLoad(id, reportPath, logPath string) {
	window := e.opts.LogWindow
	go func() {
		stats := e.opts.ReadStats(reportPath)
		entries := e.opts.LoadLogs(logPath, window)
		e.post(func() {
			if _, ok := e.servers[id]; !ok {
				return
			}
			e.stats[id] = &stats
			e.logs[id] = entries
			e.publish()
		})
	}()
}

func (e *Engine) applyStats(id string, stats registry.ServerStats) {
	if _, ok := e.servers[id]; !ok {
		return
	}
	e.stats[id] = &stats
	e.publish()
}

func (e *Engine) applyLogs(id string, entries []logtail.Entry) {
	if _, ok := e.servers[id]; !ok {
		return
	}
	e.logs[id] = entries
	e.publish()
}
