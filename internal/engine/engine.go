// Package engine owns the monitor's authoritative view of running vizzly
// TDD servers and keeps it current.
//
// One goroutine, started by Run, owns every mutable map: the tracked server
// set, the stats cache, the log cache, and the per-server watcher handles.
// Everything else (filesystem watcher callbacks, debounce timers, the
// change-signal listener, CLI and TUI frontends) communicates with that
// goroutine through posted closures and the coalescing refresh channel, so
// no lock covers the reconciliation state itself.
//
// Blocking work (registry reads, liveness probes, report and log reads, CLI
// invocations) runs on short-lived worker goroutines; results are marshaled
// back onto the owning goroutine before they touch state.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vizzly-testing/monitor/internal/cli"
	"github.com/vizzly-testing/monitor/internal/config"
	"github.com/vizzly-testing/monitor/internal/logtail"
	"github.com/vizzly-testing/monitor/internal/proc"
	"github.com/vizzly-testing/monitor/internal/registry"
	"github.com/vizzly-testing/monitor/internal/watch"
)

// Source lists the currently registered servers. Load is called from a
// worker goroutine and may block on file and process reads.
type Source interface {
	Load() []registry.TrackedServer
}

// Runner invokes the vizzly CLI. Implementations must capture output and
// report a non-zero exit via Result, not via the error return.
type Runner interface {
	Run(ctx context.Context, workDir string, args ...string) (cli.Result, error)
}

// Watcher is the subset of a path watcher the engine manages.
type Watcher interface {
	Close()
}

// WatchFactory creates a watcher for one path. The callback may fire from
// any goroutine and carries no payload; it is a hint to re-read.
type WatchFactory func(path string, onChange func()) Watcher

// Options configures an Engine. Zero-value fields get production defaults,
// so tests can swap in fakes per concern.
type Options struct {
	// Dir is the vizzly state directory. Defaults to config.DefaultDir().
	Dir config.Dir

	Source Source
	Prober proc.Prober
	Runner Runner
	Watch  WatchFactory

	// ReadStats reads one server's report-data file.
	ReadStats func(path string) registry.ServerStats

	// LoadLogs reads the recent window of one server's log file.
	LoadLogs func(path string, maxLines int) []logtail.Entry

	// LogWindow is the number of recent log lines kept per server.
	LogWindow int

	// Debounce is how long to wait after a file event before reloading,
	// batching editor-style write bursts into one read.
	Debounce time.Duration

	Clock  func() time.Time
	Tracer trace.Tracer
}

func (o *Options) fillDefaults() {
	if o.Dir == "" {
		o.Dir = config.DefaultDir()
	}
	if o.Source == nil {
		o.Source = registry.NewSource(o.Dir)
	}
	if o.Prober == nil {
		o.Prober = proc.SignalProber{}
	}
	if o.Runner == nil {
		o.Runner = cli.NewRunner(o.Dir)
	}
	if o.Watch == nil {
		o.Watch = func(path string, onChange func()) Watcher {
			return watch.New(path, onChange)
		}
	}
	if o.ReadStats == nil {
		o.ReadStats = registry.ReadReportStats
	}
	if o.LoadLogs == nil {
		o.LoadLogs = logtail.Load
	}
	if o.LogWindow == 0 {
		o.LogWindow = config.DefaultLogWindow
	}
	if o.Debounce == 0 {
		o.Debounce = config.DefaultDebounceMS * time.Millisecond
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer("vizzly-monitor")
	}
}

// Engine reconciles registry state with live process and file state and
// publishes immutable snapshots.
type Engine struct {
	opts Options

	tasks     chan func()
	refreshCh chan string
	done      chan struct{}
	closeOnce sync.Once

	// State below is owned by the Run goroutine.
	servers  map[string]registry.TrackedServer
	stats    map[string]*registry.ServerStats
	logs     map[string][]logtail.Entry
	watchers map[string]*serverWatch
	seq      uint64
	passing  bool
	pending  string

	// Published snapshot and subscribers, readable from any goroutine.
	mu     sync.RWMutex
	snap   Snapshot
	subs   map[string]chan Snapshot
	closed bool

	// Action failures keyed by normalized project directory.
	emu     sync.Mutex
	actErrs map[string][]ActionError
}

// New returns an Engine; call Run to start it.
func New(opts Options) *Engine {
	opts.fillDefaults()
	return &Engine{
		opts:      opts,
		tasks:     make(chan func(), 64),
		refreshCh: make(chan string, 1),
		done:      make(chan struct{}),
		servers:   make(map[string]registry.TrackedServer),
		stats:     make(map[string]*registry.ServerStats),
		logs:      make(map[string][]logtail.Entry),
		watchers:  make(map[string]*serverWatch),
		subs:      make(map[string]chan Snapshot),
		actErrs:   make(map[string][]ActionError),
	}
}

// Run starts the owning goroutine and blocks until ctx is canceled. It
// watches the registry directory itself; everything else is event-driven.
// The first reconciliation pass starts immediately.
func (e *Engine) Run(ctx context.Context) error {
	regWatch := e.opts.Watch(e.opts.Dir.RegistryPath(), func() {
		e.Refresh("registry-change")
	})
	defer regWatch.Close()

	e.Refresh("startup")

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return nil
		case fn := <-e.tasks:
			fn()
		case trigger := <-e.refreshCh:
			e.startPass(trigger)
		}
	}
}

// Refresh requests a reconciliation pass. Requests made while one is
// already queued are coalesced into it; Refresh never blocks.
func (e *Engine) Refresh(trigger string) {
	select {
	case e.refreshCh <- trigger:
	default:
	}
}

// post marshals fn onto the owning goroutine. After shutdown it is a no-op.
func (e *Engine) post(fn func()) {
	select {
	case e.tasks <- fn:
	case <-e.done:
	}
}

// Snapshot returns the most recently published snapshot. Before the first
// pass completes, Seq is zero.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// Subscribe registers for snapshot updates. The channel is buffered; a slow
// consumer misses intermediate snapshots rather than stalling the engine.
// The current snapshot, if any, is delivered immediately. The returned
// cancel func is idempotent.
func (e *Engine) Subscribe() (string, <-chan Snapshot, func()) {
	id := uuid.NewString()
	ch := make(chan Snapshot, 8)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		close(ch)
		return id, ch, func() {}
	}
	e.subs[id] = ch
	if e.snap.Seq > 0 {
		ch <- e.snap
	}
	e.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if sub, ok := e.subs[id]; ok {
				delete(e.subs, id)
				close(sub)
			}
		})
	}
	return id, ch, cancel
}

// WaitReady blocks until the first reconciliation pass has published, or
// ctx expires.
func (e *Engine) WaitReady(ctx context.Context) (Snapshot, error) {
	if snap := e.Snapshot(); snap.Seq > 0 {
		return snap, nil
	}
	_, ch, cancel := e.Subscribe()
	defer cancel()
	select {
	case snap, ok := <-ch:
		if ok {
			return snap, nil
		}
		return e.Snapshot(), nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// shutdown runs on the owning goroutine when Run's context ends.
func (e *Engine) shutdown() {
	e.closeOnce.Do(func() { close(e.done) })

	for id, sw := range e.watchers {
		sw.teardown()
		delete(e.watchers, id)
	}

	e.mu.Lock()
	e.closed = true
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
	e.mu.Unlock()

	log.Debug("engine stopped", "servers", len(e.servers))
}
