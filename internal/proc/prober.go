// Package proc answers two questions about processes the monitor does not
// own: is this pid still alive, and what directory is it running in.
//
// Both are best-effort probes against the OS process table. Liveness is
// deliberately fail-safe: a process we are not allowed to signal is reported
// alive, because a permission error proves the pid exists.
package proc

// Prober reports whether a pid corresponds to a running process.
//
// The engine filters registry entries through a Prober on every
// reconciliation pass; tests substitute a fake backed by a map.
type Prober interface {
	Alive(pid int) bool
}

// SignalProber probes the real OS process table with a zero-effect signal.
type SignalProber struct{}

// Alive reports whether pid is a running process.
func (SignalProber) Alive(pid int) bool {
	return alive(pid)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(pid int) bool

// Alive calls f(pid).
func (f ProberFunc) Alive(pid int) bool { return f(pid) }
