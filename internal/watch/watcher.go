// Package watch maintains a change-notification stream for a single
// filesystem path, including paths that do not exist yet.
//
// The trick is to always watch the parent directory: structural events
// (create, rename, link) are only visible there, and they are the only way
// to learn that a not-yet-existing file has appeared. A direct watch on the
// target itself is opened whenever the target exists, and dropped again when
// it is removed or renamed so recreation falls back to directory-level
// detection. Callbacks are hints, not diffs; consumers re-read whatever
// state they derive from the path.
package watch

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// PathWatcher watches one path and invokes a callback on every change hint.
// A PathWatcher that failed to initialize is inert: it never fires and its
// Close is a no-op. That is deliberate; losing a watch is non-fatal because
// the engine re-reads authoritative state on other triggers anyway.
type PathWatcher struct {
	target   string
	parent   string
	onChange func()

	fw     *fsnotify.Watcher
	direct bool // direct watch on target currently active

	mu     sync.Mutex
	closed bool
}

// New starts watching target. The callback fires on the watcher's own
// goroutine; it must not block for long and must marshal any state mutation
// onto its owner.
func New(target string, onChange func()) *PathWatcher {
	w := &PathWatcher{
		target:   filepath.Clean(target),
		onChange: onChange,
	}
	w.parent = filepath.Dir(w.target)

	if err := os.MkdirAll(w.parent, 0755); err != nil {
		log.Debug("path watch unavailable", "path", w.target, "error", err)
		return w
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Debug("path watch unavailable", "path", w.target, "error", err)
		return w
	}
	if err := fw.Add(w.parent); err != nil {
		log.Debug("path watch unavailable", "path", w.target, "error", err)
		fw.Close()
		return w
	}
	w.fw = fw

	// The target may already exist at watch start.
	if _, err := os.Lstat(w.target); err == nil {
		if err := fw.Add(w.target); err == nil {
			w.direct = true
		}
	}

	go w.loop()
	return w
}

// Target returns the watched path.
func (w *PathWatcher) Target() string { return w.target }

func (w *PathWatcher) loop() {
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Debug("path watch error", "path", w.target, "error", err)
		}
	}
}

// handle runs on the loop goroutine, which is the only writer of w.direct.
func (w *PathWatcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) == w.target {
		if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
			// Fall back to directory-level detection of recreation. The
			// kernel drops watches on deleted files on its own; Remove just
			// tidies our bookkeeping and its error is uninteresting.
			if w.direct {
				_ = w.fw.Remove(w.target)
				w.direct = false
			}
			w.fire()
			return
		}
		w.ensureDirect()
		w.fire()
		return
	}

	// Directory-level event for some sibling entry. The target may have
	// appeared via a rename we cannot attribute, so re-check, then still
	// fire: callbacks are hints and consumers re-read state.
	w.ensureDirect()
	w.fire()
}

func (w *PathWatcher) ensureDirect() {
	if w.direct {
		return
	}
	if _, err := os.Lstat(w.target); err != nil {
		return
	}
	if err := w.fw.Add(w.target); err == nil {
		w.direct = true
	}
}

func (w *PathWatcher) fire() {
	if w.onChange != nil {
		w.onChange()
	}
}

// Close releases the underlying descriptors. Safe to call multiple times
// and safe on an inert watcher.
func (w *PathWatcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	if w.fw != nil {
		// Closing ends both the parent and direct watches and closes the
		// event channels, which terminates the loop goroutine.
		_ = w.fw.Close()
	}
}
