//go:build !windows

package notify

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/vizzly-testing/monitor/internal/config"
)

// Listener owns the monitor's refresh socket and signal registration.
type Listener struct {
	conn  *net.UnixConn
	path  string
	sigCh chan os.Signal
	done  chan struct{}
}

// Listen binds the refresh socket and registers for SIGUSR1. Each incoming
// datagram or signal invokes onRefresh with a short trigger label; the
// callback may be invoked from any goroutine.
//
// A socket file left behind by a crashed monitor is removed; a socket with
// a live monitor behind it is an error, since two monitors would fight
// over it.
func Listen(dir config.Dir, onRefresh func(trigger string)) (*Listener, error) {
	path := dir.SocketPath()
	if err := clearStaleSocket(path); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(string(dir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create vizzly directory: %w", err)
	}

	addr, err := net.ResolveUnixAddr("unixgram", path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve socket address: %w", err)
	}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind refresh socket: %w", err)
	}

	l := &Listener{
		conn:  conn,
		path:  path,
		sigCh: make(chan os.Signal, 1),
		done:  make(chan struct{}),
	}

	go l.readLoop(onRefresh)

	signal.Notify(l.sigCh, syscall.SIGUSR1)
	go func() {
		for {
			select {
			case <-l.sigCh:
				onRefresh("sigusr1")
			case <-l.done:
				return
			}
		}
	}()

	log.Debug("refresh socket listening", "path", path)
	return l, nil
}

func (l *Listener) readLoop(onRefresh func(string)) {
	buf := make([]byte, 256)
	for {
		n, _, err := l.conn.ReadFromUnix(buf)
		if err != nil {
			// Closed during shutdown, or something went badly enough that
			// retrying would spin. The watcher path still works either way.
			select {
			case <-l.done:
			default:
				log.Debug("refresh socket read failed", "error", err)
			}
			return
		}
		trigger := strings.TrimSpace(string(buf[:n]))
		if trigger == "" {
			trigger = DefaultTrigger
		}
		onRefresh(trigger)
	}
}

// Close unregisters the signal handler, closes the socket, and removes the
// socket file. Safe to call once.
func (l *Listener) Close() error {
	close(l.done)
	signal.Stop(l.sigCh)
	err := l.conn.Close()
	if rmErr := os.Remove(l.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}

// clearStaleSocket removes a leftover socket file, but refuses to steal one
// that a live listener is still bound to. Probing a datagram socket is a
// connect: refused means nobody is home.
func clearStaleSocket(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat socket: %w", err)
	}

	probe, err := net.Dial("unixgram", path)
	if err == nil {
		probe.Close()
		return fmt.Errorf("another monitor is already listening on %s", path)
	}
	if !errors.Is(err, syscall.ECONNREFUSED) && !errors.Is(err, syscall.ENOENT) {
		// Unexpected probe failure; removing anyway risks killing a live
		// listener, so surface it instead.
		return fmt.Errorf("failed to probe existing socket: %w", err)
	}

	log.Debug("removing stale refresh socket", "path", path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}
	return nil
}

// Emit sends one refresh datagram to a running monitor. Nobody listening
// is not an error worth surfacing to users; callers treat the returned
// error as diagnostic.
func Emit(dir config.Dir, trigger string) error {
	if trigger == "" {
		trigger = DefaultTrigger
	}
	conn, err := net.Dial("unixgram", dir.SocketPath())
	if err != nil {
		return fmt.Errorf("no monitor listening: %w", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(trigger)); err != nil {
		return fmt.Errorf("failed to send refresh: %w", err)
	}
	return nil
}
