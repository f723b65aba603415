//go:build !windows

package notify

import (
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/vizzly-testing/monitor/internal/config"
)

func collectTriggers(t *testing.T) (config.Dir, *Listener, chan string) {
	t.Helper()
	dir := config.Dir(t.TempDir())
	triggers := make(chan string, 8)
	l, err := Listen(dir, func(trigger string) { triggers <- trigger })
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return dir, l, triggers
}

func awaitTrigger(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case trigger := <-ch:
		return trigger
	case <-time.After(3 * time.Second):
		t.Fatal("no trigger received")
		return ""
	}
}

func TestEmitReachesListener(t *testing.T) {
	dir, _, triggers := collectTriggers(t)

	if err := Emit(dir, "action"); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if got := awaitTrigger(t, triggers); got != "action" {
		t.Errorf("trigger = %q, want action", got)
	}

	// Empty payloads still count as a refresh request.
	if err := Emit(dir, ""); err != nil {
		t.Fatalf("Emit empty: %v", err)
	}
	if got := awaitTrigger(t, triggers); got != DefaultTrigger {
		t.Errorf("trigger = %q, want %q", got, DefaultTrigger)
	}
}

func TestSigusr1TriggersRefresh(t *testing.T) {
	_, _, triggers := collectTriggers(t)

	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("kill: %v", err)
	}
	if got := awaitTrigger(t, triggers); got != "sigusr1" {
		t.Errorf("trigger = %q, want sigusr1", got)
	}
}

func TestEmitWithoutListener(t *testing.T) {
	dir := config.Dir(t.TempDir())
	if err := Emit(dir, "ping"); err == nil {
		t.Error("Emit with no listener should report an error")
	}
}

func TestListenCleansStaleSocket(t *testing.T) {
	dir := config.Dir(t.TempDir())

	// A crashed monitor leaves the file bound to nothing.
	addr, err := net.ResolveUnixAddr("unixgram", dir.SocketPath())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		t.Fatalf("pre-bind: %v", err)
	}
	conn.Close() // closes the descriptor but leaves the file behind

	if _, err := os.Stat(dir.SocketPath()); err != nil {
		t.Skipf("platform removed socket file on close: %v", err)
	}

	l, err := Listen(dir, func(string) {})
	if err != nil {
		t.Fatalf("Listen over stale socket: %v", err)
	}
	l.Close()
}

func TestListenRefusesLiveSocket(t *testing.T) {
	dir, _, _ := collectTriggers(t)

	if _, err := Listen(dir, func(string) {}); err == nil {
		t.Error("second Listen on a live socket should fail")
	}
}

func TestCloseRemovesSocketFile(t *testing.T) {
	dir := config.Dir(t.TempDir())
	l, err := Listen(dir, func(string) {})
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(dir.SocketPath()); !os.IsNotExist(err) {
		t.Errorf("socket file still present after Close: %v", err)
	}
}
