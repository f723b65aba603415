//go:build !windows

package proc

import (
	"errors"
	"syscall"
)

// alive probes pid with signal 0. ESRCH means the process is gone. EPERM
// means it exists but belongs to another user, which still counts as alive.
// Anything else unexpected is treated as dead so a stale entry cannot stay
// in the published set forever.
func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, syscall.Signal(0))
	if err == nil {
		return true
	}
	if errors.Is(err, syscall.EPERM) {
		return true
	}
	return false
}
