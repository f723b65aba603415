//go:build windows

package proc

import (
	"os"
	"syscall"
)

// alive checks whether pid is running on Windows.
func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Windows, FindProcess always succeeds. Signal(0) checks liveness.
	return p.Signal(syscall.Signal(0)) == nil
}
