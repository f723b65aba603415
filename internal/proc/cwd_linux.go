//go:build linux

package proc

import (
	"fmt"
	"os"
)

// Cwd resolves the working directory of a running process via procfs.
func Cwd(pid int) (string, error) {
	if pid <= 0 {
		return "", fmt.Errorf("invalid pid %d", pid)
	}
	cwd, err := os.Readlink(fmt.Sprintf("/proc/%d/cwd", pid))
	if err != nil {
		return "", fmt.Errorf("failed to resolve cwd of pid %d: %w", pid, err)
	}
	return cwd, nil
}
