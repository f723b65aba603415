//go:build darwin

package proc

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Cwd resolves the working directory of a running process.
//
// macOS has no procfs, so this shells out to lsof and reads the cwd
// descriptor from its field output (lines prefixed with 'n' carry names).
func Cwd(pid int) (string, error) {
	if pid <= 0 {
		return "", fmt.Errorf("invalid pid %d", pid)
	}
	out, err := exec.Command("lsof", "-a", "-p", strconv.Itoa(pid), "-d", "cwd", "-F", "n").Output()
	if err != nil {
		return "", fmt.Errorf("failed to resolve cwd of pid %d: %w", pid, err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		if len(line) > 1 && line[0] == 'n' {
			return line[1:], nil
		}
	}
	return "", fmt.Errorf("no cwd descriptor reported for pid %d", pid)
}
