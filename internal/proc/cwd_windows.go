//go:build windows

package proc

import "fmt"

// Cwd is not supported on Windows; callers fall back to the home directory.
func Cwd(pid int) (string, error) {
	return "", fmt.Errorf("cwd resolution not supported on windows (pid %d)", pid)
}
