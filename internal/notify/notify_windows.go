//go:build windows

package notify

import (
	"errors"

	"github.com/vizzly-testing/monitor/internal/config"
)

// Listener is inert on Windows; refreshes arrive via filesystem events
// only.
type Listener struct{}

// Listen is a no-op on Windows.
func Listen(_ config.Dir, _ func(trigger string)) (*Listener, error) {
	return &Listener{}, nil
}

// Close is a no-op on Windows.
func (l *Listener) Close() error { return nil }

// Emit is unsupported on Windows.
func Emit(_ config.Dir, _ string) error {
	return errors.New("refresh socket not supported on windows")
}
