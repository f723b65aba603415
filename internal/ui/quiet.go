// Package ui provides quiet-mode and terminal detection helpers.
package ui

import (
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// quietMode suppresses decorative output so machine-readable modes emit
// nothing but their payload.
var quietMode bool

// SetQuietMode toggles quiet mode. Commands set it for the duration of
// --json output.
//
// Parameters:
//   - quiet: Whether decorative output should be suppressed
func SetQuietMode(quiet bool) {
	quietMode = quiet
}

// IsQuiet reports whether quiet mode is active.
func IsQuiet() bool {
	return quietMode
}

// InteractiveStdout reports whether stdout is a terminal a human is
// looking at. Piped output and CI runs return false.
func InteractiveStdout() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// TermWidth returns the terminal width in columns, or 80 when stdout is
// not a terminal or the size cannot be determined.
func TermWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
