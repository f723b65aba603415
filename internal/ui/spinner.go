// Package ui provides the inline spinner for short waits.
package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinnerMu     sync.Mutex
	spinnerStop   chan struct{}
	spinnerActive bool
)

// StartSpinner starts an animated spinner with a message. No-op in quiet
// mode.
//
// Parameters:
//   - message: The message to display next to the spinner
func StartSpinner(message string) {
	spinnerMu.Lock()
	defer spinnerMu.Unlock()

	if spinnerActive || quietMode {
		return
	}

	spinnerActive = true
	spinnerStop = make(chan struct{})

	go func() {
		i := 0
		for {
			select {
			case <-spinnerStop:
				// Clear the spinner line
				fmt.Printf("\r%s\r", strings.Repeat(" ", len(message)+4))
				return
			default:
				frame := spinnerFrames[i%len(spinnerFrames)]
				styledFrame := StateRunningStyle.Render(frame)
				fmt.Printf("\r%s %s", styledFrame, message)
				i++
				time.Sleep(80 * time.Millisecond)
			}
		}
	}()
}

// StopSpinner stops the current spinner.
func StopSpinner() {
	spinnerMu.Lock()
	defer spinnerMu.Unlock()

	if !spinnerActive {
		return
	}

	close(spinnerStop)
	spinnerActive = false
	time.Sleep(100 * time.Millisecond) // Allow cleanup
}
