// Package ui provides message printing utilities.
package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/vizzly-testing/monitor/internal/logtail"
	"github.com/vizzly-testing/monitor/internal/status"
)

// Println prints an empty line.
func Println() {
	if quietMode {
		return
	}
	fmt.Println()
}

// PrintSuccess prints a success message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintSuccess(format string, args ...interface{}) {
	if quietMode {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Println(SuccessStyle.Render("✓ " + msg))
}

// PrintError prints an error message. Errors print even in quiet mode.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(ErrorStyle.Render("✗ " + msg))
}

// PrintWarning prints a warning message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintWarning(format string, args ...interface{}) {
	if quietMode {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Println(WarningStyle.Render("⚠ " + msg))
}

// PrintInfo prints an informational message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintInfo(format string, args ...interface{}) {
	if quietMode {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Println(InfoStyle.Render(msg))
}

// PrintDim prints a dimmed message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintDim(format string, args ...interface{}) {
	if quietMode {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Println(DimStyle.Render(msg))
}

// PrintLink prints a labeled link.
//
// Parameters:
//   - label: The link label
//   - url: The URL
func PrintLink(label, url string) {
	if quietMode {
		return
	}
	fmt.Printf("%s %s\n", DimStyle.Render(label+":"), LinkStyle.Render(url))
}

// PrintBox prints content in a styled box.
//
// Parameters:
//   - title: Box title
//   - content: Box content
func PrintBox(title, content string) {
	if quietMode {
		return
	}
	titleStyled := BoxTitleStyle.Render(title)
	box := BoxStyle.Render(titleStyled + "\n" + content)
	fmt.Println(box)
}

// StateIcon returns the styled icon for a server state.
//
// Parameters:
//   - state: The server's display state
//
// Returns:
//   - string: The styled icon string
func StateIcon(state status.ServerState) string {
	icon := status.Icon(state)
	switch status.Category(state) {
	case "success":
		return StateSuccessStyle.Render(icon)
	case "warning":
		return StateWarningStyle.Render(icon)
	case "error":
		return StateErrorStyle.Render(icon)
	default:
		return StateDimStyle.Render(icon)
	}
}

// StateLabel returns the styled state name for a server state.
//
// Parameters:
//   - state: The server's display state
//
// Returns:
//   - string: The styled state name
func StateLabel(state status.ServerState) string {
	label := string(state)
	switch status.Category(state) {
	case "success":
		return StateSuccessStyle.Render(label)
	case "warning":
		return StateWarningStyle.Render(label)
	case "error":
		return StateErrorStyle.Render(label)
	default:
		return StateDimStyle.Render(label)
	}
}

// RenderLogLine formats one tailed log line for terminal display.
//
// Parameters:
//   - entry: The parsed log entry
//
// Returns:
//   - string: The styled line, timestamp first when present
func RenderLogLine(entry logtail.Entry) string {
	var style = LogInfoStyle
	switch entry.Level {
	case logtail.LevelError:
		style = LogErrorStyle
	case logtail.LevelWarn:
		style = LogWarnStyle
	case logtail.LevelDebug:
		style = LogDebugStyle
	}

	var parts []string
	if entry.Timestamp != nil {
		parts = append(parts, DimStyle.Render(entry.Timestamp.Format("15:04:05")))
	}
	parts = append(parts, style.Render(fmt.Sprintf("%-7s", strings.ToUpper(string(entry.Level)))))
	parts = append(parts, entry.Message)
	line := strings.Join(parts, " ")
	if entry.Details != "" {
		line += "\n" + DimStyle.Render("        "+entry.Details)
	}
	return line
}

// OpenBrowser opens a URL in the default browser.
//
// Parameters:
//   - url: The URL to open
//
// Returns:
//   - error: Any error that occurred
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
