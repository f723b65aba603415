// Package ui provides the ASCII banner for the monitor.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// banner is the ASCII art logo.
const banner = `
  ██╗   ██╗██╗███████╗███████╗██╗     ██╗   ██╗
  ██║   ██║██║╚══███╔╝╚══███╔╝██║     ╚██╗ ██╔╝
  ██║   ██║██║  ███╔╝   ███╔╝ ██║      ╚████╔╝
  ╚██╗ ██╔╝██║ ███╔╝   ███╔╝  ██║       ╚██╔╝
   ╚████╔╝ ██║███████╗███████╗███████╗   ██║
    ╚═══╝  ╚═╝╚══════╝╚══════╝╚══════╝   ╚═╝`

// tagline is the product tagline.
const tagline = "Screenshot testing at the speed of TDD"

// PrintBanner prints the Vizzly banner with version info.
//
// Parameters:
//   - version: The monitor version string to display
func PrintBanner(version string) {
	if quietMode {
		return
	}

	styledBanner := lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true).
		Render(banner)

	fmt.Println(styledBanner)
	fmt.Println()

	taglineStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		PaddingLeft(2)
	fmt.Println(taglineStyle.Render(tagline))
	fmt.Println()

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		PaddingLeft(2)

	fmt.Println(infoStyle.Render(fmt.Sprintf("Version: %s", version)))
	fmt.Println(infoStyle.Render("Docs:    https://vizzly.dev/docs"))
	fmt.Println()
}

// GetCondensedHelp returns a compact cheat-sheet for the common monitor
// journey. Shown when the user runs `vizzly-monitor` with no arguments in
// a non-interactive terminal. No ASCII banner, no Cobra auto-generated
// command list -- just the essentials.
func GetCondensedHelp() string {
	violet := lipgloss.NewStyle().Foreground(Violet).Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	return fmt.Sprintf(`%s

%s
  %s                     See every tracked TDD server
  %s                      Live terminal dashboard
  %s         Start a server in a project
  %s          Stop a server

%s
  %s       Tail a server's log file
  %s                      Serve snapshots over HTTP/WebSocket
  %s                     Check the monitor's own setup

%s
  %s                     Machine-readable CLI schema for LLM agents
  %s                  Start MCP server for AI integration

%s  https://vizzly.dev/docs

%s
`,
		violet.Render("Vizzly Monitor")+" - "+dim.Render(tagline),
		violet.Render("Getting Started:"),
		violet.Render("vizzly-monitor status"),
		violet.Render("vizzly-monitor watch"),
		violet.Render("vizzly-monitor start [dir]"),
		violet.Render("vizzly-monitor stop <server>"),
		violet.Render("Manage:"),
		violet.Render("vizzly-monitor logs <server>"),
		violet.Render("vizzly-monitor serve"),
		violet.Render("vizzly-monitor doctor"),
		violet.Render("AI/Tooling:"),
		violet.Render("vizzly-monitor schema"),
		violet.Render("vizzly-monitor mcp serve"),
		violet.Render("Docs: "),
		hint.Render(`Use "vizzly-monitor --help" for a full list of commands.`),
	)
}
