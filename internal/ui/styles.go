// Package ui provides terminal output components using Charm libraries.
//
// This package contains the styling and rendering helpers for the monitor's
// human-facing output. Machine-facing modes (--json, MCP) bypass it
// entirely.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Brand colors for Vizzly.
var (
	// Primary brand color - Vizzly violet
	Violet = lipgloss.Color("#7C5CFF")

	// Secondary colors
	Teal    = lipgloss.Color("#14B8A6")
	Red     = lipgloss.Color("#EF4444")
	Amber   = lipgloss.Color("#F59E0B")
	Green   = lipgloss.Color("#22C55E")
	Gray    = lipgloss.Color("#6B7280")
	DimGray = lipgloss.Color("#9CA3AF")

	// Background colors
	DarkBg = lipgloss.Color("#1F2937")
)

// Text styles.
var (
	// TitleStyle for main headings
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Violet)

	// SubtitleStyle for secondary headings
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	// SuccessStyle for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	// ErrorStyle for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	// WarningStyle for warning messages
	WarningStyle = lipgloss.NewStyle().
			Foreground(Amber)

	// InfoStyle for informational messages
	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB"))

	// DimStyle for less important text
	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	// AccentStyle for interactive affordances like prompt numbers
	AccentStyle = lipgloss.NewStyle().
			Foreground(Teal)

	// LinkStyle for URLs
	LinkStyle = lipgloss.NewStyle().
			Foreground(Violet).
			Underline(true)

	// CodeStyle for inline code
	CodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F3F4F6")).
			Background(lipgloss.Color("#374151")).
			Padding(0, 1)
)

// Box styles.
var (
	// BoxStyle for content boxes
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Violet).
			Padding(0, 1)

	// BoxTitleStyle for box titles
	BoxTitleStyle = lipgloss.NewStyle().
			Foreground(Violet).
			Bold(true)

	// HealthyBoxStyle for servers whose tests are green
	HealthyBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Green).
			Padding(0, 1)

	// FailingBoxStyle for servers with failing tests
	FailingBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Red).
			Padding(0, 1)
)

// Table styles.
var (
	// TableHeaderStyle for table headers
	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(DimGray).
				Bold(true)

	// TableCellStyle for table cells
	TableCellStyle = lipgloss.NewStyle()
)

// Server state styles, keyed by the status package's categories.
var (
	// StateSuccessStyle for running servers
	StateSuccessStyle = lipgloss.NewStyle().
				Foreground(Green)

	// StateWarningStyle for degraded and stale servers
	StateWarningStyle = lipgloss.NewStyle().
				Foreground(Amber)

	// StateErrorStyle for failing servers
	StateErrorStyle = lipgloss.NewStyle().
				Foreground(Red)

	// StateDimStyle for servers still waiting on results
	StateDimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	// StateRunningStyle for the spinner while an action is in flight
	StateRunningStyle = lipgloss.NewStyle().
				Foreground(Teal)
)

// Log level styles for rendered log lines.
var (
	LogErrorStyle = lipgloss.NewStyle().Foreground(Red)
	LogWarnStyle  = lipgloss.NewStyle().Foreground(Amber)
	LogInfoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB"))
	LogDebugStyle = lipgloss.NewStyle().Foreground(DimGray)
)
