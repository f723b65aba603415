// Package schema provides CLI schema generation.
//
// This package generates machine-readable schema documentation for the
// monitor CLI, enabling LLMs and other tools to understand how to drive
// vizzly TDD servers through it.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// CLISchema represents the complete CLI schema.
type CLISchema struct {
	Name        string        `json:"name"`
	Version     string        `json:"version"`
	Description string        `json:"description"`
	Commands    []CommandInfo `json:"commands"`
	GlobalFlags []FlagInfo    `json:"global_flags"`
	Workflows   []Workflow    `json:"workflows"`
}

// CommandInfo represents a CLI command.
type CommandInfo struct {
	Path        string        `json:"path"`
	Short       string        `json:"short"`
	Long        string        `json:"long,omitempty"`
	Usage       string        `json:"usage"`
	Examples    []string      `json:"examples,omitempty"`
	Flags       []FlagInfo    `json:"flags,omitempty"`
	Subcommands []CommandInfo `json:"subcommands,omitempty"`
}

// FlagInfo represents a CLI flag.
type FlagInfo struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description"`
}

// Workflow represents a common CLI workflow.
type Workflow struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Steps       []string `json:"steps"`
}

// GetCLISchema generates the CLI schema from a root Cobra command.
//
// Parameters:
//   - rootCmd: The root Cobra command
//   - version: Monitor version string
//
// Returns:
//   - *CLISchema: The generated CLI schema
func GetCLISchema(rootCmd *cobra.Command, version string) *CLISchema {
	schema := &CLISchema{
		Name:        "vizzly-monitor",
		Version:     version,
		Description: "Local control plane for vizzly TDD servers. Tracks, starts, stops, and streams every screenshot-testing server on this machine.",
		Commands:    extractCommands(rootCmd, ""),
		GlobalFlags: extractFlags(rootCmd.PersistentFlags()),
		Workflows:   getCommonWorkflows(),
	}
	return schema
}

// extractCommands recursively extracts command information.
func extractCommands(cmd *cobra.Command, parentPath string) []CommandInfo {
	var commands []CommandInfo

	for _, subCmd := range cmd.Commands() {
		// Skip help and completion commands
		if subCmd.Name() == "help" || subCmd.Name() == "completion" {
			continue
		}

		path := subCmd.Name()
		if parentPath != "" {
			path = parentPath + " " + subCmd.Name()
		}

		info := CommandInfo{
			Path:     path,
			Short:    subCmd.Short,
			Long:     subCmd.Long,
			Usage:    subCmd.UseLine(),
			Examples: extractExamples(subCmd.Example),
			Flags:    extractFlags(subCmd.LocalFlags()),
		}

		// Recursively get subcommands
		if subCmd.HasSubCommands() {
			info.Subcommands = extractCommands(subCmd, path)
		}

		commands = append(commands, info)
	}

	return commands
}

// extractFlags extracts flag information from a FlagSet.
func extractFlags(flags *pflag.FlagSet) []FlagInfo {
	var flagInfos []FlagInfo

	flags.VisitAll(func(f *pflag.Flag) {
		// Skip hidden flags
		if f.Hidden {
			return
		}

		info := FlagInfo{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Type:        f.Value.Type(),
			Default:     f.DefValue,
			Description: f.Usage,
		}
		flagInfos = append(flagInfos, info)
	})

	return flagInfos
}

// extractExamples parses the Example field into individual examples.
func extractExamples(example string) []string {
	if example == "" {
		return nil
	}

	var examples []string
	lines := strings.Split(example, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			examples = append(examples, line)
		}
	}
	return examples
}

// getCommonWorkflows returns common monitor workflows.
func getCommonWorkflows() []Workflow {
	return []Workflow{
		{
			Name:        "See what's running (do this first!)",
			Description: "List every tracked TDD server with its test results",
			Steps: []string{
				"vizzly-monitor status",
				"# Machine-readable:",
				"vizzly-monitor status --json",
			},
		},
		{
			Name:        "Start a TDD server in a project",
			Description: "Launch the vizzly CLI in a project directory and watch it appear",
			Steps: []string{
				"vizzly-monitor start ~/code/my-app",
				"# On a specific port:",
				"vizzly-monitor start ~/code/my-app --port 3002",
				"vizzly-monitor status",
			},
		},
		{
			Name:        "Stop a server",
			Description: "Stop by name, port, id, or directory",
			Steps: []string{
				"vizzly-monitor stop my-app",
				"# By port:",
				"vizzly-monitor stop 3001",
			},
		},
		{
			Name:        "Inspect one server",
			Description: "Details plus recent log lines for a single server",
			Steps: []string{
				"vizzly-monitor status my-app",
				"vizzly-monitor logs my-app",
				"# Keep following the log:",
				"vizzly-monitor logs my-app --follow",
			},
		},
		{
			Name:        "Live dashboard",
			Description: "Full-screen terminal dashboard over every server",
			Steps: []string{
				"vizzly-monitor watch",
				"# Attach to an already-running monitor instead of watching files:",
				"vizzly-monitor watch --attach",
			},
		},
		{
			Name:        "Share one monitor between tools",
			Description: "Serve snapshots over HTTP/WebSocket for editors and scripts",
			Steps: []string{
				"vizzly-monitor serve",
				"# Then from anywhere on the machine:",
				"curl http://127.0.0.1:47621/api/status",
			},
		},
		{
			Name:        "CI or scripting",
			Description: "Exit codes and JSON for automation",
			Steps: []string{
				"vizzly-monitor status --json",
				"# Exit non-zero when any server has failing tests:",
				"vizzly-monitor status --check",
			},
		},
		{
			Name:        "Troubleshoot the monitor itself",
			Description: "Verify config, CLI resolution, and data files",
			Steps: []string{
				"vizzly-monitor doctor",
			},
		},
		{
			Name:        "Name a project",
			Description: "Override the display name used for a project directory",
			Steps: []string{
				"vizzly-monitor name ~/code/my-app \"Shop Frontend\"",
			},
		},
		{
			Name:        "MCP server for AI agents",
			Description: "Start MCP server for AI integration",
			Steps: []string{
				"vizzly-monitor mcp serve",
			},
		},
	}
}

// ToJSON converts the schema to JSON.
//
// Parameters:
//   - schema: The CLI schema to convert
//   - indent: Whether to indent the output
//
// Returns:
//   - string: JSON representation
//   - error: Any encoding error
func ToJSON(schema *CLISchema, indent bool) (string, error) {
	var data []byte
	var err error

	if indent {
		data, err = json.MarshalIndent(schema, "", "  ")
	} else {
		data, err = json.Marshal(schema)
	}

	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}
	return string(data), nil
}

// ToMarkdown converts the schema to Markdown documentation.
//
// Parameters:
//   - schema: The CLI schema to convert
//
// Returns:
//   - string: Markdown documentation
func ToMarkdown(schema *CLISchema) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s CLI Reference\n\n", schema.Name))
	sb.WriteString(fmt.Sprintf("**Version:** %s\n\n", schema.Version))
	sb.WriteString(fmt.Sprintf("%s\n\n", schema.Description))

	// Global flags
	sb.WriteString("## Global Flags\n\n")
	sb.WriteString("| Flag | Type | Default | Description |\n")
	sb.WriteString("|------|------|---------|-------------|\n")
	for _, f := range schema.GlobalFlags {
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", " + name
		}
		sb.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s |\n", name, f.Type, f.Default, f.Description))
	}
	sb.WriteString("\n")

	// Commands
	sb.WriteString("## Commands\n\n")
	for _, cmd := range schema.Commands {
		writeCommandMarkdown(&sb, cmd, 3)
	}

	// Workflows
	sb.WriteString("## Common Workflows\n\n")
	for _, w := range schema.Workflows {
		sb.WriteString(fmt.Sprintf("### %s\n\n", w.Name))
		if w.Description != "" {
			sb.WriteString(fmt.Sprintf("%s\n\n", w.Description))
		}
		sb.WriteString("```bash\n")
		for _, step := range w.Steps {
			sb.WriteString(step + "\n")
		}
		sb.WriteString("```\n\n")
	}

	return sb.String()
}

// writeCommandMarkdown writes a command to markdown.
func writeCommandMarkdown(sb *strings.Builder, cmd CommandInfo, level int) {
	heading := strings.Repeat("#", level)
	sb.WriteString(fmt.Sprintf("%s `%s`\n\n", heading, cmd.Path))
	sb.WriteString(fmt.Sprintf("%s\n\n", cmd.Short))

	if cmd.Long != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", cmd.Long))
	}

	sb.WriteString(fmt.Sprintf("**Usage:** `%s`\n\n", cmd.Usage))

	if len(cmd.Flags) > 0 {
		sb.WriteString("**Flags:**\n\n")
		sb.WriteString("| Flag | Type | Default | Description |\n")
		sb.WriteString("|------|------|---------|-------------|\n")
		for _, f := range cmd.Flags {
			name := "--" + f.Name
			if f.Shorthand != "" {
				name = "-" + f.Shorthand + ", " + name
			}
			sb.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s |\n", name, f.Type, f.Default, f.Description))
		}
		sb.WriteString("\n")
	}

	if len(cmd.Examples) > 0 {
		sb.WriteString("**Examples:**\n\n```bash\n")
		for _, ex := range cmd.Examples {
			sb.WriteString(ex + "\n")
		}
		sb.WriteString("```\n\n")
	}

	// Subcommands
	for _, sub := range cmd.Subcommands {
		writeCommandMarkdown(sb, sub, level+1)
	}
}

// ToLLMFormat converts the schema to an LLM-optimized single-file format.
//
// Parameters:
//   - schema: The CLI schema to convert
//   - fileSchema: The data-file schema documentation to append
//
// Returns:
//   - string: LLM-optimized documentation
func ToLLMFormat(schema *CLISchema, fileSchema string) string {
	var sb strings.Builder

	sb.WriteString("# Vizzly Monitor - Complete Reference for LLMs\n\n")
	sb.WriteString("This document contains everything needed to inspect and control local vizzly TDD servers through the monitor.\n\n")

	// Key Concepts section - critical for understanding
	sb.WriteString("## Key Concepts (Important!)\n\n")

	sb.WriteString("### Servers vs Projects\n\n")
	sb.WriteString("- A **TDD server** is one `vizzly tdd start` process bound to a port, running screenshot tests for one project directory\n")
	sb.WriteString("- The monitor does NOT run tests itself; it observes and controls servers started by the vizzly CLI\n")
	sb.WriteString("- Every command that takes a `<server>` accepts an id, a port number, a project name, or a directory path\n\n")

	sb.WriteString("### Where state lives\n\n")
	sb.WriteString("- `~/.vizzly/servers.json` - the registry of running servers (source of truth)\n")
	sb.WriteString("- `<project>/.vizzly/report-data.json` - latest test results per project\n")
	sb.WriteString("- `<project>/.vizzly/server.log` - the server's log file\n")
	sb.WriteString("- The monitor merges these and drops entries whose process is no longer alive\n\n")

	// Common Mistakes section - prevent errors
	sb.WriteString("## Common Mistakes (Don't Do This!)\n\n")
	sb.WriteString("| Wrong | Correct | Why |\n")
	sb.WriteString("|-------|---------|-----|\n")
	sb.WriteString("| `vizzly-monitor start` expecting tests to run | `vizzly-monitor start <dir>` then check `status` | start launches a server; tests run inside it |\n")
	sb.WriteString("| `vizzly-monitor stop` with no argument in scripts | `vizzly-monitor stop <server>` | bare stop prompts before stopping everything |\n")
	sb.WriteString("| Editing `~/.vizzly/servers.json` by hand | Use `start` / `stop` | The vizzly CLI owns the registry |\n")
	sb.WriteString("| Parsing the human table output | Use `--json` | Table layout is not a stable interface |\n\n")

	// Quick reference
	sb.WriteString("## Quick Reference\n\n")
	sb.WriteString("```\n")
	sb.WriteString("vizzly-monitor status             # List all tracked servers\n")
	sb.WriteString("vizzly-monitor status <server>    # Detail view for one server\n")
	sb.WriteString("vizzly-monitor status --json      # Machine-readable snapshot\n")
	sb.WriteString("vizzly-monitor status --check     # Exit 1 when any tests fail\n")
	sb.WriteString("vizzly-monitor start [dir]        # Start a TDD server\n")
	sb.WriteString("vizzly-monitor start [dir] --port 3002\n")
	sb.WriteString("vizzly-monitor stop <server>      # Stop a server\n")
	sb.WriteString("vizzly-monitor logs <server>      # Recent log lines\n")
	sb.WriteString("vizzly-monitor logs <server> -f   # Follow the log\n")
	sb.WriteString("vizzly-monitor watch              # Live terminal dashboard\n")
	sb.WriteString("vizzly-monitor serve              # HTTP/WebSocket snapshot feed\n")
	sb.WriteString("vizzly-monitor doctor             # Check the monitor's own setup\n")
	sb.WriteString("vizzly-monitor schema             # Get this schema\n")
	sb.WriteString("```\n\n")

	// JSON output note
	sb.WriteString("## JSON Output\n\n")
	sb.WriteString("`status --json` emits one JSON object: `servers` (array), `stats` (by server id), `states` (by server id: running/degraded/failing/stale/waiting), `anyFailures`, `allHealthy`.\n")
	sb.WriteString("The same shape is served at `http://127.0.0.1:47621/api/status` when `serve` is running.\n\n")

	// CLI Commands section
	sb.WriteString("## CLI Commands\n\n")
	for _, cmd := range schema.Commands {
		writeLLMCommand(&sb, cmd)
	}

	// Data file schema section
	sb.WriteString("---\n\n")
	sb.WriteString(fileSchema)

	return sb.String()
}

// writeLLMCommand writes a command in LLM-friendly format.
func writeLLMCommand(sb *strings.Builder, cmd CommandInfo) {
	sb.WriteString(fmt.Sprintf("### %s\n\n", cmd.Path))
	sb.WriteString(fmt.Sprintf("%s\n\n", cmd.Short))

	if cmd.Long != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", cmd.Long))
	}

	if len(cmd.Flags) > 0 {
		sb.WriteString("Flags:\n")
		for _, f := range cmd.Flags {
			name := "--" + f.Name
			if f.Shorthand != "" {
				name = "-" + f.Shorthand + "/" + name
			}
			sb.WriteString(fmt.Sprintf("  %s (%s): %s\n", name, f.Type, f.Description))
		}
		sb.WriteString("\n")
	}

	if len(cmd.Examples) > 0 {
		sb.WriteString("Examples:\n")
		for _, ex := range cmd.Examples {
			sb.WriteString(fmt.Sprintf("  %s\n", ex))
		}
		sb.WriteString("\n")
	}

	// Subcommands
	for _, sub := range cmd.Subcommands {
		writeLLMCommand(sb, sub)
	}
}
