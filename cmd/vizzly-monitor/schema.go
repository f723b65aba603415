// Package main provides the schema command for CLI introspection.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vizzly-testing/monitor/internal/schema"
)

var schemaFormat string

// schemaCmd outputs CLI schema for LLM/tooling integration.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Output CLI schema for LLM/tooling integration",
	Long: `Output a machine-readable schema of all CLI commands.

This command introspects the CLI and outputs structured documentation
that LLMs and other tools can use to understand how to use the monitor.

FORMATS:
  json     - Full JSON schema with commands, flags, examples (default)
  markdown - Markdown documentation suitable for docs sites
  llm      - Single-file format optimized for LLM context windows

The schema includes:
  - All CLI commands with their flags and examples
  - Common monitoring workflows
  - The data-file formats the monitor reads (servers.json, report-data.json, ...)

EXAMPLES:
  vizzly-monitor schema                    # JSON to stdout
  vizzly-monitor schema --format markdown  # Markdown docs
  vizzly-monitor schema --format llm       # LLM-optimized single file
  vizzly-monitor schema > schema.json      # Save to file`,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVar(&schemaFormat, "format", "json", "Output format: json, markdown, llm")
}

// runSchema generates and outputs the CLI schema.
func runSchema(cmd *cobra.Command, args []string) error {
	cliSchema := schema.GetCLISchema(cmd.Root(), version)

	switch schemaFormat {
	case "json":
		output := map[string]interface{}{
			"cli_schema":       cliSchema,
			"data_file_schema": schema.DataFileSchema,
		}
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}
		fmt.Println(string(data))

	case "markdown":
		fmt.Println(schema.ToMarkdown(cliSchema))
		fmt.Println("---")
		fmt.Println()
		fmt.Println(schema.DataFileSchema)

	case "llm":
		fmt.Println(schema.ToLLMFormat(cliSchema, schema.DataFileSchema))

	default:
		return fmt.Errorf("unknown format '%s': must be json, markdown, or llm", schemaFormat)
	}

	return nil
}
