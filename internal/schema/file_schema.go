// Package schema provides CLI and data-file schema generation.
package schema

// DataFileSchema documents the on-disk formats the monitor reads and
// writes. This is embedded in the schema output so LLMs can interpret the
// files directly when the monitor is not running.
const DataFileSchema = `# Vizzly Data Files - LLM Reference

## Purpose
This document describes the files under ~/.vizzly/ and <project>/.vizzly/ that the monitor merges into its snapshots.

## ~/.vizzly/servers.json (registry)

The source of truth for running TDD servers, written by the vizzly CLI.

` + "```json" + `
{
  "version": 1,
  "servers": [
    {
      "id": "srv-8f2a",
      "name": "shop-frontend",
      "port": 3001,
      "pid": 4242,
      "directory": "/home/dev/code/shop",
      "startedAt": "2026-02-10T09:00:00Z",
      "configPath": "/home/dev/code/shop/vizzly.config.js",
      "logFile": "",
      "stats": {
        "total": 14,
        "passed": 12,
        "failed": 2,
        "errors": 0,
        "updatedAt": "2026-02-10T09:05:00Z"
      }
    }
  ]
}
` + "```" + `

Rules:
- "version" must be >= 1; unknown versions are rejected whole
- "id", "name", "directory" are required; "port" and "pid" must be positive
- "stats" is optional; when present it overrides the project's report file
- "logFile" overrides the default <directory>/.vizzly/server.log

## ~/.vizzly/server.json (legacy single-server file)

Older vizzly CLIs wrote one server here. The monitor still reads it and
merges it in, skipping it when the registry already tracks the same
pid/port pair.

` + "```json" + `
{
  "pid": 4242,
  "port": 3001,
  "startTime": 1770715200000,
  "url": "http://localhost:3001"
}
` + "```" + `

- "startTime" is Unix milliseconds
- The project directory is recovered from the process's working directory

## <project>/.vizzly/report-data.json (test results)

Written by the TDD server after every run.

` + "```json" + `
{
  "timestamp": 1770715500000,
  "summary": {
    "total": 14,
    "passed": 12,
    "failed": 2,
    "errors": 0
  }
}
` + "```" + `

- Missing or malformed files read as zero stats; the server shows as "waiting"

## <project>/.vizzly/server.log (server log)

One line per event. Two line shapes are understood:

` + "```" + `
[2026-02-10T09:05:00.123Z] [ERROR] screenshot mismatch: home.png
{"timestamp":"2026-02-10T09:05:00.123Z","level":"error","message":"screenshot mismatch: home.png"}
` + "```" + `

- Levels: debug, info, warn, error, success
- Lines that parse as neither shape become "info" entries with the raw text as message

## ~/.vizzly/monitor.yaml (monitor settings)

Settings for the monitor itself. All keys optional.

` + "```yaml" + `
log_window: 100          # log lines kept per server
debounce_ms: 100         # file-event debounce
serve_addr: "127.0.0.1:47621"
telemetry:
  enabled: false         # local trace file, never leaves the machine
` + "```" + `

## ~/.vizzly/config.json (vizzly CLI config)

Read-only to the monitor, except for project name overrides:

` + "```json" + `
{
  "userPath": "/home/dev/.local/bin:/usr/local/bin",
  "runtime": { "npxPath": "/usr/local/bin/npx" },
  "projects": {
    "/home/dev/code/shop": { "projectName": "Shop Frontend" }
  }
}
` + "```" + `

- "userPath" is the PATH the monitor uses to find the vizzly CLI
- "projects" maps a directory to a display-name override; written by
  ` + "`vizzly-monitor name <dir> <name>`" + ` without touching other keys
`
