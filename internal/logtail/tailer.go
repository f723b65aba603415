// Package logtail reads the trailing window of a vizzly server log and
// parses its line-oriented mix of JSON events and free text into typed
// entries. The whole window is re-read and replaced on every reload; this is
// a small local diagnostic log, not a streaming tail.
package logtail

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Load reads up to maxLines trailing lines from the log at path and parses
// them. A missing file is an empty window, not an error; any other read
// failure is logged at debug and also yields an empty window, since the next
// change event will retry. maxLines <= 0 means no limit.
func Load(path string, maxLines int) []Entry {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug("failed to read log", "path", path, "error", err)
		}
		return nil
	}
	return ParseLines(string(data), maxLines)
}

// ParseLines splits text on line boundaries, keeps the last maxLines raw
// lines, and parses each non-empty one. No line is ever dropped silently:
// anything that isn't a recognized JSON shape still becomes an entry.
func ParseLines(text string, maxLines int) []Entry {
	lines := strings.Split(text, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		entries = append(entries, ParseLine(line))
	}
	return entries
}
