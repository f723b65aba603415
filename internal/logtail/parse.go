package logtail

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Level classifies a log entry for display.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// ParseLevel maps a level string from a log line to a Level, defaulting to
// info for anything unrecognized.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(s)) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError, LevelSuccess:
		return Level(strings.ToLower(s))
	default:
		return LevelInfo
	}
}

// Entry is one parsed log line. Entries are immutable once produced.
type Entry struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Level     Level      `json:"level"`
	Message   string     `json:"message"`
	Details   string     `json:"details,omitempty"`
}

// ParseTimestamp parses an ISO-8601 timestamp, trying the fractional-seconds
// form first and falling back to whole seconds. The registry reader uses the
// same two-pass strategy. Returns nil when the string doesn't parse; a bad
// timestamp is never fatal.
func ParseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseLine turns one log line into an Entry. Parsing is total: every
// non-empty line yields exactly one entry, falling back to a plain info
// entry when the line isn't a JSON object.
//
// Shapes are tried in a fixed priority order: session start, screenshot
// comparison, bare event, generic message, and finally a debug entry listing
// the object's keys.
func ParseLine(line string) Entry {
	if !gjson.Valid(line) {
		return Entry{Level: LevelInfo, Message: line}
	}
	root := gjson.Parse(line)
	if !root.IsObject() {
		return Entry{Level: LevelInfo, Message: line}
	}

	var ts *time.Time
	if raw := root.Get("timestamp"); raw.Type == gjson.String {
		ts = ParseTimestamp(raw.String())
	}

	if root.Get("session_start").Type == gjson.True {
		runtime := "unknown"
		if v := root.Get("node_version"); v.Type == gjson.String {
			runtime = "Node " + v.String()
		}
		platform := "unknown"
		if p := root.Get("platform"); p.Type == gjson.String {
			platform = p.String()
		}
		return Entry{
			Timestamp: ts,
			Level:     LevelInfo,
			Message:   "Server started",
			Details:   runtime + " on " + platform,
		}
	}

	if shot := root.Get("screenshot"); shot.Type == gjson.String {
		level := LevelInfo
		switch root.Get("status").String() {
		case "failed":
			level = LevelError
		case "passed":
			level = LevelSuccess
		}
		details := ""
		if diff := root.Get("diffPercentage"); diff.Exists() && diff.Float() > 0 {
			details = fmt.Sprintf("%.1f%% diff", diff.Float())
		}
		return Entry{Timestamp: ts, Level: level, Message: shot.String(), Details: details}
	}

	if event := root.Get("event"); event.Type == gjson.String {
		level := LevelInfo
		if strings.Contains(event.String(), "error") {
			level = LevelError
		}
		return Entry{Timestamp: ts, Level: level, Message: event.String()}
	}

	if msg := root.Get("message"); msg.Type == gjson.String {
		return Entry{
			Timestamp: ts,
			Level:     ParseLevel(root.Get("level").String()),
			Message:   msg.String(),
		}
	}

	// Unknown object shape: surface the keys so the line is at least
	// visible in a debug view.
	var keys []string
	root.ForEach(func(key, _ gjson.Result) bool {
		if key.String() != "timestamp" {
			keys = append(keys, key.String())
		}
		return true
	})
	sort.Strings(keys)
	message := "Event"
	if len(keys) > 0 {
		message = strings.Join(keys, ", ")
	}
	return Entry{Timestamp: ts, Level: LevelDebug, Message: message}
}
