// Package main provides tests for the logs command's window handling.
package main

import (
	"testing"
	"time"

	"github.com/vizzly-testing/monitor/internal/logtail"
)

// entry builds a log entry with a timestamp offset in seconds.
func entry(offset int, level logtail.Level, message string) logtail.Entry {
	ts := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Second)
	return logtail.Entry{Timestamp: &ts, Level: level, Message: message}
}

// TestAppendedEntries verifies diffing two passes of the sliding log window.
func TestAppendedEntries(t *testing.T) {
	a := entry(0, logtail.LevelInfo, "server started")
	b := entry(1, logtail.LevelInfo, "first run")
	c := entry(2, logtail.LevelError, "snapshot mismatch")
	d := entry(3, logtail.LevelSuccess, "all passing")

	tests := []struct {
		name string
		prev []logtail.Entry
		next []logtail.Entry
		want []string
	}{
		{
			name: "no previous window",
			prev: nil,
			next: []logtail.Entry{a, b},
			want: []string{"server started", "first run"},
		},
		{
			name: "nothing new",
			prev: []logtail.Entry{a, b},
			next: []logtail.Entry{a, b},
			want: []string{},
		},
		{
			name: "two appended",
			prev: []logtail.Entry{a, b},
			next: []logtail.Entry{a, b, c, d},
			want: []string{"snapshot mismatch", "all passing"},
		},
		{
			name: "window slid but tail survives",
			prev: []logtail.Entry{a, b, c},
			next: []logtail.Entry{b, c, d},
			want: []string{"all passing"},
		},
		{
			name: "window rotated past the tail",
			prev: []logtail.Entry{a},
			next: []logtail.Entry{c, d},
			want: []string{"snapshot mismatch", "all passing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := appendedEntries(tt.prev, tt.next)
			if len(got) != len(tt.want) {
				t.Fatalf("appendedEntries() returned %d entries, want %d", len(got), len(tt.want))
			}
			for i, e := range got {
				if e.Message != tt.want[i] {
					t.Errorf("entry %d = %q, want %q", i, e.Message, tt.want[i])
				}
			}
		})
	}
}

// TestAppendedEntriesDuplicateLines verifies the diff anchors on the
// latest occurrence when the same line repeats.
func TestAppendedEntriesDuplicateLines(t *testing.T) {
	ping := entry(0, logtail.LevelDebug, "poll")
	prev := []logtail.Entry{ping, ping}
	next := []logtail.Entry{ping, ping, ping}

	got := appendedEntries(prev, next)
	if len(got) != 0 {
		t.Errorf("appendedEntries() with repeated tail = %d entries, want 0", len(got))
	}
}

// TestSameEntry verifies the nil-safe timestamp comparison.
func TestSameEntry(t *testing.T) {
	ts := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	later := ts.Add(time.Second)

	tests := []struct {
		name string
		a    logtail.Entry
		b    logtail.Entry
		want bool
	}{
		{
			name: "identical",
			a:    logtail.Entry{Timestamp: &ts, Level: logtail.LevelInfo, Message: "hi"},
			b:    logtail.Entry{Timestamp: &ts, Level: logtail.LevelInfo, Message: "hi"},
			want: true,
		},
		{
			name: "both timestamps nil",
			a:    logtail.Entry{Level: logtail.LevelInfo, Message: "hi"},
			b:    logtail.Entry{Level: logtail.LevelInfo, Message: "hi"},
			want: true,
		},
		{
			name: "one timestamp nil",
			a:    logtail.Entry{Timestamp: &ts, Level: logtail.LevelInfo, Message: "hi"},
			b:    logtail.Entry{Level: logtail.LevelInfo, Message: "hi"},
			want: false,
		},
		{
			name: "different timestamps",
			a:    logtail.Entry{Timestamp: &ts, Level: logtail.LevelInfo, Message: "hi"},
			b:    logtail.Entry{Timestamp: &later, Level: logtail.LevelInfo, Message: "hi"},
			want: false,
		},
		{
			name: "different message",
			a:    logtail.Entry{Timestamp: &ts, Level: logtail.LevelInfo, Message: "hi"},
			b:    logtail.Entry{Timestamp: &ts, Level: logtail.LevelInfo, Message: "bye"},
			want: false,
		},
		{
			name: "different level",
			a:    logtail.Entry{Timestamp: &ts, Level: logtail.LevelInfo, Message: "hi"},
			b:    logtail.Entry{Timestamp: &ts, Level: logtail.LevelError, Message: "hi"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameEntry(tt.a, tt.b); got != tt.want {
				t.Errorf("sameEntry() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestFilterEntries verifies level filtering composes with the line cap.
func TestFilterEntries(t *testing.T) {
	window := []logtail.Entry{
		entry(0, logtail.LevelInfo, "one"),
		entry(1, logtail.LevelError, "two"),
		entry(2, logtail.LevelInfo, "three"),
		entry(3, logtail.LevelError, "four"),
		entry(4, logtail.LevelInfo, "five"),
	}

	tests := []struct {
		name  string
		level string
		n     int
		want  []string
	}{
		{name: "no filters", level: "", n: 0, want: []string{"one", "two", "three", "four", "five"}},
		{name: "last two", level: "", n: 2, want: []string{"four", "five"}},
		{name: "errors only", level: "error", n: 0, want: []string{"two", "four"}},
		{name: "level filter case-insensitive", level: "ERROR", n: 0, want: []string{"two", "four"}},
		{name: "level then cap", level: "info", n: 2, want: []string{"three", "five"}},
		{name: "cap larger than window", level: "", n: 50, want: []string{"one", "two", "three", "four", "five"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterEntries(window, tt.level, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("filterEntries() returned %d entries, want %d", len(got), len(tt.want))
			}
			for i, e := range got {
				if e.Message != tt.want[i] {
					t.Errorf("entry %d = %q, want %q", i, e.Message, tt.want[i])
				}
			}
		})
	}
}
