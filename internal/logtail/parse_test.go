package logtail

import (
	"testing"
	"time"
)

func TestParseLinePlainText(t *testing.T) {
	e := ParseLine("Server online")
	if e.Level != LevelInfo {
		t.Errorf("Level = %q, want %q", e.Level, LevelInfo)
	}
	if e.Message != "Server online" {
		t.Errorf("Message = %q, want %q", e.Message, "Server online")
	}
	if e.Details != "" {
		t.Errorf("Details = %q, want empty", e.Details)
	}
	if e.Timestamp != nil {
		t.Errorf("Timestamp = %v, want nil", e.Timestamp)
	}
}

func TestParseLineSessionStart(t *testing.T) {
	line := `{"session_start":true,"node_version":"20.11.1","platform":"darwin","timestamp":"2024-03-04T10:15:30.123Z"}`
	e := ParseLine(line)

	if e.Level != LevelInfo {
		t.Errorf("Level = %q, want %q", e.Level, LevelInfo)
	}
	if e.Message != "Server started" {
		t.Errorf("Message = %q, want %q", e.Message, "Server started")
	}
	if e.Details != "Node 20.11.1 on darwin" {
		t.Errorf("Details = %q, want %q", e.Details, "Node 20.11.1 on darwin")
	}
	if e.Timestamp == nil {
		t.Fatal("Timestamp = nil, want parsed")
	}
	want := time.Date(2024, 3, 4, 10, 15, 30, 123000000, time.UTC)
	if !e.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", e.Timestamp, want)
	}
}

func TestParseLineSessionStartDefaults(t *testing.T) {
	e := ParseLine(`{"session_start":true}`)
	if e.Details != "unknown on unknown" {
		t.Errorf("Details = %q, want %q", e.Details, "unknown on unknown")
	}
}

// session_start must be boolean true; a string is not a session marker.
func TestParseLineSessionStartRequiresBool(t *testing.T) {
	e := ParseLine(`{"session_start":"true","message":"hi"}`)
	if e.Message != "hi" {
		t.Errorf("Message = %q, want %q", e.Message, "hi")
	}
}

func TestParseLineScreenshot(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantLevel   Level
		wantMessage string
		wantDetails string
	}{
		{
			name:        "failed with diff",
			line:        `{"screenshot":"home-page","status":"failed","diffPercentage":12.75}`,
			wantLevel:   LevelError,
			wantMessage: "home-page",
			wantDetails: "12.8% diff",
		},
		{
			name:        "passed",
			line:        `{"screenshot":"login","status":"passed"}`,
			wantLevel:   LevelSuccess,
			wantMessage: "login",
		},
		{
			name:        "no status",
			line:        `{"screenshot":"checkout"}`,
			wantLevel:   LevelInfo,
			wantMessage: "checkout",
		},
		{
			name:        "zero diff omitted",
			line:        `{"screenshot":"cart","status":"failed","diffPercentage":0}`,
			wantLevel:   LevelError,
			wantMessage: "cart",
			wantDetails: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ParseLine(tt.line)
			if e.Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q", e.Level, tt.wantLevel)
			}
			if e.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", e.Message, tt.wantMessage)
			}
			if e.Details != tt.wantDetails {
				t.Errorf("Details = %q, want %q", e.Details, tt.wantDetails)
			}
		})
	}
}

func TestParseLineEvent(t *testing.T) {
	e := ParseLine(`{"event":"build_error"}`)
	if e.Level != LevelError {
		t.Errorf("Level = %q, want %q", e.Level, LevelError)
	}
	if e.Message != "build_error" {
		t.Errorf("Message = %q, want %q", e.Message, "build_error")
	}

	e = ParseLine(`{"event":"comparison_done"}`)
	if e.Level != LevelInfo {
		t.Errorf("Level = %q, want %q", e.Level, LevelInfo)
	}
}

func TestParseLineMessage(t *testing.T) {
	tests := []struct {
		line      string
		wantLevel Level
	}{
		{`{"message":"ready","level":"warn"}`, LevelWarn},
		{`{"message":"ready","level":"error"}`, LevelError},
		{`{"message":"ready"}`, LevelInfo},
		{`{"message":"ready","level":"verbose"}`, LevelInfo},
	}
	for _, tt := range tests {
		e := ParseLine(tt.line)
		if e.Level != tt.wantLevel {
			t.Errorf("ParseLine(%s).Level = %q, want %q", tt.line, e.Level, tt.wantLevel)
		}
		if e.Message != "ready" {
			t.Errorf("ParseLine(%s).Message = %q, want %q", tt.line, e.Message, "ready")
		}
	}
}

func TestParseLineUnknownShape(t *testing.T) {
	e := ParseLine(`{"zeta":1,"alpha":2,"timestamp":"2024-01-01T00:00:00Z"}`)
	if e.Level != LevelDebug {
		t.Errorf("Level = %q, want %q", e.Level, LevelDebug)
	}
	if e.Message != "alpha, zeta" {
		t.Errorf("Message = %q, want %q", e.Message, "alpha, zeta")
	}

	e = ParseLine(`{"timestamp":"2024-01-01T00:00:00Z"}`)
	if e.Message != "Event" {
		t.Errorf("Message = %q, want %q", e.Message, "Event")
	}
	e = ParseLine(`{}`)
	if e.Message != "Event" {
		t.Errorf("Message = %q, want %q", e.Message, "Event")
	}
}

// Parsing is total: any non-empty input produces exactly one entry.
func TestParseLineNeverDropsInput(t *testing.T) {
	lines := []string{
		"plain text",
		"   ",
		`{"broken":`,
		`[1,2,3]`,
		`"just a string"`,
		`42`,
		`null`,
		`{"screenshot":123}`,
		`{"event":{"nested":true}}`,
		`{"message":null,"level":"error"}`,
	}
	for _, line := range lines {
		e := ParseLine(line)
		if e.Message == "" {
			t.Errorf("ParseLine(%q) produced an empty message", line)
		}
	}
}

// Non-object JSON values fall through to the plain-text branch.
func TestParseLineNonObjectJSON(t *testing.T) {
	e := ParseLine(`[1,2,3]`)
	if e.Level != LevelInfo || e.Message != `[1,2,3]` {
		t.Errorf("got level %q message %q, want info with raw line", e.Level, e.Message)
	}
}

func TestParseTimestampTwoPass(t *testing.T) {
	tests := []struct {
		in     string
		wantOK bool
	}{
		{"2024-03-04T10:15:30.123Z", true},
		{"2024-03-04T10:15:30Z", true},
		{"2024-03-04T10:15:30+02:00", true},
		{"2024-03-04 10:15:30", false},
		{"not a time", false},
		{"", false},
	}
	for _, tt := range tests {
		got := ParseTimestamp(tt.in)
		if (got != nil) != tt.wantOK {
			t.Errorf("ParseTimestamp(%q) = %v, want ok=%v", tt.in, got, tt.wantOK)
		}
	}
}

func TestParseLevelFallback(t *testing.T) {
	if got := ParseLevel("ERROR"); got != LevelError {
		t.Errorf("ParseLevel(ERROR) = %q, want %q", got, LevelError)
	}
	if got := ParseLevel("chatty"); got != LevelInfo {
		t.Errorf("ParseLevel(chatty) = %q, want %q", got, LevelInfo)
	}
	if got := ParseLevel(""); got != LevelInfo {
		t.Errorf("ParseLevel(\"\") = %q, want %q", got, LevelInfo)
	}
}
