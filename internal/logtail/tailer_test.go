package logtail

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	entries := Load(filepath.Join(t.TempDir(), "server.log"), 100)
	if len(entries) != 0 {
		t.Errorf("Load() on missing file = %d entries, want 0", len(entries))
	}
}

func TestLoadParsesTrailingWindow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")
	content := "one\ntwo\nthree\nfour\nfive"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	entries := Load(path, 3)
	if len(entries) != 3 {
		t.Fatalf("Load() = %d entries, want 3", len(entries))
	}
	for i, want := range []string{"three", "four", "five"} {
		if entries[i].Message != want {
			t.Errorf("entries[%d].Message = %q, want %q", i, entries[i].Message, want)
		}
	}
}

func TestLoadSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")
	content := "first\n\n\nsecond\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	entries := Load(path, 0)
	if len(entries) != 2 {
		t.Fatalf("Load() = %d entries, want 2", len(entries))
	}
	if entries[0].Message != "first" || entries[1].Message != "second" {
		t.Errorf("messages = %q, %q", entries[0].Message, entries[1].Message)
	}
}

func TestLoadHandlesCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")
	if err := os.WriteFile(path, []byte("alpha\r\nbeta\r\n"), 0644); err != nil {
		t.Fatal(err)
	}

	entries := Load(path, 10)
	if len(entries) != 2 {
		t.Fatalf("Load() = %d entries, want 2", len(entries))
	}
	if entries[0].Message != "alpha" {
		t.Errorf("entries[0].Message = %q, want %q", entries[0].Message, "alpha")
	}
}

func TestLoadMixedShapes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")
	content := `{"session_start":true,"node_version":"20.11.1","platform":"linux"}
{"screenshot":"home","status":"passed"}
plain fallback line
{"message":"done","level":"success"}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	entries := Load(path, 100)
	if len(entries) != 4 {
		t.Fatalf("Load() = %d entries, want 4", len(entries))
	}
	if entries[0].Message != "Server started" {
		t.Errorf("entries[0].Message = %q", entries[0].Message)
	}
	if entries[1].Level != LevelSuccess {
		t.Errorf("entries[1].Level = %q, want %q", entries[1].Level, LevelSuccess)
	}
	if entries[2].Message != "plain fallback line" {
		t.Errorf("entries[2].Message = %q", entries[2].Message)
	}
	if entries[3].Level != LevelSuccess {
		t.Errorf("entries[3].Level = %q, want %q", entries[3].Level, LevelSuccess)
	}
}
