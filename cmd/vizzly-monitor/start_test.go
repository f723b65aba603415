// Package main provides tests for the start command's argument handling.
package main

import (
	"os"
	"path/filepath"
	"testing"
)

// TestTargetDirDefaultsToCwd verifies the no-argument case.
func TestTargetDirDefaultsToCwd(t *testing.T) {
	dir, err := targetDir(nil)
	if err != nil {
		t.Fatalf("targetDir(nil) unexpected error: %v", err)
	}
	cwd, _ := os.Getwd()
	if dir != cwd {
		t.Errorf("targetDir(nil) = %q, want cwd %q", dir, cwd)
	}
}

// TestTargetDirResolvesArgument verifies an existing directory resolves to
// its absolute path.
func TestTargetDirResolvesArgument(t *testing.T) {
	tmp := t.TempDir()
	dir, err := targetDir([]string{tmp})
	if err != nil {
		t.Fatalf("targetDir(%q) unexpected error: %v", tmp, err)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("targetDir(%q) = %q, want absolute path", tmp, dir)
	}
}

// TestTargetDirRejectsMissing verifies a nonexistent directory errors.
func TestTargetDirRejectsMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "not-here")
	if _, err := targetDir([]string{missing}); err == nil {
		t.Error("targetDir(missing) expected error, got nil")
	}
}

// TestTargetDirRejectsFile verifies a plain file errors.
func TestTargetDirRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := targetDir([]string{file}); err == nil {
		t.Error("targetDir(file) expected error, got nil")
	}
}
