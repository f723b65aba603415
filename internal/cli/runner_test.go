package cli

import "testing"

func TestDisplayDetail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"zsh:1: command not found: npx", "command not found: npx"},
		{"sh:42: no such file or directory", "no such file or directory"},
		{"bash: npx: command not found", "bash: npx: command not found"},
		{"Error: EADDRINUSE: address already in use", "Error: EADDRINUSE: address already in use"},
		{"  spaced out  ", "spaced out"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DisplayDetail(tt.in); got != tt.want {
			t.Errorf("DisplayDetail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResultDetail(t *testing.T) {
	r := Result{Stdout: "starting\n", Stderr: "zsh:1: command not found: npx\n"}
	if got, want := r.Detail(), "command not found: npx"; got != want {
		t.Errorf("Detail() = %q, want %q", got, want)
	}

	r = Result{Stdout: "port already in use\n"}
	if got, want := r.Detail(), "port already in use"; got != want {
		t.Errorf("Detail() with empty stderr = %q, want %q", got, want)
	}
}
