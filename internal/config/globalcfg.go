// Package config reads the files under the vizzly home directory (~/.vizzly)
// that the monitor depends on, and manages the monitor's own preferences.
//
// The registry, legacy server file, and config.json are owned by the vizzly
// CLI; this package never rewrites them wholesale. The one write path into
// config.json (per-project display names) is surgical so unknown fields
// written by other tools survive.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Global mirrors the fields of ~/.vizzly/config.json the monitor consumes.
// Unknown fields are ignored on read and preserved on write.
type Global struct {
	// UserPath is the PATH to use when invoking the vizzly CLI.
	UserPath string `json:"userPath,omitempty"`

	// Runtime holds resolved interpreter locations.
	Runtime Runtime `json:"runtime,omitempty"`

	// Projects maps absolute project directories to per-project overrides.
	Projects map[string]ProjectOverride `json:"projects,omitempty"`
}

// Runtime holds interpreter paths recorded by the vizzly CLI installer.
type Runtime struct {
	// NpxPath is the absolute path of the npx launcher, if known.
	NpxPath string `json:"npxPath,omitempty"`
}

// ProjectOverride holds per-project settings keyed by directory.
type ProjectOverride struct {
	// ProjectName overrides the display name derived from the directory.
	ProjectName string `json:"projectName,omitempty"`
}

// LoadGlobal reads ~/.vizzly/config.json.
//
// Returns:
//   - *Global: The parsed config, or an empty config if the file doesn't exist
//   - error: Any error other than the file not existing
func LoadGlobal(dir Dir) (*Global, error) {
	data, err := os.ReadFile(dir.GlobalConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Global{}, nil
		}
		return nil, fmt.Errorf("failed to read vizzly config: %w", err)
	}

	var cfg Global
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse vizzly config: %w", err)
	}
	return &cfg, nil
}

// ProjectName returns the display-name override for a project directory,
// or "" when none is configured.
func (g *Global) ProjectName(projectDir string) string {
	if g == nil || len(g.Projects) == 0 {
		return ""
	}
	if o, ok := g.Projects[NormalizeDir(projectDir)]; ok {
		return o.ProjectName
	}
	// Entries written by other tools may not be normalized.
	if o, ok := g.Projects[projectDir]; ok {
		return o.ProjectName
	}
	return ""
}

// SetProjectName writes (or, with an empty name, removes) the display-name
// override for a project directory in config.json. The update touches only
// the one key; every other field in the file is preserved byte for byte.
func SetProjectName(dir Dir, projectDir, name string) error {
	raw := "{}"
	if data, err := os.ReadFile(dir.GlobalConfigPath()); err == nil {
		raw = string(data)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read vizzly config: %w", err)
	}
	if !gjson.Valid(raw) {
		return fmt.Errorf("vizzly config is not valid JSON: %s", dir.GlobalConfigPath())
	}

	path := "projects." + escapeKey(NormalizeDir(projectDir)) + ".projectName"

	var (
		updated string
		err     error
	)
	if name == "" {
		updated, err = sjson.Delete(raw, path)
	} else {
		updated, err = sjson.Set(raw, path, name)
	}
	if err != nil {
		return fmt.Errorf("failed to update vizzly config: %w", err)
	}

	if err := os.MkdirAll(string(dir), 0755); err != nil {
		return fmt.Errorf("failed to create vizzly directory: %w", err)
	}
	if err := os.WriteFile(dir.GlobalConfigPath(), []byte(updated), 0644); err != nil {
		return fmt.Errorf("failed to write vizzly config: %w", err)
	}
	return nil
}

// NormalizeDir canonicalizes a project directory for use as a map key:
// absolute, cleaned, no trailing separator.
func NormalizeDir(projectDir string) string {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		abs = projectDir
	}
	abs = filepath.Clean(abs)
	if len(abs) > 1 {
		abs = strings.TrimRight(abs, string(filepath.Separator))
	}
	return abs
}

// escapeKey escapes a map key for use in a gjson/sjson path, where dots and
// wildcards are structural.
func escapeKey(key string) string {
	r := strings.NewReplacer(`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`)
	return r.Replace(key)
}
