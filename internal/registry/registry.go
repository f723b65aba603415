// Package registry reads the on-disk state the vizzly CLI maintains for its
// background TDD servers and merges it into a single server list.
//
// Two files feed the list: the multi-server registry (servers.json) and the
// legacy single-server file (server.json) kept for older CLI versions. The
// registry is parsed strictly, the legacy file tolerantly, and a legacy
// entry that duplicates a registry entry's (pid, port) pair is dropped.
//
// Loading is best effort. A missing or corrupt file contributes nothing;
// the caller still gets whatever the other sources produced. Liveness
// filtering is the caller's job.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"

	"github.com/vizzly-testing/monitor/internal/config"
	"github.com/vizzly-testing/monitor/internal/logtail"
	"github.com/vizzly-testing/monitor/internal/proc"
)

// legacyIDPrefix makes legacy-derived ids deterministic: the same pid and
// port always produce the same identity across reload passes.
const legacyIDPrefix = "legacy-"

// Source loads tracked servers from the vizzly state directory.
type Source struct {
	dir config.Dir

	// Injection points for tests. Production values are set by NewSource.
	now  func() time.Time
	cwd  func(pid int) (string, error)
	home func() (string, error)
}

// NewSource returns a Source reading from the given state directory.
func NewSource(dir config.Dir) *Source {
	return &Source{
		dir:  dir,
		now:  time.Now,
		cwd:  proc.Cwd,
		home: os.UserHomeDir,
	}
}

// Load returns the merged server list. It never fails; unreadable inputs
// are logged at debug level and skipped.
func (s *Source) Load() []TrackedServer {
	servers, err := s.readMulti()
	if err != nil {
		log.Debug("server registry unreadable", "path", s.dir.RegistryPath(), "error", err)
		servers = nil
	}

	if legacy, ok := s.readLegacy(); ok {
		if hasPidPort(servers, legacy.PID, legacy.Port) {
			log.Debug("legacy server already tracked by registry", "pid", legacy.PID, "port", legacy.Port)
		} else {
			servers = append(servers, legacy)
		}
	}

	servers = dedupeByID(servers)
	s.applyNameOverrides(servers)
	return servers
}

// registryFile mirrors servers.json.
type registryFile struct {
	Version int             `json:"version"`
	Servers []registryEntry `json:"servers"`
}

type registryEntry struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Port       int           `json:"port"`
	PID        int           `json:"pid"`
	Directory  string        `json:"directory"`
	StartedAt  string        `json:"startedAt"`
	ConfigPath string        `json:"configPath"`
	LogFile    string        `json:"logFile"`
	Stats      *statsPayload `json:"stats"`
}

type statsPayload struct {
	Total     int    `json:"total"`
	Passed    int    `json:"passed"`
	Failed    int    `json:"failed"`
	Errors    int    `json:"errors"`
	UpdatedAt string `json:"updatedAt"`
}

// readMulti parses servers.json. The file is all or nothing: one invalid
// entry rejects the whole read so a half-written registry never publishes
// a partial server list.
func (s *Source) readMulti() ([]TrackedServer, error) {
	data, err := os.ReadFile(s.dir.RegistryPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	if file.Version < 1 {
		return nil, fmt.Errorf("unsupported registry version %d", file.Version)
	}

	servers := make([]TrackedServer, 0, len(file.Servers))
	for i, e := range file.Servers {
		srv, err := e.toServer()
		if err != nil {
			return nil, fmt.Errorf("registry entry %d: %w", i, err)
		}
		servers = append(servers, srv)
	}
	return servers, nil
}

func (e registryEntry) toServer() (TrackedServer, error) {
	switch {
	case e.ID == "":
		return TrackedServer{}, fmt.Errorf("missing id")
	case e.Name == "":
		return TrackedServer{}, fmt.Errorf("missing name")
	case e.Directory == "":
		return TrackedServer{}, fmt.Errorf("missing directory")
	case e.Port <= 0:
		return TrackedServer{}, fmt.Errorf("invalid port %d", e.Port)
	case e.PID <= 0:
		return TrackedServer{}, fmt.Errorf("invalid pid %d", e.PID)
	}

	started := logtail.ParseTimestamp(e.StartedAt)
	if started == nil {
		return TrackedServer{}, fmt.Errorf("invalid startedAt %q", e.StartedAt)
	}

	srv := TrackedServer{
		ID:         e.ID,
		Name:       e.Name,
		Port:       e.Port,
		PID:        e.PID,
		Directory:  e.Directory,
		StartedAt:  *started,
		ConfigPath: e.ConfigPath,
		LogFile:    e.LogFile,
	}
	if e.Stats != nil {
		srv.Stats = &ServerStats{
			Total:     e.Stats.Total,
			Passed:    e.Stats.Passed,
			Failed:    e.Stats.Failed,
			Errors:    e.Stats.Errors,
			UpdatedAt: logtail.ParseTimestamp(e.Stats.UpdatedAt),
		}
	}
	return srv, nil
}

// readLegacy parses the single-server server.json written by older CLI
// versions. The file predates the registry schema, so parsing is tolerant:
// a numeric port may arrive as a string, the start time may be absent, and
// the project directory is not recorded at all and has to be recovered
// from the process itself.
func (s *Source) readLegacy() (TrackedServer, bool) {
	path := s.dir.LegacyServerPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug("legacy server file unreadable", "path", path, "error", err)
		}
		return TrackedServer{}, false
	}
	if !gjson.ValidBytes(data) {
		log.Debug("legacy server file is not valid JSON", "path", path)
		return TrackedServer{}, false
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return TrackedServer{}, false
	}

	pid := int(root.Get("pid").Int())
	if pid <= 0 {
		return TrackedServer{}, false
	}
	port := int(root.Get("port").Int())
	if port <= 0 {
		return TrackedServer{}, false
	}

	started := s.now()
	if st := root.Get("startTime"); st.Exists() && st.Float() > 0 {
		started = time.UnixMilli(int64(st.Float()))
	}

	dir, err := s.cwd(pid)
	if err != nil {
		dir, err = s.home()
		if err != nil {
			dir = "."
		}
	}

	return TrackedServer{
		ID:        fmt.Sprintf("%s%d-%d", legacyIDPrefix, pid, port),
		Name:      filepath.Base(dir),
		Port:      port,
		PID:       pid,
		Directory: dir,
		StartedAt: started,
	}, true
}

func hasPidPort(servers []TrackedServer, pid, port int) bool {
	for _, s := range servers {
		if s.PID == pid && s.Port == port {
			return true
		}
	}
	return false
}

// dedupeByID keeps the first occurrence of each id. The registry producer
// should never emit duplicates, but a duplicate id would corrupt every
// id-keyed cache downstream, so the first entry wins here.
func dedupeByID(servers []TrackedServer) []TrackedServer {
	if len(servers) < 2 {
		return servers
	}
	seen := make(map[string]bool, len(servers))
	out := servers[:0]
	for _, s := range servers {
		if seen[s.ID] {
			log.Debug("dropping duplicate server id", "id", s.ID)
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out
}

// applyNameOverrides replaces display names with per-project projectName
// overrides from config.json, when present.
func (s *Source) applyNameOverrides(servers []TrackedServer) {
	if len(servers) == 0 {
		return
	}
	cfg, err := config.LoadGlobal(s.dir)
	if err != nil {
		log.Debug("global config unreadable", "error", err)
		return
	}
	for i := range servers {
		if name := cfg.ProjectName(servers[i].Directory); name != "" {
			servers[i].Name = name
		}
	}
}
