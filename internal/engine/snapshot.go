package engine

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vizzly-testing/monitor/internal/config"
	"github.com/vizzly-testing/monitor/internal/logtail"
	"github.com/vizzly-testing/monitor/internal/registry"
)

// Snapshot is one consistent, immutable view of everything the engine
// tracks. Consumers may hold it as long as they like; the engine never
// mutates a published snapshot, and log slices are replaced wholesale
// rather than appended to.
type Snapshot struct {
	// Servers is sorted by name, then port, then id.
	Servers []registry.TrackedServer `json:"servers"`

	// Stats and Logs are keyed by server id. A server can be present in
	// Servers before its first report read lands; it then has no Stats
	// entry yet.
	Stats map[string]registry.ServerStats `json:"stats"`
	Logs  map[string][]logtail.Entry      `json:"logs"`

	// AnyFailures is true when at least one server's stats record a failed
	// test.
	AnyFailures bool `json:"anyFailures"`

	// AllHealthy is true when every tracked server has stats and none of
	// them record failures or errors. With zero servers it is false.
	AllHealthy bool `json:"allHealthy"`

	// Seq increments once per published change. Identical consecutive
	// passes publish nothing, so equal Seq means equal content.
	Seq     uint64    `json:"seq"`
	TakenAt time.Time `json:"takenAt"`
}

// Server returns the tracked server with the given id.
func (s Snapshot) Server(id string) (registry.TrackedServer, bool) {
	for _, srv := range s.Servers {
		if srv.ID == id {
			return srv, true
		}
	}
	return registry.TrackedServer{}, false
}

// FindServer resolves a user-supplied selector: an exact id, a port
// number, a project name, or a project directory, tried in that order.
func (s Snapshot) FindServer(selector string) (registry.TrackedServer, bool) {
	if srv, ok := s.Server(selector); ok {
		return srv, true
	}
	if port, err := strconv.Atoi(selector); err == nil {
		for _, srv := range s.Servers {
			if srv.Port == port {
				return srv, true
			}
		}
	}
	for _, srv := range s.Servers {
		if strings.EqualFold(srv.Name, selector) {
			return srv, true
		}
	}
	want := config.NormalizeDir(selector)
	for _, srv := range s.Servers {
		if config.NormalizeDir(srv.Directory) == want {
			return srv, true
		}
	}
	return registry.TrackedServer{}, false
}

// buildSnapshot assembles a candidate snapshot from the owned state.
// Sequence number and timestamp are stamped at publish time.
func (e *Engine) buildSnapshot() Snapshot {
	servers := make([]registry.TrackedServer, 0, len(e.servers))
	for _, srv := range e.servers {
		servers = append(servers, srv.Clone())
	}
	sort.Slice(servers, func(i, j int) bool {
		if servers[i].Name != servers[j].Name {
			return servers[i].Name < servers[j].Name
		}
		if servers[i].Port != servers[j].Port {
			return servers[i].Port < servers[j].Port
		}
		return servers[i].ID < servers[j].ID
	})

	stats := make(map[string]registry.ServerStats, len(e.stats))
	for id, s := range e.stats {
		if s != nil {
			stats[id] = *s
		}
	}
	logs := make(map[string][]logtail.Entry, len(e.logs))
	for id, entries := range e.logs {
		logs[id] = entries
	}

	anyFailures := false
	allHealthy := len(e.servers) > 0
	for id := range e.servers {
		s, ok := e.stats[id]
		if !ok || s == nil {
			allHealthy = false
			continue
		}
		if s.HasFailures() {
			anyFailures = true
		}
		if !s.Healthy() {
			allHealthy = false
		}
	}

	return Snapshot{
		Servers:     servers,
		Stats:       stats,
		Logs:        logs,
		AnyFailures: anyFailures,
		AllHealthy:  allHealthy,
	}
}

// publish replaces the published snapshot when the content changed and
// fans it out to subscribers. Re-publishing identical content is
// suppressed, except for the very first pass so waiters always observe
// startup completing.
func (e *Engine) publish() {
	next := e.buildSnapshot()
	if e.seq > 0 && contentEqual(e.snap, next) {
		return
	}

	e.seq++
	next.Seq = e.seq
	next.TakenAt = e.opts.Clock()

	e.mu.Lock()
	e.snap = next
	for _, ch := range e.subs {
		select {
		case ch <- next:
		default:
		}
	}
	e.mu.Unlock()
}

// contentEqual compares everything except Seq and TakenAt. The compared
// values are rebuilt deterministically from parsed file state, so deep
// equality is exact here, not approximate.
func contentEqual(a, b Snapshot) bool {
	return reflect.DeepEqual(a.Servers, b.Servers) &&
		reflect.DeepEqual(a.Stats, b.Stats) &&
		reflect.DeepEqual(a.Logs, b.Logs)
}
