package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/vizzly-testing/monitor/internal/engine"
	"github.com/vizzly-testing/monitor/internal/logtail"
	"github.com/vizzly-testing/monitor/internal/registry"
)

// fakeFeed is an in-memory SnapshotSource.
type fakeFeed struct {
	mu   sync.Mutex
	snap engine.Snapshot
	subs map[string]chan engine.Snapshot
	next int
}

func newFakeFeed(snap engine.Snapshot) *fakeFeed {
	return &fakeFeed{snap: snap, subs: map[string]chan engine.Snapshot{}}
}

func (f *fakeFeed) Snapshot() engine.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeFeed) Subscribe() (string, <-chan engine.Snapshot, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	id := fmt.Sprintf("sub-%d", f.next)
	ch := make(chan engine.Snapshot, 8)
	if f.snap.Seq > 0 {
		ch <- f.snap
	}
	f.subs[id] = ch
	return id, ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

func (f *fakeFeed) push(snap engine.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
	for _, ch := range f.subs {
		ch <- snap
	}
}

func (f *fakeFeed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ch := range f.subs {
		close(ch)
		delete(f.subs, id)
	}
}

func testSnapshot(seq uint64) engine.Snapshot {
	started := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	old := time.Date(2026, 2, 10, 9, 5, 0, 0, time.UTC)
	fresh := time.Now()
	return engine.Snapshot{
		Servers: []registry.TrackedServer{
			{ID: "srv-1", Name: "shop", Port: 3001, PID: 4242, Directory: "/work/shop", StartedAt: started},
			{ID: "srv-2", Name: "blog", Port: 3002, PID: 4243, Directory: "/work/blog", StartedAt: started},
		},
		Stats: map[string]registry.ServerStats{
			"srv-1": {Total: 5, Passed: 3, Failed: 2, UpdatedAt: &old},
			"srv-2": {Total: 8, Passed: 8, UpdatedAt: &fresh},
		},
		Logs: map[string][]logtail.Entry{
			"srv-1": {{Level: logtail.LevelError, Message: "screenshot mismatch"}},
		},
		AnyFailures: true,
		Seq:         seq,
		TakenAt:     fresh,
	}
}

func newTestServer(t *testing.T, feed *fakeFeed) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer("127.0.0.1:0", feed).Router())
	t.Cleanup(ts.Close)
	return ts
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, newFakeFeed(testSnapshot(7)))

	code, body := getBody(t, ts.URL+"/healthz")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if got := gjson.Get(body, "status").String(); got != "ok" {
		t.Errorf("status field = %q, want ok", got)
	}
	if got := gjson.Get(body, "seq").Int(); got != 7 {
		t.Errorf("seq = %d, want 7", got)
	}
	if got := gjson.Get(body, "servers").Int(); got != 2 {
		t.Errorf("servers = %d, want 2", got)
	}
}

func TestStatusEndpointIncludesStates(t *testing.T) {
	ts := newTestServer(t, newFakeFeed(testSnapshot(3)))

	code, body := getBody(t, ts.URL+"/api/status")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if got := gjson.Get(body, "servers.#").Int(); got != 2 {
		t.Fatalf("servers length = %d, want 2", got)
	}
	if got := gjson.Get(body, "servers.0.id").String(); got != "srv-1" {
		t.Errorf("servers.0.id = %q, want srv-1", got)
	}
	if got := gjson.Get(body, "states.srv-1").String(); got != "failing" {
		t.Errorf("srv-1 state = %q, want failing", got)
	}
	if got := gjson.Get(body, "states.srv-2").String(); got != "running" {
		t.Errorf("srv-2 state = %q, want running", got)
	}
	if !gjson.Get(body, "anyFailures").Bool() {
		t.Error("anyFailures not set")
	}
	if got := gjson.Get(body, "logs.srv-1.0.message").String(); got != "screenshot mismatch" {
		t.Errorf("log message = %q", got)
	}
}

func TestWebSocketDeliversUpdates(t *testing.T) {
	feed := newFakeFeed(testSnapshot(1))
	ts := newTestServer(t, feed)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := Dial(ctx, ts.URL)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	// The subscription seeds the current snapshot.
	first := recvUpdate(t, client)
	if first.Seq != 1 {
		t.Fatalf("first update seq = %d, want 1", first.Seq)
	}
	if first.States["srv-1"] != "failing" {
		t.Errorf("first update srv-1 state = %q, want failing", first.States["srv-1"])
	}

	next := testSnapshot(2)
	next.AnyFailures = false
	next.Stats["srv-1"] = registry.ServerStats{Total: 5, Passed: 5, UpdatedAt: next.Stats["srv-2"].UpdatedAt}
	feed.push(next)

	second := recvUpdate(t, client)
	if second.Seq != 2 {
		t.Fatalf("second update seq = %d, want 2", second.Seq)
	}
	if second.States["srv-1"] != "running" {
		t.Errorf("second update srv-1 state = %q, want running", second.States["srv-1"])
	}
	if second.AnyFailures {
		t.Error("second update still reports failures")
	}
}

func TestWebSocketClosesOnShutdown(t *testing.T) {
	feed := newFakeFeed(testSnapshot(1))
	ts := newTestServer(t, feed)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := Dial(ctx, ts.URL)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	recvUpdate(t, client)
	feed.closeAll()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-client.Updates():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("updates channel not closed after shutdown")
		}
	}
}

func recvUpdate(t *testing.T, c *Client) Update {
	t.Helper()
	select {
	case upd, ok := <-c.Updates():
		if !ok {
			t.Fatal("updates channel closed early")
		}
		return upd
	case err := <-c.Errs():
		t.Fatalf("stream error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for update")
	}
	return Update{}
}

func TestFeedURL(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		want    string
		wantErr bool
	}{
		{name: "bare host port", addr: "127.0.0.1:47621", want: "ws://127.0.0.1:47621/ws"},
		{name: "http url", addr: "http://127.0.0.1:47621", want: "ws://127.0.0.1:47621/ws"},
		{name: "https url", addr: "https://monitor.local", want: "wss://monitor.local/ws"},
		{name: "ws with path", addr: "ws://127.0.0.1:47621/custom", want: "ws://127.0.0.1:47621/custom"},
		{name: "bad scheme", addr: "ftp://127.0.0.1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := feedURL(tt.addr)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("feedURL(%q) succeeded, want error", tt.addr)
				}
				return
			}
			if err != nil {
				t.Fatalf("feedURL(%q): %v", tt.addr, err)
			}
			if got != tt.want {
				t.Errorf("feedURL(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}
