// Package stream serves the monitor's snapshot feed over local HTTP and
// WebSocket.
//
// The listener binds loopback only. REST endpoints answer one-shot
// "what's running" queries from scripts and editor integrations; /ws pushes
// every published snapshot to attached viewers, which is how a second
// `vizzly-monitor watch --attach` shares one engine instead of running its
// own watchers.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/vizzly-testing/monitor/internal/engine"
	"github.com/vizzly-testing/monitor/internal/registry"
	"github.com/vizzly-testing/monitor/internal/status"
)

const (
	// pingInterval keeps idle attach sessions from being reaped by
	// aggressive local proxies.
	pingInterval = 25 * time.Second

	// pongWait is how long a client may stay silent before the server
	// drops it.
	pongWait = 60 * time.Second

	writeWait = 10 * time.Second
)

// SnapshotSource is the slice of the engine the server needs.
type SnapshotSource interface {
	Snapshot() engine.Snapshot
	Subscribe() (string, <-chan engine.Snapshot, func())
}

// Server exposes snapshots over HTTP.
type Server struct {
	addr     string
	src      SnapshotSource
	upgrader websocket.Upgrader
}

// NewServer returns a Server for the given loopback address.
func NewServer(addr string, src SnapshotSource) *Server {
	return &Server{
		addr: addr,
		src:  src,
		upgrader: websocket.Upgrader{
			// Loopback-only listener; browser-origin checks add nothing
			// here and break editor webviews.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Router builds the route table. Split out from ListenAndServe so tests
// can mount it on httptest.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("snapshot feed listening", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := s.src.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"seq":     snap.Seq,
		"servers": len(snap.Servers),
		"takenAt": snap.TakenAt,
	})
}

// statusResponse is a snapshot plus the derived display state per server,
// so consumers don't reimplement the health rules.
type statusResponse struct {
	engine.Snapshot
	States map[string]status.ServerState `json:"states"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, withStates(s.src.Snapshot()))
}

func withStates(snap engine.Snapshot) statusResponse {
	states := make(map[string]status.ServerState, len(snap.Servers))
	now := time.Now()
	for _, srv := range snap.Servers {
		var stats *registry.ServerStats
		if st, ok := snap.Stats[srv.ID]; ok {
			stats = &st
		}
		states[srv.ID] = status.Classify(stats, now)
	}
	return statusResponse{Snapshot: snap, States: states}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("websocket upgrade failed", "error", err)
		return
	}

	clientID := uuid.NewString()
	log.Debug("viewer attached", "client", clientID, "remote", r.RemoteAddr)

	done := make(chan struct{})

	// Reader exists to surface disconnects and service pongs; viewers
	// never send data.
	go func() {
		defer close(done)
		conn.SetReadLimit(1024)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	_, updates, cancel := s.src.Subscribe()
	defer cancel()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer conn.Close()

	// The subscription seeds the current snapshot, so the first write
	// happens without waiting for a change.
	for {
		select {
		case <-done:
			log.Debug("viewer detached", "client", clientID)
			return
		case snap, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "monitor shutting down"),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(withStates(snap)); err != nil {
				log.Debug("viewer write failed", "client", clientID, "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("response encode failed", "error", err)
	}
}
