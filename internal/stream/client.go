package stream

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vizzly-testing/monitor/internal/engine"
	"github.com/vizzly-testing/monitor/internal/status"
)

// Update is one pushed snapshot with its derived per-server states.
type Update struct {
	engine.Snapshot
	States map[string]status.ServerState `json:"states"`
}

// Client attaches to a running monitor's /ws feed.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}

	updates chan Update
	errs    chan error
}

// Dial connects to the feed at addr. addr may be a bare host:port, an
// http(s) URL, or a ws(s) URL; the path defaults to /ws.
//
// Parameters:
//   - ctx: bounds the connection attempt
//   - addr: monitor address, e.g. "127.0.0.1:47621"
//
// Returns:
//   - *Client: connected client; callers must Close it
//   - error: if the address is unusable or the handshake fails
func Dial(ctx context.Context, addr string) (*Client, error) {
	wsURL, err := feedURL(addr)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to attach to monitor at %s: %w", wsURL, err)
	}

	c := &Client{
		conn:    conn,
		done:    make(chan struct{}),
		updates: make(chan Update, 8),
		errs:    make(chan error, 1),
	}
	go c.readLoop()
	return c, nil
}

// feedURL normalizes addr into a ws(s) URL pointing at /ws.
func feedURL(addr string) (string, error) {
	if !strings.Contains(addr, "://") {
		addr = "ws://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("invalid monitor address %q: %w", addr, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid monitor address %q: unsupported scheme %s", addr, u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// Updates returns the channel of pushed snapshots. It is closed when the
// connection drops or Close is called.
func (c *Client) Updates() <-chan Update {
	return c.updates
}

// Errs reports the read error that ended the stream, if any.
func (c *Client) Errs() <-chan error {
	return c.errs
}

// Close tears down the connection. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		return
	}
	close(c.done)
	c.done = nil
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	_ = c.conn.Close()
}

func (c *Client) readLoop() {
	defer close(c.updates)
	for {
		var upd Update
		if err := c.conn.ReadJSON(&upd); err != nil {
			c.mu.Lock()
			closed := c.done == nil
			c.mu.Unlock()
			if !closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("feed read failed", "error", err)
				select {
				case c.errs <- err:
				default:
				}
			}
			return
		}
		// Drop the oldest buffered update rather than stalling the
		// reader; viewers only care about the latest state.
		select {
		case c.updates <- upd:
		default:
			select {
			case <-c.updates:
			default:
			}
			select {
			case c.updates <- upd:
			default:
			}
		}
	}
}
