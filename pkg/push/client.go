// Package push carries "something changed in area X" signals between a
// backlog server and its clients over a websocket.
package push

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Client keeps a websocket to {base}/push/{area} open and calls every
// registered callback once per change signal. Registration is local: the
// connection stays up while nobody listens and signals are dropped.
type Client struct {
	url    string
	logger *slog.Logger

	mu        sync.Mutex
	listeners map[string]func()
	connected bool

	// MinBackoff and MaxBackoff bound the reconnect delay.
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// NewClient returns a Client for area on the server at base.
func NewClient(base, area string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:        URL(base, area),
		logger:     logger,
		listeners:  make(map[string]func()),
		MinBackoff: 250 * time.Millisecond,
		MaxBackoff: 10 * time.Second,
	}
}

// URL is the push endpoint of area on the server at base.
func URL(base, area string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/push/" + url.PathEscape(area)
}

// Register adds fn to the listeners and returns its id.
func (c *Client) Register(fn func()) string {
	id := uuid.NewString()
	c.mu.Lock()
	c.listeners[id] = fn
	c.mu.Unlock()
	return id
}

// Unregister removes the listener id. Unknown ids are ignored.
func (c *Client) Unregister(id string) {
	c.mu.Lock()
	delete(c.listeners, id)
	c.mu.Unlock()
}

// Listeners is the number of registered listeners.
func (c *Client) Listeners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// Connected reports whether the websocket is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Run connects and dispatches signals until ctx is done, reconnecting with
// exponential backoff when the connection drops.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.MinBackoff
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			backoff = c.MinBackoff
		}
		c.logger.Debug("push disconnected", "url", c.url, "err", err, "retry", backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.MaxBackoff {
			backoff = c.MaxBackoff
		}
	}
}

// session runs one connection. It returns nil when an established connection
// was closed, and an error when dialing failed.
func (c *Client) session(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.CloseNow()

	c.setConnected(true)
	defer c.setConnected(false)
	c.logger.Debug("push connected", "url", c.url)

	for {
		typ, _, err := conn.Read(ctx)
		if err != nil {
			var ce websocket.CloseError
			if errors.As(err, &ce) {
				c.logger.Debug("push closed by server", "code", ce.Code, "reason", ce.Reason)
			}
			return nil
		}
		if typ != websocket.MessageText {
			continue
		}
		c.dispatch()
	}
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

func (c *Client) dispatch() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
