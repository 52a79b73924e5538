package push

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Hub is the server side of the push channel: it keeps the websocket
// connections of every area and broadcasts change signals to them.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]map[*websocket.Conn]struct{}
}

// NewHub returns an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{logger: logger, clients: make(map[string]map[*websocket.Conn]struct{})}
}

// Serve upgrades the request to a websocket subscribed to area and blocks
// until the client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, area string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn("push upgrade failed", "area", area, "err", err)
		return
	}

	h.mu.Lock()
	if h.clients[area] == nil {
		h.clients[area] = make(map[*websocket.Conn]struct{})
	}
	h.clients[area][conn] = struct{}{}
	count := len(h.clients[area])
	h.mu.Unlock()
	h.logger.Debug("push client connected", "area", area, "clients", count)

	defer h.remove(area, conn)
	for {
		// clients never send anything meaningful; reading detects disconnects
		if _, _, err := conn.Read(r.Context()); err != nil {
			return
		}
	}
}

// Notify sends one change signal to every connection of area.
func (h *Hub) Notify(area string) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[area]))
	for conn := range h.clients[area] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := conn.Write(ctx, websocket.MessageText, []byte(area))
		cancel()
		if err != nil {
			h.logger.Debug("push send failed", "area", area, "err", err)
			h.remove(area, conn)
		}
	}
}

// Clients is the number of connections subscribed to area.
func (h *Hub) Clients(area string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[area])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[string]map[*websocket.Conn]struct{})
	h.mu.Unlock()
	for _, conns := range all {
		for conn := range conns {
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
	}
}

func (h *Hub) remove(area string, conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[area][conn]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients[area], conn)
	if len(h.clients[area]) == 0 {
		delete(h.clients, area)
	}
	h.mu.Unlock()
	_ = conn.Close(websocket.StatusNormalClosure, "")
}
