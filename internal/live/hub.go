package live

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 2 * time.Second
	readWait  = 60 * time.Second
)

// Hub pushes the latest-values document to every connected WebSocket client
// on a fixed interval. Client messages are read and discarded.
type Hub struct {
	latest   *Latest
	interval time.Duration
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub(latest *Latest, interval time.Duration, logger *log.Logger) *Hub {
	return &Hub{
		latest:   latest,
		interval: interval,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("[live] websocket upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Printf("[live] client %s connected (%d total)", r.RemoteAddr, n)

	go h.read(conn)
}

func (h *Hub) read(conn *websocket.Conn) {
	defer h.remove(conn)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		_ = conn.Close()
		h.logger.Printf("[live] client %s disconnected", conn.RemoteAddr())
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run broadcasts until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case now := <-t.C:
			h.Broadcast(now)
		}
	}
}

// Broadcast sends one document to every client. Nothing is sent while the
// cache is empty. Clients whose write fails are dropped.
func (h *Hub) Broadcast(now time.Time) {
	if h.latest.Len() == 0 {
		return
	}
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	if len(conns) == 0 {
		return
	}

	msg, err := json.Marshal(h.latest.Document(now))
	if err != nil {
		h.logger.Printf("[live] encode document: %v", err)
		return
	}
	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	conns := h.clients
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()
	for c := range conns {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"), time.Now().Add(writeWait))
		_ = c.Close()
	}
}
