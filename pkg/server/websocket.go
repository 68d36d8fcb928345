package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dorfbook/simparse/pkg/library"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsMaxClients   = 100
)

// ClientGauge tracks the number of connected websocket clients.
type ClientGauge interface {
	SetWebsocketClients(n int)
}

// Hub streams library events to websocket clients. Each client gets the
// current snapshot summary on connect and one message per reload after.
type Hub struct {
	library  *library.Library
	gauge    ClientGauge
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
	stop    chan struct{}
}

// NewHub creates a hub over lib. gauge may be nil.
func NewHub(lib *library.Library, gauge ClientGauge, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		library: lib,
		gauge:   gauge,
		logger:  logger.With("component", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*websocket.Conn]struct{}),
		stop:    make(chan struct{}),
	}
	return h
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection and streams events until the client
// disconnects or the hub is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.library == nil {
		writeError(w, http.StatusNotFound, ErrorTypeNotFound, "rule library is not enabled")
		return
	}
	if h.Clients() >= wsMaxClients {
		writeError(w, http.StatusServiceUnavailable, ErrorTypeUnavailable, "maximum websocket clients reached")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if !h.add(conn) {
		return
	}
	defer h.remove(conn)

	events, unsubscribe := h.library.Subscribe()
	defer unsubscribe()

	if snap := h.library.Snapshot(); snap != nil {
		hello := library.Event{
			Type:    library.EventReloaded,
			Version: snap.Version,
			Files:   len(snap.Files),
			Rules:   snap.RuleCount(),
			Trigger: "connect",
			At:      snap.LoadedAt,
		}
		if err := h.write(conn, hello); err != nil {
			return
		}
	}

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// reading is required to notice disconnects and handle control frames
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Debug("websocket read error", "error", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				h.closeConn(conn)
				return
			}
			if err := h.write(conn, event); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-readDone:
			return

		case <-h.stop:
			h.closeConn(conn)
			return
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		close(h.stop)
	}
}

func (h *Hub) write(conn *websocket.Conn, event library.Event) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(event)
}

func (h *Hub) closeConn(conn *websocket.Conn) {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) add(conn *websocket.Conn) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.setGauge(n)
	return true
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()

	h.setGauge(n)
}

func (h *Hub) setGauge(n int) {
	if h.gauge != nil {
		h.gauge.SetWebsocketClients(n)
	}
}
