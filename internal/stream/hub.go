// Package stream pushes frame reports to websocket clients.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"

	"github.com/smazurov/scalerwatch/internal/events"
	"github.com/smazurov/scalerwatch/internal/report"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10

	queueSize = 16
)

type client struct {
	writeMu sync.Mutex
	binary  bool
}

// Hub tracks websocket clients and broadcasts reports to them.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger
	latest   func() (report.Report, bool)

	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

// NewHub creates a hub. latest, when set, supplies the report sent to new clients.
func NewHub(logger *slog.Logger, latest func() (report.Report, bool)) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		latest:  latest,
		clients: make(map[*websocket.Conn]*client),
	}
}

// ServeHTTP upgrades the request. ?format=cbor selects binary CBOR frames.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c := &client{binary: r.URL.Query().Get("format") == "cbor"}
	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()
	h.logger.Debug("Websocket client connected", "remote", r.RemoteAddr, "cbor", c.binary)

	if h.latest != nil {
		if rep, ok := h.latest(); ok {
			if msgType, payload, err := encode(rep, c.binary); err == nil {
				_ = h.write(conn, c, msgType, payload)
			}
		}
	}

	go h.serve(conn, c)
}

func (h *Hub) serve(conn *websocket.Conn, c *client) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := h.write(conn, c, websocket.PingMessage, nil); err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}()
	defer close(done)
	defer h.remove(conn)

	// Clients never send anything useful; reading keeps pongs and close frames flowing.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Run broadcasts every frame report published on bus until ctx ends.
func (h *Hub) Run(ctx context.Context, bus *events.Bus) {
	ch := make(chan events.FrameReportEvent, queueSize)
	unsub := events.SubscribeToChannel(bus, ch)
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			h.Close()
			return
		case e := <-ch:
			h.Broadcast(e.Report)
		}
	}
}

// Broadcast sends r to every client, dropping clients whose write fails.
func (h *Hub) Broadcast(r report.Report) {
	var jsonPayload, cborPayload []byte

	var stale []*websocket.Conn
	h.mu.Lock()
	for conn, c := range h.clients {
		payload, msgType := &jsonPayload, websocket.TextMessage
		if c.binary {
			payload, msgType = &cborPayload, websocket.BinaryMessage
		}
		if *payload == nil {
			_, p, err := encode(r, c.binary)
			if err != nil {
				h.logger.Warn("Failed to encode report", "cbor", c.binary, "error", err)
				continue
			}
			*payload = p
		}
		if err := h.write(conn, c, msgType, *payload); err != nil {
			stale = append(stale, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range stale {
		h.remove(conn)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	for _, conn := range conns {
		h.remove(conn)
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		h.logger.Debug("Websocket client disconnected", "remote", conn.RemoteAddr().String())
	}
	_ = conn.Close()
}

func (h *Hub) write(conn *websocket.Conn, c *client, msgType int, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(msgType, payload)
}

func encode(r report.Report, binary bool) (int, []byte, error) {
	if binary {
		p, err := cbor.Marshal(r)
		return websocket.BinaryMessage, p, err
	}
	p, err := json.Marshal(r)
	return websocket.TextMessage, p, err
}
