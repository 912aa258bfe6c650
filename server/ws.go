package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// WSTransport is a WebSocket gateway carrying the same line protocol:
// each text frame holds exactly one message line. Sessions upgraded here
// share the hub and registry with the TCP path.
type WSTransport struct {
	Addr     string
	hub      *Hub
	registry *Registry
	server   *http.Server

	name        string
	description string

	mu         sync.Mutex
	active     int
	maxClients int
	connected  bool
}

func NewWSTransport(addr string, hub *Hub, registry *Registry) *WSTransport {
	return &WSTransport{Addr: addr, hub: hub, registry: registry}
}

func (t *WSTransport) Start() error {
	slog.Info("Starting WebSocket gateway", "addr", t.Addr)

	r := chi.NewRouter()
	r.Get("/ws", t.handleWebSocket)

	t.server = &http.Server{
		Addr:    t.Addr,
		Handler: r,
	}

	t.setConnected(true)
	defer t.setConnected(false)

	err := t.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (t *WSTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection", "error", err.Error())
		return
	}

	if !t.tryAcquireSlot() {
		slog.Warn("Max clients reached, rejecting connection", "remote_addr", r.RemoteAddr)
		conn.Close()
		return
	}

	go t.handleConnection(conn, r.RemoteAddr)
}

func (t *WSTransport) handleConnection(conn *websocket.Conn, remoteAddr string) {
	slog.Info("Client connected", "addr", remoteAddr, "protocol", "websocket")
	defer t.releaseSlot()

	NewSession(newWSConn(conn, remoteAddr), t.hub, t.registry).Run()
}

func (t *WSTransport) tryAcquireSlot() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.maxClients > 0 && t.active >= t.maxClients {
		return false
	}
	t.active++
	return true
}

func (t *WSTransport) releaseSlot() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active--
}

func (t *WSTransport) setConnected(connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = connected
}

func (t *WSTransport) Shutdown() error {
	slog.Info("Shutting down WebSocket gateway", "addr", t.Addr)
	if t.server != nil {
		return t.server.Close()
	}
	return nil
}

func (t *WSTransport) Meta() TransportMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TransportMetadata{
		Name:        t.name,
		Description: t.description,
		Protocol:    "websocket",
		Address:     t.Addr,
		Sessions:    t.active,
		MaxClients:  t.maxClients,
		Connected:   t.connected,
	}
}

func (t *WSTransport) SetName(name string) {
	t.name = name
}

func (t *WSTransport) SetDescription(description string) {
	t.description = description
}

func (t *WSTransport) SetMaxClients(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maxClients = n
}

// wsConn adapts a websocket connection to the line-framed Conn interface.
// One WebSocket text frame carries one message line.
type wsConn struct {
	conn   *websocket.Conn
	remote string
}

func newWSConn(conn *websocket.Conn, remote string) *wsConn {
	return &wsConn{conn: conn, remote: remote}
}

func (c *wsConn) ReadLine() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *wsConn) WriteLine(line []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, bytes.TrimSuffix(line, []byte("\n")))
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) RemoteAddr() string {
	return c.remote
}
