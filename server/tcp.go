package server

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
)

// TCPTransport accepts raw TCP connections and runs one Session per
// connection. One slow or stuck session never delays accepting the next
// connection.
type TCPTransport struct {
	Addr     string
	hub      *Hub
	registry *Registry
	listener net.Listener

	name        string
	description string

	mu         sync.Mutex
	active     int
	maxClients int
	connected  bool
}

func NewTCPTransport(addr string, hub *Hub, registry *Registry) *TCPTransport {
	return &TCPTransport{Addr: addr, hub: hub, registry: registry}
}

func (t *TCPTransport) Start() error {
	slog.Info("Starting tcp relay", "addr", t.Addr)

	l, err := net.Listen("tcp", t.Addr)
	if err != nil {
		return err
	}
	t.listener = l
	t.setConnected(true)
	defer func() {
		l.Close()
		t.setConnected(false)
	}()

	for {
		conn, err := t.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil // listener closed, shutdown path
			}
			slog.Error("Accept failed", "addr", t.Addr, "error", err.Error())
			continue
		}

		if !t.tryAcquireSlot() {
			slog.Warn("Max clients reached, rejecting connection", "remote_addr", conn.RemoteAddr())
			conn.Close()
			continue
		}

		go t.handleConnection(conn)
	}
}

func (t *TCPTransport) handleConnection(c net.Conn) {
	addr := c.RemoteAddr().String()
	slog.Info("Client connected", "addr", addr, "protocol", "tcp")
	defer t.releaseSlot()

	NewSession(newTCPConn(c), t.hub, t.registry).Run()
}

func (t *TCPTransport) tryAcquireSlot() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.maxClients > 0 && t.active >= t.maxClients {
		return false
	}
	t.active++
	return true
}

func (t *TCPTransport) releaseSlot() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active--
}

func (t *TCPTransport) setConnected(connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = connected
}

func (t *TCPTransport) Shutdown() error {
	slog.Info("Shutting down tcp relay", "addr", t.Addr)
	if t.listener != nil {
		return t.listener.Close()
	}
	return nil
}

func (t *TCPTransport) Meta() TransportMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TransportMetadata{
		Name:        t.name,
		Description: t.description,
		Protocol:    "tcp",
		Address:     t.Addr,
		Sessions:    t.active,
		MaxClients:  t.maxClients,
		Connected:   t.connected,
	}
}

func (t *TCPTransport) SetName(name string) {
	t.name = name
}

func (t *TCPTransport) SetDescription(description string) {
	t.description = description
}

func (t *TCPTransport) SetMaxClients(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maxClients = n
}

// tcpConn adapts a net.Conn to the line-framed Conn the session runs over.
type tcpConn struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

func newTCPConn(c net.Conn) *tcpConn {
	return &tcpConn{conn: c, scanner: bufio.NewScanner(c)}
}

func (c *tcpConn) ReadLine() ([]byte, error) {
	if c.scanner.Scan() {
		return c.scanner.Bytes(), nil
	}
	if err := c.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (c *tcpConn) WriteLine(line []byte) error {
	_, err := c.conn.Write(line)
	return err
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}

func (c *tcpConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
