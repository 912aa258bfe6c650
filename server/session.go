package server

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/askova/chatrelay/proto"
	"github.com/google/uuid"
)

// Conn is one accepted line-framed connection, independent of the
// carrying transport. ReadLine returns one message line without its
// terminator; the returned slice is only valid until the next call.
type Conn interface {
	ReadLine() ([]byte, error)
	WriteLine(line []byte) error
	Close() error
	RemoteAddr() string
}

// Session owns one accepted connection from handshake to teardown. After
// a successful handshake it runs an inbound loop (read, decode, republish
// to the hub) and an outbound loop (relay hub deliveries to the peer)
// concurrently; whichever loop ends first tears the session down.
type Session struct {
	conn     Conn
	hub      *Hub
	registry *Registry
	id       uuid.UUID
}

func NewSession(conn Conn, hub *Hub, registry *Registry) *Session {
	return &Session{conn: conn, hub: hub, registry: registry}
}

func (s *Session) Run() {
	defer s.conn.Close()
	addr := s.conn.RemoteAddr()

	id, err := s.handshake()
	if err != nil {
		slog.Warn("Handshake failed", "addr", addr, "error", err.Error())
		return
	}
	s.id = id

	sub := s.hub.Subscribe()
	rec := &SessionRecord{ID: id, RemoteAddr: addr, ConnectedAt: time.Now(), Outbound: sub}
	s.registry.Register(rec)
	slog.Info("Client registered", "id", id, "addr", addr)

	errc := make(chan error, 2)
	go func() { errc <- s.outbound(sub) }()
	go func() { errc <- s.inbound() }()

	// First loop to finish wins: a broken write path must not leave a
	// session that can still read but never speak, and vice versa.
	first := <-errc

	s.registry.Unregister(rec)
	s.conn.Close()         // unblocks a reader stuck in ReadLine
	s.hub.Unsubscribe(sub) // closes the queue, unblocks the relay loop
	<-errc

	if first != nil {
		slog.Info("Client disconnected", "id", id, "addr", addr, "reason", first.Error())
	} else {
		slog.Info("Client disconnected", "id", id, "addr", addr)
	}
}

// handshake reads exactly one message line, which must be a log variant
// carrying the client's self-generated identifier. Anything else ends the
// connection before registration.
func (s *Session) handshake() (uuid.UUID, error) {
	line, err := s.readLine()
	if err != nil {
		return uuid.Nil, fmt.Errorf("reading handshake: %w", err)
	}
	msg, err := proto.Decode(line)
	if err != nil {
		return uuid.Nil, fmt.Errorf("decoding handshake: %w", err)
	}
	if msg.Type != proto.KindLog {
		return uuid.Nil, fmt.Errorf("expected log message, got %q", msg.Type)
	}
	return msg.ClientID, nil
}

// readLine returns the next non-empty line from the peer.
func (s *Session) readLine() ([]byte, error) {
	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		return line, nil
	}
}

func (s *Session) inbound() error {
	for {
		line, err := s.readLine()
		if err != nil {
			return err
		}
		msg, err := proto.Decode(line)
		if err != nil {
			slog.Warn("Invalid message received", "id", s.id, "error", err.Error(), "data", string(line))
			continue
		}
		if msg.Type != proto.KindChat {
			slog.Debug("Ignoring non-chat message", "id", s.id, "type", msg.Type)
			continue
		}
		// Never trust a client-supplied sender id: override with the
		// handshake identity.
		msg.ClientID = s.id
		s.hub.Publish(msg)
	}
}

func (s *Session) outbound(sub *Subscription) error {
	for msg := range sub.C() {
		if msg.Type != proto.KindChat {
			continue
		}
		if msg.ClientID == s.id {
			continue // own messages are not echoed back
		}
		line, err := msg.Encode()
		if err != nil {
			slog.Warn("Failed to encode outbound message", "id", s.id, "error", err.Error())
			continue
		}
		if err := s.conn.WriteLine(line); err != nil {
			return err
		}
	}
	return nil // hub detached this subscription
}
