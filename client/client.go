package client

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/askova/chatrelay/proto"
	"github.com/google/uuid"
)

// ErrClientClosed is returned by Send and Receive once the connection is
// gone. The client never reconnects on its own.
var ErrClientClosed = errors.New("client closed")

// Client is the consumer-facing side of the relay protocol. Connect
// generates a fresh identifier, performs the log handshake, and runs an
// outbound and an inbound loop until the connection dies.
type Client struct {
	id        uuid.UUID
	transport Transport

	outgoing chan string
	incoming chan proto.Message

	done      chan struct{}
	closeOnce sync.Once
}

// Connect dials the relay at addr over the given transport and starts the
// background relay loops. The log handshake is the first line on the wire.
func Connect(addr string, t Transport) (*Client, error) {
	if err := t.Connect(addr); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}

	c := &Client{
		id:        uuid.New(),
		transport: t,
		outgoing:  make(chan string, 100),
		incoming:  make(chan proto.Message, 100),
		done:      make(chan struct{}),
	}

	go c.outboundLoop()
	go c.inboundLoop()

	return c, nil
}

// ID is the self-generated identifier this client handshakes with.
func (c *Client) ID() uuid.UUID {
	return c.id
}

// Send enqueues text for delivery as a chat message. It fails only once
// the connection is gone.
func (c *Client) Send(text string) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	select {
	case c.outgoing <- text:
		return nil
	case <-c.done:
		return ErrClientClosed
	}
}

// Receive blocks until the next inbound message is available. Once the
// client is closed and the queue drained it returns ErrClientClosed.
func (c *Client) Receive() (proto.Message, error) {
	select {
	case msg := <-c.incoming:
		return msg, nil
	default:
	}
	select {
	case msg := <-c.incoming:
		return msg, nil
	case <-c.done:
		// Drain anything that arrived before the connection died.
		select {
		case msg := <-c.incoming:
			return msg, nil
		default:
			return proto.Message{}, ErrClientClosed
		}
	}
}

// TryReceive returns the next inbound message without suspending, or
// false when none is queued.
func (c *Client) TryReceive() (proto.Message, bool) {
	select {
	case msg := <-c.incoming:
		return msg, true
	default:
		return proto.Message{}, false
	}
}

// Close tears down the connection. Subsequent Sends fail; Receive drains
// what is already queued, then fails.
func (c *Client) Close() error {
	c.shutdown()
	return nil
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.transport.Close()
	})
}

func (c *Client) outboundLoop() {
	line, err := proto.NewLog(c.id).Encode()
	if err != nil {
		slog.Error("Failed to encode handshake", "error", err.Error())
		c.shutdown()
		return
	}
	if err := c.transport.WriteLine(line); err != nil {
		slog.Warn("Failed to send handshake", "error", err.Error())
		c.shutdown()
		return
	}

	for {
		select {
		case text := <-c.outgoing:
			line, err := proto.NewChat(c.id, text).Encode()
			if err != nil {
				slog.Warn("Failed to encode outgoing message", "error", err.Error())
				continue
			}
			if err := c.transport.WriteLine(line); err != nil {
				slog.Warn("Connection lost while sending", "error", err.Error())
				c.shutdown()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) inboundLoop() {
	for {
		line, err := c.transport.ReadLine()
		if err != nil {
			c.shutdown()
			return
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		msg, err := proto.Decode(line)
		if err != nil {
			slog.Warn("Dropping undecodable message", "error", err.Error(), "data", string(line))
			continue
		}
		select {
		case c.incoming <- msg:
		case <-c.done:
			return
		}
	}
}
