package proto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the message variants on the wire.
type Kind string

const (
	KindLog       Kind = "log"       // handshake: "I am this identifier"
	KindChat      Kind = "chat"      // a relayable chat line
	KindHeartbeat Kind = "heartbeat" // liveness probe, reserved
	KindSystem    Kind = "system"    // server-originated text, reserved
)

type Message struct {
	Type      Kind      `json:"type"`                // variant discriminant
	ClientID  uuid.UUID `json:"client_id,omitzero"`  // sender identity (log, chat)
	Content   string    `json:"content,omitempty"`   // chat/system text
	Timestamp int64     `json:"timestamp,omitempty"` // UNIX timestamp in seconds (chat)
}

func NewLog(clientID uuid.UUID) Message {
	return Message{Type: KindLog, ClientID: clientID}
}

func NewChat(clientID uuid.UUID, content string) Message {
	return Message{Type: KindChat, ClientID: clientID, Content: content, Timestamp: time.Now().Unix()}
}

func NewSystem(content string) Message {
	return Message{Type: KindSystem, Content: content}
}

func NewHeartbeat() Message {
	return Message{Type: KindHeartbeat}
}

// Encode renders the message as a single newline-terminated JSON line.
func (m Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses one line into a Message. It fails when the line is not
// valid JSON or does not match one of the variant shapes; it never panics.
func Decode(line []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		return Message{}, fmt.Errorf("invalid JSON frame: %w", err)
	}
	if err := msg.validate(); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func (m Message) validate() error {
	switch m.Type {
	case KindLog:
		if m.ClientID == uuid.Nil {
			return fmt.Errorf("log message without client id")
		}
	case KindChat:
		if m.ClientID == uuid.Nil {
			return fmt.Errorf("chat message without client id")
		}
		if m.Content == "" {
			return fmt.Errorf("chat message with empty content")
		}
	case KindHeartbeat, KindSystem:
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}
