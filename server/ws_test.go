package server

import (
	"fmt"
	"testing"
	"time"

	"github.com/askova/chatrelay/proto"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func startWSRelay(t *testing.T, hub *Hub, registry *Registry) string {
	t.Helper()
	addr := fmt.Sprintf("127.0.0.1:%d", getRandomPort(t))
	transport := NewWSTransport(addr, hub, registry)
	go func() {
		if err := transport.Start(); err != nil {
			t.Errorf("WebSocket transport failed to start: %v", err)
		}
	}()
	t.Cleanup(func() { transport.Shutdown() })
	time.Sleep(100 * time.Millisecond)
	return addr
}

func dialWS(t *testing.T, addr string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	if err != nil {
		t.Fatalf("Failed to dial WebSocket gateway: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func wsSend(t *testing.T, conn *websocket.Conn, msg proto.Message) {
	t.Helper()
	line, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, line[:len(line)-1]); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}
}

func wsRead(t *testing.T, conn *websocket.Conn, timeout time.Duration) (proto.Message, bool) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return proto.Message{}, false
	}
	msg, err := proto.Decode(data)
	if err != nil {
		t.Fatalf("Gateway sent undecodable frame %q: %v", data, err)
	}
	return msg, true
}

func TestWS_HandshakeAndRelay(t *testing.T) {
	hub := NewHub(64)
	registry := NewRegistry()
	addr := startWSRelay(t, hub, registry)

	aID, bID := uuid.New(), uuid.New()
	a := dialWS(t, addr)
	wsSend(t, a, proto.NewLog(aID))
	b := dialWS(t, addr)
	wsSend(t, b, proto.NewLog(bID))
	waitForRegistryLen(t, registry, 2)

	wsSend(t, a, proto.NewChat(aID, "over websocket"))

	msg, ok := wsRead(t, b, 2*time.Second)
	if !ok {
		t.Fatal("B never received A's chat")
	}
	if msg.ClientID != aID || msg.Content != "over websocket" {
		t.Errorf("Unexpected delivery: %+v", msg)
	}

	if echo, ok := wsRead(t, a, 300*time.Millisecond); ok {
		t.Errorf("A received its own message back: %+v", echo)
	}
}

func TestWS_CrossTransportRelay(t *testing.T) {
	hub := NewHub(64)
	registry := NewRegistry()
	tcpAddr := startTCPRelay(t, hub, registry)
	wsAddr := startWSRelay(t, hub, registry)

	tcpPeer := dialPeer(t, tcpAddr)
	tcpPeer.handshake(t)

	wsID := uuid.New()
	wsPeer := dialWS(t, wsAddr)
	wsSend(t, wsPeer, proto.NewLog(wsID))
	waitForRegistryLen(t, registry, 2)

	// Both transports share one hub: a TCP chat reaches the WS client.
	tcpPeer.sendMessage(t, proto.NewChat(tcpPeer.id, "hello from tcp"))

	msg, ok := wsRead(t, wsPeer, 2*time.Second)
	if !ok {
		t.Fatal("WebSocket client never received the TCP chat")
	}
	if msg.ClientID != tcpPeer.id || msg.Content != "hello from tcp" {
		t.Errorf("Unexpected delivery: %+v", msg)
	}

	wsSend(t, wsPeer, proto.NewChat(wsID, "hello from ws"))
	reply, ok := tcpPeer.readMessage(t, 2*time.Second)
	if !ok {
		t.Fatal("TCP client never received the WebSocket chat")
	}
	if reply.ClientID != wsID || reply.Content != "hello from ws" {
		t.Errorf("Unexpected delivery: %+v", reply)
	}
}

func TestWS_CleanupOnDisconnect(t *testing.T) {
	hub := NewHub(64)
	registry := NewRegistry()
	addr := startWSRelay(t, hub, registry)

	id := uuid.New()
	conn := dialWS(t, addr)
	wsSend(t, conn, proto.NewLog(id))
	waitForRegistryLen(t, registry, 1)

	conn.Close()
	waitForRegistryLen(t, registry, 0)
}
