package server

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/askova/chatrelay/proto"
)

const DefaultQueueSize = 64

// Subscription is one subscriber's private bounded queue of pending
// outbound messages. It observes only messages published after the
// Subscribe call.
type Subscription struct {
	ch      chan proto.Message
	dropped atomic.Uint64
}

// C is the receive side of the queue. It is closed when the subscription
// is removed from the hub.
func (s *Subscription) C() <-chan proto.Message {
	return s.ch
}

// Dropped reports how many messages were discarded because the queue was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Hub is the shared broadcast channel: every published message is fanned
// out to every active subscription. The hub holds no per-client state;
// sender exclusion is the subscriber's job.
type Hub struct {
	mu        sync.RWMutex
	subs      map[*Subscription]struct{}
	queueSize int
}

func NewHub(queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Hub{
		subs:      make(map[*Subscription]struct{}),
		queueSize: queueSize,
	}
}

func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan proto.Message, h.queueSize)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[sub] = struct{}{}
	return sub
}

// Publish delivers msg to every active subscription. A subscriber whose
// queue is full misses this message; the publisher is never made to wait
// on a slow consumer.
func (h *Hub) Publish(msg proto.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sentCount := 0
	for sub := range h.subs {
		select {
		case sub.ch <- msg:
			sentCount++
		default:
			sub.dropped.Add(1)
			slog.Warn("Subscriber queue full, dropping message", "sender", msg.ClientID, "dropped", sub.dropped.Load())
		}
	}
	slog.Debug("Message published",
		"type", msg.Type,
		"sender", msg.ClientID,
		"subscribers", sentCount,
	)
}

// Unsubscribe removes the subscription and closes its queue. Calling it
// twice for the same subscription is a no-op the second time.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
