package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionRecord pairs a client identifier with the outbound delivery
// endpoint for that connection. It is owned by the registry while the
// session is connected.
type SessionRecord struct {
	ID          uuid.UUID
	RemoteAddr  string
	ConnectedAt time.Time
	Outbound    *Subscription
}

// Registry maps client identifiers to their session records. Duplicate
// identifiers are not rejected: a later registration overwrites an
// earlier one (last-writer-wins).
type Registry struct {
	mu    sync.RWMutex
	store map[uuid.UUID]*SessionRecord
}

func NewRegistry() *Registry {
	return &Registry{store: make(map[uuid.UUID]*SessionRecord)}
}

func (r *Registry) Register(rec *SessionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[rec.ID] = rec
}

// Unregister removes the record if the id still maps to it. A stale
// session that was overwritten by a newer one with the same id cannot
// evict its replacement. Idempotent.
func (r *Registry) Unregister(rec *SessionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.store[rec.ID]; ok && current == rec {
		delete(r.store, rec.ID)
	}
}

func (r *Registry) Get(id uuid.UUID) (*SessionRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.store[id]
	return rec, ok
}

func (r *Registry) List() []*SessionRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*SessionRecord, 0, len(r.store))
	for _, rec := range r.store {
		records = append(records, rec)
	}
	return records
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store)
}
