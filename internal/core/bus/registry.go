// If you are AI: This file implements Registry, the process-wide map from
// StreamKey to *Stream shared by every ingest/egress surface (RTMP publish,
// HTTP-FLV, WebSocket-FLV, relay). It is the only piece of bus state that
// crosses connection boundaries, hence the mutex.

package bus

import "sync"

// Registry is a concurrency-safe StreamKey -> *Stream map. Streams are
// created lazily on first publish/subscribe and torn down once both sides
// have detached.
type Registry struct {
	mu      sync.RWMutex
	streams map[StreamKey]*Stream
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{streams: make(map[StreamKey]*Stream)}
}

// GetOrCreate returns the stream for key, creating and storing a fresh one
// if none exists yet. The bool result reports whether a new stream was
// created.
func (r *Registry) GetOrCreate(key StreamKey) (*Stream, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.streams[key]; ok {
		return existing, false
	}
	s := NewStream(key)
	r.streams[key] = s
	return s, true
}

// Get returns the stream for key, or nil if no stream is registered
// under it.
func (r *Registry) Get(key StreamKey) *Stream {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.streams[key]
}

// Remove deletes key's stream, but only once it has neither a publisher
// nor subscribers attached. Reports whether the removal happened.
func (r *Registry) Remove(key StreamKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.streams[key]
	if !ok || !s.IsEmpty() {
		return false
	}
	delete(r.streams, key)
	return true
}

// RemoveIfEmpty is Remove under the name callers reach for after
// detaching a publisher or subscriber.
func (r *Registry) RemoveIfEmpty(key StreamKey) bool {
	return r.Remove(key)
}

// Count reports how many streams are currently registered.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.streams)
}

// List returns a snapshot of every registered stream key, in no
// particular order.
func (r *Registry) List() []StreamKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]StreamKey, 0, len(r.streams))
	for k := range r.streams {
		keys = append(keys, k)
	}
	return keys
}
