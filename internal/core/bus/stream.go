// If you are AI: This file implements Stream, the single-publisher/
// multi-subscriber fanout point keyed by app+name in Registry. A live
// publisher's AV frames are written to every attached Subscriber's
// RingBuffer; IsInit frames (sequence headers, onMetaData) are additionally
// cached so a subscriber attaching mid-stream still gets decodable output.

package bus

import "sync"

// Publisher identifies the single connection currently allowed to feed a
// Stream. Only its id is tracked here; the RTMP-level plumbing
// (internal/svc/rtmp.Publisher) lives above this package.
type Publisher struct {
	id uint64
}

// Stream fans one publisher's media out to any number of subscribers.
// Everything here is guarded by mu except the RingBuffer writes
// themselves, which are lock-free (see ringbuffer.go).
type Stream struct {
	key StreamKey

	mu          sync.RWMutex
	publisher   *Publisher
	subscribers map[uint64]*Subscriber
	nextSubID   uint64

	// Cloned, long-lived copies of the most recent IsInit message per
	// type, replayed to subscribers that attach after the publisher
	// already sent them.
	initVideo *MediaMessage
	initAudio *MediaMessage
	initMeta  *MediaMessage
}

// NewStream returns an empty stream identified by key.
func NewStream(key StreamKey) *Stream {
	return &Stream{
		key:         key,
		subscribers: make(map[uint64]*Subscriber),
		nextSubID:   1,
	}
}

// Key returns the app/name pair this stream is registered under.
func (s *Stream) Key() StreamKey { return s.key }

// AttachPublisher binds id as the stream's publisher. It fails (returns
// false) if a publisher is already attached — RTMP allows at most one
// publisher per stream name.
func (s *Stream) AttachPublisher(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publisher != nil {
		return false
	}
	s.publisher = &Publisher{id: id}
	return true
}

// DetachPublisher releases the current publisher and drops every cached
// init message, since they belonged to that publisher's codec session.
func (s *Stream) DetachPublisher() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = nil
	s.initVideo, s.initAudio, s.initMeta = nil, nil, nil
}

// HasPublisher reports whether a publisher is currently attached.
func (s *Stream) HasPublisher() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.publisher != nil
}

// AttachSubscriber registers a new Subscriber with the given buffer
// capacity/backpressure policy and pre-seeds its buffer with whatever
// init messages are currently cached, so a late joiner sees metadata and
// sequence headers before its first live frame.
func (s *Stream) AttachSubscriber(capacity uint32, strategy BackpressureStrategy) (*Subscriber, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	sub := NewSubscriber(id, capacity, strategy)

	for _, cached := range [...]*MediaMessage{s.initMeta, s.initVideo, s.initAudio} {
		if cached != nil {
			sub.Buffer().Write(cached)
		}
	}

	s.subscribers[id] = sub
	return sub, id
}

// DetachSubscriber removes the subscriber registered under id.
func (s *Stream) DetachSubscriber(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, id)
}

// Publish fans msg out to every attached subscriber's buffer. This is
// the hot path for every audio/video frame a publisher sends, so it
// takes only a read lock to snapshot the subscriber set; caching an
// IsInit message (rare — once per sequence header) is the one path that
// needs the write lock.
func (s *Stream) Publish(msg *MediaMessage) {
	if msg == nil {
		return
	}
	if msg.IsInit {
		s.cacheInitMessage(msg)
	}

	s.mu.RLock()
	targets := make([]*Subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		targets = append(targets, sub)
	}
	s.mu.RUnlock()

	for _, sub := range targets {
		sub.Buffer().Write(msg)
	}
}

// cacheInitMessage stores a private clone of msg as the replay copy for
// its type. Cloning is required since the original msg is owned by the
// publish call and returned to the pool once fanout completes.
func (s *Stream) cacheInitMessage(msg *MediaMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch msg.Type {
	case MessageTypeVideo:
		s.initVideo = msg.Clone()
	case MessageTypeAudio:
		s.initAudio = msg.Clone()
	case MessageTypeMetadata:
		s.initMeta = msg.Clone()
	}
}

// SubscriberCount reports how many subscribers are currently attached.
func (s *Stream) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// IsEmpty reports whether the stream has neither a publisher nor any
// subscribers, i.e. whether Registry may safely reap it.
func (s *Stream) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.publisher == nil && len(s.subscribers) == 0
}
