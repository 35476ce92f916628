// If you are AI: This file implements the per-connection glue between
// a bus.Subscriber's drained MediaMessage stream and a WebSocket
// connection: every message becomes one binary-frame FLV tag.

package wsflv

import (
	"time"

	"nonchalant/internal/core/bus"
	"nonchalant/internal/core/protocol/flv"
)

const (
	wsBinaryFrame            = 2
	subscriberBufferCapacity = 1000
)

// WebSocketConn is the slice of *websocket.Conn this package depends
// on, kept narrow so tests can substitute a fake.
type WebSocketConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Subscriber streams one attached bus.Stream to a WebSocketConn as a
// sequence of binary FLV-tag frames, preceded by one frame carrying
// the FLV header and leading PreviousTagSize.
type Subscriber struct {
	conn          WebSocketConn
	stream        *bus.Stream
	busSubscriber *bus.Subscriber
	subscriberID  uint64
	headerWritten bool
}

// NewSubscriber wraps conn, ready to Attach to stream.
func NewSubscriber(conn WebSocketConn, stream *bus.Stream) *Subscriber {
	return &Subscriber{conn: conn, stream: stream}
}

// Attach registers the subscriber on its stream with a bounded,
// drop-oldest buffer — the same policy httpflv uses, so a slow
// WebSocket viewer degrades the same way a slow HTTP one does.
func (s *Subscriber) Attach() uint64 {
	sub, id := s.stream.AttachSubscriber(subscriberBufferCapacity, bus.BackpressureDropOldest)
	s.busSubscriber, s.subscriberID = sub, id
	return id
}

// Detach is a no-op if Attach was never called.
func (s *Subscriber) Detach() {
	if s.stream == nil || s.subscriberID == 0 {
		return
	}
	s.stream.DetachSubscriber(s.subscriberID)
	s.busSubscriber, s.subscriberID = nil, 0
}

// WriteHeader sends the FLV signature/header and the leading
// zero-length PreviousTagSize as a single binary frame, exactly once.
func (s *Subscriber) WriteHeader(hasAudio, hasVideo bool) error {
	if s.headerWritten {
		return nil
	}
	header := flv.NewHeader(hasAudio, hasVideo).Bytes()
	frame := make([]byte, len(header)+4)
	copy(frame, header)
	if err := s.conn.WriteMessage(wsBinaryFrame, frame); err != nil {
		return err
	}
	s.headerWritten = true
	return nil
}

// ProcessMessages pumps buffered messages to the client, one FLV tag
// per binary frame, until a write fails — the signal a WebSocket
// client has gone away.
func (s *Subscriber) ProcessMessages() error {
	if s.busSubscriber == nil {
		return nil
	}
	buf := s.busSubscriber.Buffer()
	for {
		msg, ok := buf.Read()
		if !ok {
			// Poll rather than busy-spin; the ring buffer has no wakeup
			// channel of its own.
			time.Sleep(5 * time.Millisecond)
			continue
		}
		tag := flv.MuxMessage(msg)
		if tag == nil {
			continue
		}
		if err := s.conn.WriteMessage(wsBinaryFrame, tag.Bytes()); err != nil {
			return err
		}
	}
}
