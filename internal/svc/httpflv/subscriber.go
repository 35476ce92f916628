// If you are AI: This file implements the per-connection glue between a
// bus.Subscriber's drained MediaMessage stream and an HTTP response
// body: every message becomes one muxed FLV tag written to the
// client's socket.

package httpflv

import (
	"bufio"
	"io"
	"time"

	"nonchalant/internal/core/bus"
	"nonchalant/internal/core/protocol/flv"
)

// subscriberBufferCapacity bounds how many pending messages one
// HTTP-FLV client may lag behind before the drop-oldest policy starts
// discarding frames on its behalf.
const subscriberBufferCapacity = 1000

// Subscriber streams one attached bus.Stream to an io.Writer as FLV:
// a file header, a zero previous-tag-size, and then one tag per
// buffered message until the write side fails.
type Subscriber struct {
	writer        *bufio.Writer
	stream        *bus.Stream
	busSubscriber *bus.Subscriber
	subscriberID  uint64
	headerWritten bool
}

// NewSubscriber wraps w, ready to Attach to stream.
func NewSubscriber(w io.Writer, stream *bus.Stream) *Subscriber {
	return &Subscriber{writer: bufio.NewWriter(w), stream: stream}
}

// Attach registers the subscriber on its stream with a bounded,
// drop-oldest buffer, so one stalled HTTP client can never stall the
// publisher or any other viewer.
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

// WriteHeader emits the FLV signature/header plus the leading
// zero-length PreviousTagSize, exactly once. Later calls are a no-op.
func (s *Subscriber) WriteHeader(hasAudio, hasVideo bool) error {
	if s.headerWritten {
		return nil
	}
	if _, err := s.writer.Write(flv.NewHeader(hasAudio, hasVideo).Bytes()); err != nil {
		return err
	}
	if _, err := s.writer.Write(make([]byte, 4)); err != nil {
		return err
	}
	if err := s.writer.Flush(); err != nil {
		return err
	}
	s.headerWritten = true
	return nil
}

// ProcessMessages pumps buffered messages to the client until a write
// fails, which is how an HTTP-FLV disconnect is detected — net/http
// gives no other signal once headers are sent and the body is being
// streamed by hand. Unmuxable message types are skipped rather than
// treated as an error.
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
		if _, err := s.writer.Write(tag.Bytes()); err != nil {
			return err
		}
		if err := s.writer.Flush(); err != nil {
			return err
		}
	}
}

// Buffer exposes the underlying ring buffer, or nil before Attach.
func (s *Subscriber) Buffer() *bus.RingBuffer {
	if s.busSubscriber == nil {
		return nil
	}
	return s.busSubscriber.Buffer()
}
