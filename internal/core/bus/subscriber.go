// If you are AI: This file defines Subscriber, a Stream consumer backed by
// its own RingBuffer so one slow reader (a stalled player, a laggy relay
// push) never blocks the publisher or any other subscriber.

package bus

// Subscriber is one attachment point on a Stream: a buffered message
// queue plus an optional pull-based handler for callers that prefer to
// be driven rather than to poll.
type Subscriber struct {
	id        uint64
	buffer    *RingBuffer
	onMessage func(*MediaMessage)
}

// NewSubscriber allocates a Subscriber with its own RingBuffer of the
// given capacity and backpressure strategy.
func NewSubscriber(id uint64, capacity uint32, strategy BackpressureStrategy) *Subscriber {
	return &Subscriber{id: id, buffer: NewRingBuffer(capacity, strategy)}
}

// ID returns the subscriber's identifier, as assigned by Stream.AttachSubscriber.
func (s *Subscriber) ID() uint64 { return s.id }

// Buffer exposes the subscriber's RingBuffer so Stream can write to it
// directly on the publish hot path.
func (s *Subscriber) Buffer() *RingBuffer { return s.buffer }

// SetMessageHandler installs handler, invoked once per message by Process.
func (s *Subscriber) SetMessageHandler(handler func(*MediaMessage)) {
	s.onMessage = handler
}

// Process drains up to maxMessages from the buffer, invoking the
// installed handler (if any) for each, and reports how many it drained.
// The handler takes ownership of each message it receives.
func (s *Subscriber) Process(maxMessages int) int {
	n := 0
	for ; n < maxMessages; n++ {
		msg, ok := s.buffer.Read()
		if !ok {
			break
		}
		if s.onMessage != nil {
			s.onMessage(msg)
		}
	}
	return n
}

// Dropped reports how many messages this subscriber's buffer has
// discarded under backpressure.
func (s *Subscriber) Dropped() uint64 {
	return s.buffer.Dropped()
}
