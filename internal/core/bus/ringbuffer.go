// If you are AI: This file implements RingBuffer, the bounded SPSC queue
// between one Stream and one Subscriber. It is lock-free: a publisher
// goroutine is the sole writer, a pump goroutine is the sole reader, and
// both sides coordinate only through atomics on the read/write cursors.

package bus

import "sync/atomic"

// BackpressureStrategy picks what happens when a subscriber's RingBuffer
// is full and the publisher has another message to hand it.
type BackpressureStrategy uint8

const (
	// BackpressureDropOldest evicts the oldest buffered message to make
	// room for the new one.
	BackpressureDropOldest BackpressureStrategy = iota
	// BackpressureDropNewest discards the incoming message, leaving the
	// buffer's contents untouched.
	BackpressureDropNewest
)

// RingBuffer is a fixed-capacity circular queue of *MediaMessage. Its
// capacity is always rounded up to a power of two so the cursor-to-slot
// mapping is a mask rather than a modulo. One slot is permanently
// reserved so a full buffer and an empty buffer never share a cursor
// state.
type RingBuffer struct {
	slots    []*MediaMessage
	mask     uint32
	writePos uint32
	readPos  uint32
	strategy BackpressureStrategy
	dropped  uint64
}

// NewRingBuffer returns a RingBuffer with capacity rounded up to a power
// of two slots; one slot stays reserved, so it holds one message fewer
// than that (capacity 4 holds 3) before backpressure kicks in.
func NewRingBuffer(capacity uint32, strategy BackpressureStrategy) *RingBuffer {
	size := uint32(1)
	for size < capacity {
		size <<= 1
	}
	return &RingBuffer{
		slots:    make([]*MediaMessage, size),
		mask:     size - 1,
		strategy: strategy,
	}
}

// Write enqueues msg, applying the configured backpressure strategy if
// the buffer is full. It reports whether msg ended up in the buffer;
// under BackpressureDropNewest a full buffer returns false and msg is
// not stored anywhere.
func (rb *RingBuffer) Write(msg *MediaMessage) bool {
	if msg == nil {
		return false
	}

	wp := atomic.LoadUint32(&rb.writePos)
	rp := atomic.LoadUint32(&rb.readPos)
	nextWP := (wp + 1) & rb.mask

	if nextWP == rp&rb.mask {
		atomic.AddUint64(&rb.dropped, 1)
		if rb.strategy != BackpressureDropOldest {
			return false
		}
		atomic.AddUint32(&rb.readPos, 1) // evict the oldest slot
	}

	rb.slots[wp&rb.mask] = msg
	atomic.StoreUint32(&rb.writePos, nextWP)
	return true
}

// Read dequeues the oldest buffered message. ok is false if the buffer
// currently has nothing to read.
func (rb *RingBuffer) Read() (msg *MediaMessage, ok bool) {
	rp := atomic.LoadUint32(&rb.readPos)
	wp := atomic.LoadUint32(&rb.writePos)
	if rp&rb.mask == wp {
		return nil, false
	}
	msg = rb.slots[rp&rb.mask]
	atomic.AddUint32(&rb.readPos, 1)
	return msg, true
}

// Dropped reports the cumulative count of messages evicted or rejected
// by the backpressure strategy.
func (rb *RingBuffer) Dropped() uint64 {
	return atomic.LoadUint64(&rb.dropped)
}

// Available reports how many more messages can be written before the
// buffer (and its reserved slot) is exhausted.
func (rb *RingBuffer) Available() uint32 {
	wp := atomic.LoadUint32(&rb.writePos)
	rp := atomic.LoadUint32(&rb.readPos) & rb.mask
	used := (wp - rp) & rb.mask
	return rb.mask - used // mask == size-1, i.e. capacity minus the reserved slot
}
