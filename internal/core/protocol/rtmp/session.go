// If you are AI: This file defines Connection, the per-connection state
// record: all mutable state for one RTMP peer lives here, owned
// exclusively by the goroutine driving that connection. A connection's
// read loop runs on one goroutine and suspends only on I/O, so
// Connection's own fields need no internal locking — unlike the shared
// bus registry downstream, which does its own synchronization. The one
// exception is writes to the peer, which writeMu serializes once a
// play() subscriber pump writes from a second goroutine.

package rtmp

import (
	"io"
	"sync"
)

// State is the application-level connection state (the NetConnection /
// NetStream state machine), layered on top of the lower handshakeState.
type State int

// Connection states, in the order a well-behaved publisher passes through them.
const (
	StateConnecting State = iota
	StateConnected
	StatePublishing
	StatePlaying
	StateClosing
)

// Connection holds all per-connection mutable state: handshake progress,
// chunk-size and acknowledgement-window bookkeeping, the chunk-stream
// contexts used to decompress Type-1/2/3 headers, and the in-flight
// reassembly buffers. Nothing here is shared across connections.
type Connection struct {
	rw io.ReadWriter

	// writeMu serializes writes to rw. The read loop is the sole writer
	// for nearly all of a connection's life, but once play() attaches a
	// subscriber pump (internal/svc/rtmp), that pump writes AV messages
	// from its own goroutine concurrently with control-message replies
	// from the read loop; this mutex keeps individual WriteMessage calls
	// from interleaving on the wire.
	writeMu sync.Mutex

	handshakeState HandshakeState
	state          State

	inboundChunkSize  uint32
	outboundChunkSize uint32

	// ackWindowOut is the window size this engine advertised to the peer
	// (via its own WINDOW_ACKNOWLEDGEMENT_SIZE); it doubles as the
	// threshold this engine uses to decide when to ACK bytes it has
	// received, since most publishers never send a window size of their
	// own. ackWindowIn is overwritten if the peer does send one.
	ackWindowOut uint32
	ackWindowIn  uint32

	bytesReceived  uint32 // chunk payload bytes (plus fmt-3 extended timestamps) read since connection start; see BytesReceived
	bytesAckedThru uint32 // bytesReceived value as of the last ACK sent

	contexts map[uint32]*ChunkStreamContext
	partials map[uint32]*PartialMessage

	readScratch []byte // reusable scratch buffer for chunk payload reads

	app             string
	tcURL           string
	objectEncoding  float64
	streamName      string
	nextStreamID    uint32
	publishStreamID uint32

	outstandingPing *uint32 // timestamp of the last PingRequest we sent, if any
}

// NewConnection wraps rw (typically a net.Conn) in a fresh Connection with
// protocol defaults: chunk size 128 both directions, no ack window
// configured yet, empty chunk-stream state.
func NewConnection(rw io.ReadWriter) *Connection {
	return &Connection{
		rw:                rw,
		inboundChunkSize:  DefaultChunkSize,
		outboundChunkSize: DefaultChunkSize,
		contexts:          make(map[uint32]*ChunkStreamContext),
		partials:          make(map[uint32]*PartialMessage),
		nextStreamID:      1,
	}
}

// State returns the current NetConnection/NetStream state.
func (c *Connection) State() State { return c.state }

// SetState transitions the connection to a new application-level state.
func (c *Connection) SetState(state State) { c.state = state }

// HandshakeState returns the current handshake phase.
func (c *Connection) HandshakeState() HandshakeState { return c.handshakeState }

// App returns the application name from the connect() command.
func (c *Connection) App() string { return c.app }

// SetApp records the application name negotiated by connect().
func (c *Connection) SetApp(app string) { c.app = app }

// SetTcURL records the tcUrl supplied in the connect() command object.
func (c *Connection) SetTcURL(tcURL string) { c.tcURL = tcURL }

// TcURL returns the tcUrl negotiated by connect().
func (c *Connection) TcURL() string { return c.tcURL }

// SetObjectEncoding records the AMF encoding version negotiated by connect().
func (c *Connection) SetObjectEncoding(encoding float64) { c.objectEncoding = encoding }

// ObjectEncoding returns the AMF encoding version negotiated by connect().
func (c *Connection) ObjectEncoding() float64 { return c.objectEncoding }

// StreamName returns the name passed to publish() or play().
func (c *Connection) StreamName() string { return c.streamName }

// SetStreamName records the stream name negotiated by publish()/play().
func (c *Connection) SetStreamName(name string) { c.streamName = name }

// AllocateStreamID returns the next monotonically increasing message
// stream id for this connection's createStream() calls.
func (c *Connection) AllocateStreamID() uint32 {
	id := c.nextStreamID
	c.nextStreamID++
	return id
}

// PublishStreamID returns the message stream id publish()/play() bound to.
func (c *Connection) PublishStreamID() uint32 { return c.publishStreamID }

// SetPublishStreamID records the message stream id publish()/play() bound to.
func (c *Connection) SetPublishStreamID(id uint32) { c.publishStreamID = id }

// InboundChunkSize returns the chunk size currently used to split
// incoming messages into chunks, as last set by SET_CHUNK_SIZE.
func (c *Connection) InboundChunkSize() uint32 { return c.inboundChunkSize }

// SetInboundChunkSize applies a peer-issued SET_CHUNK_SIZE, masking the
// reserved top bit rather than rejecting it.
func (c *Connection) SetInboundChunkSize(size uint32) {
	c.inboundChunkSize = size &^ 0x80000000
}

// OutboundChunkSize returns the current outbound fragmentation boundary.
func (c *Connection) OutboundChunkSize() uint32 { return c.outboundChunkSize }

// SetOutboundChunkSize sets the chunk size this connection fragments
// outbound messages at.
func (c *Connection) SetOutboundChunkSize(size uint32) {
	c.outboundChunkSize = size
}

// SetAckWindowOut records the window size this engine advertised to the
// peer, which doubles as the inbound-ACK threshold (see ackWindowOut doc).
func (c *Connection) SetAckWindowOut(size uint32) {
	c.ackWindowOut = size
	if c.ackWindowIn == 0 {
		c.ackWindowIn = size
	}
}

// SetAckWindowIn applies a peer-issued WINDOW_ACKNOWLEDGEMENT_SIZE.
func (c *Connection) SetAckWindowIn(size uint32) {
	c.ackWindowIn = size
}

// BytesReceived returns the value an ACKNOWLEDGEMENT reports: the running
// count of chunk payload bytes, plus the extended timestamps of fmt-3
// chunks, read since connection start. Handshake bytes, chunk basic and
// message headers, and fmt-0/1/2 extended timestamps are not counted.
func (c *Connection) BytesReceived() uint32 { return c.bytesReceived }

// DiscardPartial drops any in-flight PartialMessage on csid, per the
// ABORT (type 2) control message.
func (c *Connection) DiscardPartial(csid uint32) {
	delete(c.partials, csid)
}

// WriteMessage fragments body into chunks on csid using the
// connection's current outbound chunk size and writes it to the peer.
func (c *Connection) WriteMessage(csid uint32, msgType byte, timestamp, streamID uint32, body []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return WriteChunk(c.rw, csid, msgType, timestamp, streamID, body, c.outboundChunkSize)
}

// Close releases the underlying transport, if closable.
func (c *Connection) Close() {
	c.state = StateClosing
	if closer, ok := c.rw.(io.Closer); ok {
		closer.Close()
	}
}
