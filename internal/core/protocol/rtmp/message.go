// If you are AI: This file implements message reassembly/fragmentation
// and the protocol-control message body encoders: PartialMessage
// accumulation, Connection.ReadMessage
// (the L2→L3 chunk-to-message loop, including ack accounting), and
// WriteChunk (L3→L2 fragmentation).

package rtmp

import (
	"encoding/binary"
	"io"
)

// Message is a fully reassembled RTMP message handed to L4.
type Message struct {
	Type      byte
	Length    uint32
	Timestamp uint32
	StreamID  uint32
	Body      []byte
}

// PartialMessage accumulates one in-flight message on a single CSID.
// Invariant: collected <= len(buffer) (== target payload length).
type PartialMessage struct {
	typeID    byte
	timestamp uint32
	streamID  uint32
	buffer    []byte
	collected uint32
}

// ReadMessage reads and reassembles chunks until one complete message is
// available, applying the header-decompression rules, the fmt-0-mid-message
// lenient recovery policy, and acknowledgement accounting. It blocks on I/O.
func (c *Connection) ReadMessage() (*Message, error) {
	for {
		fmtVal, csid, err := c.readBasicHeader()
		if err != nil {
			return nil, err
		}
		raw, err := c.readMessageHeader(fmtVal, csid)
		if err != nil {
			return nil, err
		}

		ctx, hasCtx := c.contexts[csid]
		if !hasCtx {
			if fmtVal != ChunkFmt0 {
				return nil, ErrInvalidChunkHeader
			}
			ctx = &ChunkStreamContext{}
			c.contexts[csid] = ctx
		}

		partial, continuing := c.partials[csid]

		var absTimestamp uint32
		switch fmtVal {
		case ChunkFmt0:
			absTimestamp = raw.tsField
			if raw.hasExt {
				absTimestamp = raw.extended
			}
			ctx.lastUsedExtendedStamp = raw.hasExt
			ctx.lastMessageLength = raw.messageLength
			ctx.lastMessageTypeID = raw.messageTypeID
			ctx.lastMessageStreamID = raw.messageStreamID

		case ChunkFmt1:
			delta := raw.tsField
			if raw.hasExt {
				delta = raw.extended
			}
			ctx.lastUsedExtendedStamp = raw.hasExt
			absTimestamp = ctx.lastTimestamp + delta
			ctx.lastTimestampDelta = delta
			ctx.lastMessageLength = raw.messageLength
			ctx.lastMessageTypeID = raw.messageTypeID
			raw.messageStreamID = ctx.lastMessageStreamID

		case ChunkFmt2:
			delta := raw.tsField
			if raw.hasExt {
				delta = raw.extended
			}
			ctx.lastUsedExtendedStamp = raw.hasExt
			absTimestamp = ctx.lastTimestamp + delta
			ctx.lastTimestampDelta = delta
			raw.messageLength = ctx.lastMessageLength
			raw.messageTypeID = ctx.lastMessageTypeID
			raw.messageStreamID = ctx.lastMessageStreamID

		case ChunkFmt3:
			raw.messageLength = ctx.lastMessageLength
			raw.messageTypeID = ctx.lastMessageTypeID
			raw.messageStreamID = ctx.lastMessageStreamID

			if ctx.lastUsedExtendedStamp {
				var ext [4]byte
				if _, err := io.ReadFull(c.rw, ext[:]); err != nil {
					return nil, wrapReadErr(err)
				}
				c.bytesReceived += 4
				absTimestamp = binary.BigEndian.Uint32(ext[:])
			} else if !continuing {
				// fmt 3 starting a new message: reuse the previous delta.
				absTimestamp = ctx.lastTimestamp + ctx.lastTimestampDelta
			}
			// Continuation of an in-flight message without extended
			// timestamps: the timestamp is not updated.
		}

		if fmtVal != ChunkFmt3 || !continuing {
			ctx.lastTimestamp = absTimestamp
		}

		// fmt-0 mid-message is a protocol error, tolerated by emitting
		// whatever was collected so far before starting the new message.
		var emit *Message
		if fmtVal == ChunkFmt0 && continuing && partial.collected < uint32(len(partial.buffer)) {
			emit = &Message{Type: partial.typeID, Length: uint32(len(partial.buffer)), Timestamp: partial.timestamp, StreamID: partial.streamID, Body: partial.buffer[:partial.collected]}
			partial = nil
			continuing = false
		}

		if !continuing {
			if raw.messageLength > MaxMessageLength {
				return nil, ErrMessageTooLarge
			}
			partial = &PartialMessage{
				typeID:    raw.messageTypeID,
				timestamp: absTimestamp,
				streamID:  raw.messageStreamID,
				buffer:    make([]byte, raw.messageLength),
			}
			c.partials[csid] = partial
		}

		remaining := uint32(len(partial.buffer)) - partial.collected
		payload, err := c.readChunkPayload(remaining)
		if err != nil {
			return nil, err
		}
		copy(partial.buffer[partial.collected:], payload)
		partial.collected += uint32(len(payload))

		if err := c.accountAck(); err != nil {
			return nil, err
		}

		if emit != nil {
			return emit, nil
		}
		if partial.collected == uint32(len(partial.buffer)) {
			delete(c.partials, csid)
			return &Message{Type: partial.typeID, Length: partial.collected, Timestamp: partial.timestamp, StreamID: partial.streamID, Body: partial.buffer}, nil
		}
		// Message still incomplete; loop to read its next chunk (or an
		// interleaved chunk on another CSID).
	}
}

// accountAck folds newly-received bytes into the running ACK counter
// and sends one ACKNOWLEDGEMENT whenever the total crosses the
// configured threshold.
func (c *Connection) accountAck() error {
	if c.ackWindowIn == 0 {
		return nil
	}
	if c.bytesReceived-c.bytesAckedThru < c.ackWindowIn {
		return nil
	}
	c.bytesAckedThru = c.bytesReceived
	body := CreateWindowAckSize(c.bytesReceived)
	// Route through WriteMessage so the write holds writeMu: during
	// play() a subscriber pump shares the wire with this read loop.
	return c.WriteMessage(ChunkStreamIDProtocolControl, MessageTypeAck, 0, 0, body)
}

// ParseSetChunkSize parses a SET_CHUNK_SIZE message body.
func ParseSetChunkSize(body []byte) (uint32, error) {
	if len(body) < 4 {
		return 0, ErrTruncated
	}
	size := binary.BigEndian.Uint32(body[0:4]) &^ 0x80000000
	if size > MaxChunkSize {
		return 0, ErrInvalidChunkHeader
	}
	return size, nil
}

// CreateSetChunkSize encodes a SET_CHUNK_SIZE message body.
func CreateSetChunkSize(size uint32) []byte {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, size)
	return body
}

// CreateWindowAckSize encodes a WINDOW_ACKNOWLEDGEMENT_SIZE / ACKNOWLEDGEMENT
// message body (both are a single big-endian u32).
func CreateWindowAckSize(size uint32) []byte {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, size)
	return body
}

// CreateSetPeerBandwidth encodes a SET_PEER_BANDWIDTH message body.
func CreateSetPeerBandwidth(size uint32, limitType byte) []byte {
	body := make([]byte, 5)
	binary.BigEndian.PutUint32(body[0:4], size)
	body[4] = limitType
	return body
}

// CreateStreamBegin encodes a USER_CONTROL StreamBegin event body.
func CreateStreamBegin(streamID uint32) []byte {
	body := make([]byte, 6)
	binary.BigEndian.PutUint16(body[0:2], UserControlStreamBegin)
	binary.BigEndian.PutUint32(body[2:6], streamID)
	return body
}

// CreatePingResponse encodes a USER_CONTROL PingResponse event body
// echoing the timestamp carried by the peer's PingRequest.
func CreatePingResponse(timestamp uint32) []byte {
	body := make([]byte, 6)
	binary.BigEndian.PutUint16(body[0:2], UserControlPingResponse)
	binary.BigEndian.PutUint32(body[2:6], timestamp)
	return body
}

// WriteChunk fragments body into chunks of at most chunkSize bytes and
// writes them to w: a fmt-0 chunk carrying the full header, followed by
// fmt-3 continuations. If timestamp requires an extended timestamp, it
// is repeated on every continuation chunk, matching this engine's
// read-side "previous chunk used it" rule.
func WriteChunk(w io.Writer, csid uint32, msgType byte, timestamp uint32, streamID uint32, body []byte, chunkSize uint32) error {
	bodyLen := uint32(len(body))
	useExtended := timestamp >= ExtendedTimestampMarker
	offset := uint32(0)

	for first := true; offset < bodyLen || (bodyLen == 0 && first); first = false {
		fmtVal := byte(ChunkFmt3)
		if offset == 0 {
			fmtVal = ChunkFmt0
		}
		if err := writeBasicHeader(w, fmtVal, csid); err != nil {
			return err
		}

		if fmtVal == ChunkFmt0 {
			ts := timestamp
			if useExtended {
				ts = ExtendedTimestampMarker
			}
			header := make([]byte, 11)
			header[0], header[1], header[2] = byte(ts>>16), byte(ts>>8), byte(ts)
			header[3], header[4], header[5] = byte(bodyLen>>16), byte(bodyLen>>8), byte(bodyLen)
			header[6] = msgType
			binary.LittleEndian.PutUint32(header[7:11], streamID)
			if _, err := w.Write(header); err != nil {
				return err
			}
		}
		if useExtended {
			var ext [4]byte
			binary.BigEndian.PutUint32(ext[:], timestamp)
			if _, err := w.Write(ext[:]); err != nil {
				return err
			}
		}

		chunkLen := chunkSize
		if offset+chunkLen > bodyLen {
			chunkLen = bodyLen - offset
		}
		if chunkLen > 0 {
			if _, err := w.Write(body[offset : offset+chunkLen]); err != nil {
				return err
			}
		}
		offset += chunkLen
		if bodyLen == 0 {
			break
		}
	}

	if flusher, ok := w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}
