// If you are AI: This file implements chunk framing: basic-header and
// message-header parsing, and the per-CSID ChunkStreamContext used to
// decompress Type-1/2/3 headers. It
// produces raw, per-chunk fields only — merging those fields with prior
// context and reassembling messages is message.go's job (L3).

package rtmp

import (
	"encoding/binary"
	"io"
)

// ChunkStreamContext is the "last-seen full header" memoised per chunk
// stream so that subsequent Type-1/2/3 chunks can be decompressed. A
// Type-1/2/3 chunk arriving before any context exists for its CSID is a
// protocol error (ErrInvalidChunkHeader).
type ChunkStreamContext struct {
	lastTimestamp         uint32
	lastTimestampDelta    uint32
	lastMessageLength     uint32
	lastMessageTypeID     byte
	lastMessageStreamID   uint32
	lastUsedExtendedStamp bool // whether the most recent chunk on this CSID carried an extended timestamp
}

// rawChunkHeader is the decompressed-but-unmerged view of one chunk's
// header: the fields present in the wire encoding for its fmt, before
// being combined with the ChunkStreamContext. Zero value fields are
// simply absent for that fmt (e.g. messageLength is unset for fmt 2/3).
type rawChunkHeader struct {
	csid     uint32
	fmt      byte
	tsField  uint32 // absolute timestamp (fmt 0) or delta (fmt 1/2); may be ExtendedTimestampMarker
	extended uint32 // resolved extended timestamp value, if tsField == ExtendedTimestampMarker
	hasExt   bool

	messageLength   uint32 // fmt 0/1 only
	messageTypeID   byte   // fmt 0/1 only
	messageStreamID uint32 // fmt 0 only
}

// readBasicHeader reads the 1-3 byte basic header: fmt in the top 2
// bits, csid encoded in the bottom 6 bits with two extended forms.
func (c *Connection) readBasicHeader() (fmtVal byte, csid uint32, err error) {
	var b0 [1]byte
	if _, err = io.ReadFull(c.rw, b0[:]); err != nil {
		return 0, 0, wrapReadErr(err)
	}
	fmtVal = (b0[0] >> 6) & 0x03
	csidLSB := uint32(b0[0] & 0x3F)

	switch csidLSB {
	case 0:
		var ext [1]byte
		if _, err = io.ReadFull(c.rw, ext[:]); err != nil {
			return 0, 0, wrapReadErr(err)
		}
		csid = uint32(ext[0]) + 64
	case 1:
		var ext [2]byte
		if _, err = io.ReadFull(c.rw, ext[:]); err != nil {
			return 0, 0, wrapReadErr(err)
		}
		csid = uint32(ext[0]) + uint32(ext[1])<<8 + 64
	default:
		csid = csidLSB
	}
	return fmtVal, csid, nil
}

// readMessageHeader reads the fmt-specific message header (11/7/3/0
// bytes) and, if the relevant timestamp field is the extended-timestamp
// sentinel, the trailing 4-byte extended timestamp. It does not merge
// the result with ChunkStreamContext; that is the caller's job.
func (c *Connection) readMessageHeader(fmtVal byte, csid uint32) (rawChunkHeader, error) {
	h := rawChunkHeader{csid: csid, fmt: fmtVal}

	switch fmtVal {
	case ChunkFmt0:
		var buf [11]byte
		if _, err := io.ReadFull(c.rw, buf[:]); err != nil {
			return h, wrapReadErr(err)
		}
		h.tsField = uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
		h.messageLength = uint32(buf[3])<<16 | uint32(buf[4])<<8 | uint32(buf[5])
		h.messageTypeID = buf[6]
		// message_stream_id is little-endian, unlike every other RTMP integer.
		h.messageStreamID = binary.LittleEndian.Uint32(buf[7:11])

	case ChunkFmt1:
		var buf [7]byte
		if _, err := io.ReadFull(c.rw, buf[:]); err != nil {
			return h, wrapReadErr(err)
		}
		h.tsField = uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
		h.messageLength = uint32(buf[3])<<16 | uint32(buf[4])<<8 | uint32(buf[5])
		h.messageTypeID = buf[6]

	case ChunkFmt2:
		var buf [3]byte
		if _, err := io.ReadFull(c.rw, buf[:]); err != nil {
			return h, wrapReadErr(err)
		}
		h.tsField = uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])

	case ChunkFmt3:
		// No header bytes; timestamp handling is entirely context-driven
		// and resolved by the caller per the "previous chunk" rule.

	default:
		return h, ErrInvalidChunkHeader
	}

	if fmtVal != ChunkFmt3 && h.tsField == ExtendedTimestampMarker {
		var ext [4]byte
		if _, err := io.ReadFull(c.rw, ext[:]); err != nil {
			return h, wrapReadErr(err)
		}
		h.extended = binary.BigEndian.Uint32(ext[:])
		h.hasExt = true
	}

	return h, nil
}

// readChunkPayload reads min(inboundChunkSize, remaining) bytes of
// chunk payload into the connection's scratch buffer, growing it as
// needed, and returns a slice borrowed from that buffer. The slice is
// only valid until the next call to readChunkPayload; message.go
// copies it into the owning PartialMessage before reading again.
func (c *Connection) readChunkPayload(remaining uint32) ([]byte, error) {
	n := c.inboundChunkSize
	if n > remaining {
		n = remaining
	}
	if cap(c.readScratch) < int(n) {
		c.readScratch = make([]byte, n)
	}
	buf := c.readScratch[:n]
	if _, err := io.ReadFull(c.rw, buf); err != nil {
		return nil, wrapReadErr(err)
	}
	c.bytesReceived += n
	return buf, nil
}

// writeBasicHeader encodes the 1-3 byte basic header for fmtVal/csid,
// symmetric to readBasicHeader.
func writeBasicHeader(w io.Writer, fmtVal byte, csid uint32) error {
	switch {
	case csid < 64:
		_, err := w.Write([]byte{fmtVal<<6 | byte(csid)})
		return err
	case csid < 64+256:
		_, err := w.Write([]byte{fmtVal << 6, byte(csid - 64)})
		return err
	default:
		rel := csid - 64
		_, err := w.Write([]byte{fmtVal<<6 | 1, byte(rel), byte(rel >> 8)})
		return err
	}
}
