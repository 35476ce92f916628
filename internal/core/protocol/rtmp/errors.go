// If you are AI: This file defines the RTMP engine's error kinds.
// Handshake and framing errors are fatal to the connection; command-level errors
// (AmfDecodeError, UnexpectedCommand, ConsumerRejected) are reported to the peer
// and the connection stays open.

package rtmp

import "errors"

var (
	// ErrHandshakeVersionMismatch is returned when C0 is not RTMPVersion.
	ErrHandshakeVersionMismatch = errors.New("rtmp: handshake version mismatch")

	// ErrHandshakeEchoMismatch is returned when C2 does not echo S1.
	ErrHandshakeEchoMismatch = errors.New("rtmp: handshake C2 does not echo S1")

	// ErrTruncated is returned when a read returned fewer bytes than required,
	// i.e. the socket closed mid-frame.
	ErrTruncated = errors.New("rtmp: truncated read")

	// ErrInvalidChunkHeader covers a reserved CSID, a Type-1/2/3 chunk
	// arriving before any ChunkStreamContext exists for its CSID, or any
	// other structurally invalid basic/message header.
	ErrInvalidChunkHeader = errors.New("rtmp: invalid chunk header")

	// ErrMessageTooLarge is returned when a message's declared length
	// exceeds MaxMessageLength.
	ErrMessageTooLarge = errors.New("rtmp: message payload too large")

	// ErrAmfDecode wraps a malformed or truncated AMF0 value inside a
	// COMMAND message body. Recoverable: the engine replies with an
	// _error and keeps the connection open.
	ErrAmfDecode = errors.New("rtmp: AMF0 decode error")

	// ErrUnexpectedCommand is returned when a command arrives in a
	// connection state that does not accept it (e.g. publish before
	// connect). Recoverable.
	ErrUnexpectedCommand = errors.New("rtmp: unexpected command for connection state")

	// ErrConsumerRejected is returned when the application-level
	// consumer callback (OnConnect/OnPublish/OnPlay) rejects the
	// request. Recoverable.
	ErrConsumerRejected = errors.New("rtmp: rejected by consumer")
)
