// If you are AI: This file implements the L4 dispatcher: the per-connection
// message loop that interprets protocol-control messages, replies to
// USER_CONTROL pings, and drives the NetConnection/NetStream command
// handlers (commands.go) and AV fan-out (publish.go/play.go).

package rtmp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"

	"nonchalant/internal/core/bus"
	rtmpprotocol "nonchalant/internal/core/protocol/rtmp"
)

// ServiceSession drives one RTMP connection: handshake, control-message
// handling, command dispatch, and publish/play stream attachment.
type ServiceSession struct {
	*rtmpprotocol.Connection
	id       uint64
	registry *bus.Registry
	consumer Consumer
	opts     Options

	publisher  *Publisher
	subscriber *subscriberPump
}

// NewServiceSession wraps rw in a ServiceSession identified by id,
// using DefaultOptions; the server overrides opts with its configured
// values before driving the session.
func NewServiceSession(id uint64, rw io.ReadWriter, registry *bus.Registry, consumer Consumer) *ServiceSession {
	return &ServiceSession{
		Connection: rtmpprotocol.NewConnection(rw),
		id:         id,
		registry:   registry,
		consumer:   consumer,
		opts:       DefaultOptions(),
	}
}

// Serve performs the handshake and then drives the message loop until
// the peer disconnects or a fatal protocol error occurs.
func (s *ServiceSession) Serve() error {
	if err := s.PerformServerHandshake(); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}

	for {
		msg, err := s.ReadMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := s.dispatch(msg); err != nil {
			return err
		}
	}
}

// dispatch interprets one reassembled message by type.
func (s *ServiceSession) dispatch(msg *rtmpprotocol.Message) error {
	switch msg.Type {
	case rtmpprotocol.MessageTypeSetChunkSize:
		size, err := rtmpprotocol.ParseSetChunkSize(msg.Body)
		if err != nil {
			log.Printf("conn %d: bad SET_CHUNK_SIZE: %v", s.id, err)
			return nil
		}
		s.SetInboundChunkSize(size)

	case rtmpprotocol.MessageTypeAbort:
		if len(msg.Body) >= 4 {
			s.DiscardPartial(binary.BigEndian.Uint32(msg.Body))
		}

	case rtmpprotocol.MessageTypeAck:
		// Informational: the peer's own received-byte count.

	case rtmpprotocol.MessageTypeUserControl:
		return s.handleUserControl(msg.Body)

	case rtmpprotocol.MessageTypeWindowAckSize:
		if len(msg.Body) >= 4 {
			s.SetAckWindowIn(binary.BigEndian.Uint32(msg.Body))
		}

	case rtmpprotocol.MessageTypeSetPeerBandwidth:
		if len(msg.Body) >= 4 {
			size := binary.BigEndian.Uint32(msg.Body)
			return s.WriteMessage(rtmpprotocol.ChunkStreamIDProtocolControl, rtmpprotocol.MessageTypeWindowAckSize, 0, 0, rtmpprotocol.CreateWindowAckSize(size))
		}

	case rtmpprotocol.MessageTypeCommandAMF0:
		return s.handleCommand(msg.Body)

	case rtmpprotocol.MessageTypeCommandAMF3:
		if len(msg.Body) > 0 {
			return s.handleCommand(msg.Body[1:])
		}

	case rtmpprotocol.MessageTypeDataAMF0, rtmpprotocol.MessageTypeDataAMF3:
		s.forwardAV(msg)

	case rtmpprotocol.MessageTypeAudio, rtmpprotocol.MessageTypeVideo:
		s.forwardAV(msg)

	case rtmpprotocol.MessageTypeSharedObjectAMF0, rtmpprotocol.MessageTypeSharedObjectAMF3:
		log.Printf("conn %d: ignoring shared object message", s.id)

	default:
		// Unhandled message types are ignored.
	}
	return nil
}

// handleUserControl dispatches a USER_CONTROL (type 4) event body.
func (s *ServiceSession) handleUserControl(body []byte) error {
	if len(body) < 2 {
		return nil
	}
	event := binary.BigEndian.Uint16(body[0:2])
	payload := body[2:]

	switch event {
	case rtmpprotocol.UserControlStreamBegin:
		if len(payload) >= 4 {
			log.Printf("conn %d: StreamBegin(%d)", s.id, binary.BigEndian.Uint32(payload))
		}
	case rtmpprotocol.UserControlStreamEOF, rtmpprotocol.UserControlStreamDry, rtmpprotocol.UserControlStreamIsRecorded:
		log.Printf("conn %d: user control event %d", s.id, event)
	case rtmpprotocol.UserControlSetBufferLength:
		log.Printf("conn %d: SetBufferLength", s.id)
	case rtmpprotocol.UserControlPingRequest:
		if len(payload) >= 4 {
			ts := binary.BigEndian.Uint32(payload)
			return s.WriteMessage(rtmpprotocol.ChunkStreamIDProtocolControl, rtmpprotocol.MessageTypeUserControl, 0, 0, rtmpprotocol.CreatePingResponse(ts))
		}
	case rtmpprotocol.UserControlPingResponse:
		// This engine never initiates pings of its own; nothing to clear.
	}
	return nil
}

// forwardAV hands an AUDIO/VIDEO/DATA message to the consumer and, if
// this connection is publishing, fans it out onto the bus.
func (s *ServiceSession) forwardAV(msg *rtmpprotocol.Message) {
	s.consumer.OnAVMessage(s.id, AVMessage{Type: msg.Type, Timestamp: msg.Timestamp, StreamID: msg.StreamID, Payload: msg.Body})
	if s.publisher == nil {
		return
	}
	switch msg.Type {
	case rtmpprotocol.MessageTypeAudio:
		s.publisher.PublishAudio(msg.Timestamp, msg.Body)
	case rtmpprotocol.MessageTypeVideo:
		s.publisher.PublishVideo(msg.Timestamp, msg.Body)
	case rtmpprotocol.MessageTypeDataAMF0, rtmpprotocol.MessageTypeDataAMF3:
		s.publisher.PublishMetadata(msg.Timestamp, msg.Body)
	}
}

// Close tears down any attached publisher/subscriber and the transport.
func (s *ServiceSession) Close(reason error) {
	if s.publisher != nil {
		key := s.publisher.StreamKey()
		s.publisher.Detach()
		s.registry.RemoveIfEmpty(key)
	}
	if s.subscriber != nil {
		s.subscriber.stop()
	}
	s.consumer.OnClose(s.id, reason)
	s.Connection.Close()
}
