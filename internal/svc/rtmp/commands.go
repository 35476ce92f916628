// If you are AI: This file implements the NetConnection/NetStream command
// state machine driven from AMF0 COMMAND messages: connect, releaseStream,
// FCPublish, createStream, deleteStream/closeStream, plus the shared
// reply helpers; the publish/play handlers live in publish.go/play.go.
// Unexpected or malformed commands are reported to the peer and the
// connection stays open; only framing/transport errors are fatal.

package rtmp

import (
	"bytes"
	"fmt"
	"log"

	"nonchalant/internal/core/protocol/amf0"
	rtmpprotocol "nonchalant/internal/core/protocol/rtmp"
)

// handleCommand decodes one AMF0 command message and dispatches it by
// name. A decode failure is logged and answered with an _error reply; a
// non-string or unrecognized command name is logged and ignored. Neither
// tears down the connection, matching the lenient policy this engine
// applies to malformed peer input.
func (s *ServiceSession) handleCommand(body []byte) error {
	values, err := amf0.DecodeCommand(bytes.NewReader(body))
	if err != nil {
		log.Printf("conn %d: command decode error: %v", s.id, err)
		return s.sendCommandDecodeError(rtmpprotocol.ErrAmfDecode)
	}
	if len(values) == 0 {
		return nil
	}
	name, ok := values[0].(string)
	if !ok {
		log.Printf("conn %d: command name is not a string: %T", s.id, values[0])
		return nil
	}

	switch name {
	case "connect":
		return s.handleConnect(values)
	case "releaseStream":
		return s.handleReleaseStream(values)
	case "FCPublish":
		return s.handleFCPublish(values)
	case "createStream":
		return s.handleCreateStream(values)
	case "publish":
		return s.handlePublish(values)
	case "play":
		return s.handlePlay(values)
	case "deleteStream", "closeStream", "FCUnpublish":
		s.Close(nil)
		return nil
	default:
		log.Printf("conn %d: unrecognized command %q", s.id, name)
		return nil
	}
}

// handleConnect implements connect(): records app/tcUrl/objectEncoding,
// sends the WINDOW_ACKNOWLEDGEMENT_SIZE/SET_PEER_BANDWIDTH pair, and
// replies with _result. A Consumer rejection is reported as
// NetConnection.Connect.Rejected without closing the transport. A
// connect() arriving outside StateConnecting (e.g. a second connect on
// an already-connected session) is reported as _error and otherwise
// left alone rather than tearing down the connection.
func (s *ServiceSession) handleConnect(values []amf0.Value) error {
	if len(values) < 2 {
		return fmt.Errorf("connect: missing transaction id")
	}
	transID := toFloat64(values[1])

	if s.State() != rtmpprotocol.StateConnecting {
		return s.sendConnectResult(transID, s.ObjectEncoding(), false, rtmpprotocol.ErrUnexpectedCommand)
	}

	app, tcURL := "", ""
	objectEncoding := float64(0)
	if len(values) >= 3 {
		if cmdObj, ok := values[2].(*amf0.Object); ok {
			if v, present := cmdObj.Get("app"); present {
				if str, ok := v.(string); ok {
					app = str
				}
			}
			if v, present := cmdObj.Get("tcUrl"); present {
				if str, ok := v.(string); ok {
					tcURL = str
				}
			}
			if v, present := cmdObj.Get("objectEncoding"); present {
				if num, ok := v.(float64); ok {
					objectEncoding = num
				}
			}
		}
	}

	s.SetApp(app)
	s.SetTcURL(tcURL)
	s.SetObjectEncoding(objectEncoding)

	if err := s.consumer.OnConnect(s.id, app, tcURL, objectEncoding); err != nil {
		return s.sendConnectResult(transID, objectEncoding, false, err)
	}

	ackSize := s.opts.WindowAckSize
	s.SetAckWindowOut(ackSize)
	if err := s.WriteMessage(rtmpprotocol.ChunkStreamIDProtocolControl, rtmpprotocol.MessageTypeWindowAckSize, 0, 0, rtmpprotocol.CreateWindowAckSize(ackSize)); err != nil {
		return fmt.Errorf("connect: window ack size: %w", err)
	}
	peerBW := rtmpprotocol.CreateSetPeerBandwidth(s.opts.PeerBandwidth, rtmpprotocol.LimitTypeDynamic)
	if err := s.WriteMessage(rtmpprotocol.ChunkStreamIDProtocolControl, rtmpprotocol.MessageTypeSetPeerBandwidth, 0, 0, peerBW); err != nil {
		return fmt.Errorf("connect: set peer bandwidth: %w", err)
	}
	if err := s.WriteMessage(rtmpprotocol.ChunkStreamIDProtocolControl, rtmpprotocol.MessageTypeUserControl, 0, 0, rtmpprotocol.CreateStreamBegin(0)); err != nil {
		return fmt.Errorf("connect: stream begin: %w", err)
	}
	s.SetOutboundChunkSize(s.opts.ChunkSizeOut)
	if err := s.WriteMessage(rtmpprotocol.ChunkStreamIDProtocolControl, rtmpprotocol.MessageTypeSetChunkSize, 0, 0, rtmpprotocol.CreateSetChunkSize(s.opts.ChunkSizeOut)); err != nil {
		return fmt.Errorf("connect: set chunk size: %w", err)
	}

	s.SetState(rtmpprotocol.StateConnected)
	return s.sendConnectResult(transID, objectEncoding, true, nil)
}

// sendConnectResult replies to connect() with _result (success) or
// _error (rejection), carrying the negotiated objectEncoding either way.
func (s *ServiceSession) sendConnectResult(transID float64, objectEncoding float64, accepted bool, rejectReason error) error {
	cmdObj := amf0.NewObject().
		Set("fmsVer", "FMS/3,0,1,123").
		Set("capabilities", float64(31)).
		Set("mode", float64(1))

	info := amf0.NewObject()
	cmdName := "_result"
	if accepted {
		info.Set("level", "status").
			Set("code", "NetConnection.Connect.Success").
			Set("description", "Connection succeeded.").
			Set("objectEncoding", objectEncoding)
	} else {
		cmdName = "_error"
		desc := "Connection rejected."
		if rejectReason != nil {
			desc = rejectReason.Error()
		}
		info.Set("level", "error").
			Set("code", "NetConnection.Connect.Rejected").
			Set("description", desc)
	}

	body, err := amf0.EncodeCommand(cmdName, transID, cmdObj, info)
	if err != nil {
		return err
	}
	return s.WriteMessage(rtmpprotocol.ChunkStreamIDCommand, rtmpprotocol.MessageTypeCommandAMF0, 0, 0, body)
}

// handleReleaseStream replies to releaseStream() with a bare _result,
// the response FFmpeg expects before it sends createStream.
func (s *ServiceSession) handleReleaseStream(values []amf0.Value) error {
	if len(values) < 2 {
		return nil
	}
	body, err := amf0.EncodeCommand("_result", toFloat64(values[1]), nil)
	if err != nil {
		return err
	}
	return s.WriteMessage(rtmpprotocol.ChunkStreamIDCommand, rtmpprotocol.MessageTypeCommandAMF0, 0, 0, body)
}

// handleFCPublish replies to FCPublish() with _result, mirroring
// releaseStream's response for clients that wait on both.
func (s *ServiceSession) handleFCPublish(values []amf0.Value) error {
	if len(values) < 2 {
		return nil
	}
	body, err := amf0.EncodeCommand("_result", toFloat64(values[1]), nil)
	if err != nil {
		return err
	}
	return s.WriteMessage(rtmpprotocol.ChunkStreamIDCommand, rtmpprotocol.MessageTypeCommandAMF0, 0, 0, body)
}

// handleCreateStream allocates a new message stream id, binds it as
// the session's publish/play stream, and replies with _result carrying
// it.
func (s *ServiceSession) handleCreateStream(values []amf0.Value) error {
	if len(values) < 2 {
		return fmt.Errorf("createStream: missing transaction id")
	}
	streamID := s.AllocateStreamID()
	s.SetPublishStreamID(streamID)
	body, err := amf0.EncodeCommand("_result", toFloat64(values[1]), nil, float64(streamID))
	if err != nil {
		return err
	}
	return s.WriteMessage(rtmpprotocol.ChunkStreamIDCommand, rtmpprotocol.MessageTypeCommandAMF0, 0, 0, body)
}

// sendCommandDecodeError replies to a command message this engine could
// not decode with a bare _error, transaction id 0 (none could be
// recovered from the malformed body), keeping the connection open per
// the AmfDecodeError recovery policy.
func (s *ServiceSession) sendCommandDecodeError(cause error) error {
	info := amf0.NewObject().
		Set("level", "error").
		Set("code", "NetConnection.Call.Failed").
		Set("description", cause.Error())
	body, err := amf0.EncodeCommand("_error", float64(0), nil, info)
	if err != nil {
		return err
	}
	return s.WriteMessage(rtmpprotocol.ChunkStreamIDCommand, rtmpprotocol.MessageTypeCommandAMF0, 0, 0, body)
}

// sendOnStatus sends an onStatus/_error NetStream notification on csid 5,
// bound to streamID (the message stream id of the originating command).
func (s *ServiceSession) sendOnStatus(streamID uint32, level, code, description string) error {
	return s.sendOnStatusDetails(streamID, level, code, description, "")
}

// sendOnStatusDetails is sendOnStatus with the optional "details"
// property FMS populates with the stream name on publish/play starts.
func (s *ServiceSession) sendOnStatusDetails(streamID uint32, level, code, description, details string) error {
	status := amf0.NewObject().
		Set("level", level).
		Set("code", code).
		Set("description", description)
	if details != "" {
		status.Set("details", details)
	}
	body, err := amf0.EncodeCommand("onStatus", float64(0), nil, status)
	if err != nil {
		return err
	}
	return s.WriteMessage(5, rtmpprotocol.MessageTypeCommandAMF0, 0, streamID, body)
}

// toFloat64 coerces an AMF0 transaction id value to float64, defaulting
// to 0 for anything else (AMF0 numbers always decode as float64, but a
// defensive default keeps a malformed peer from panicking this path).
func toFloat64(v amf0.Value) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}

