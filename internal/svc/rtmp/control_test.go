// If you are AI: this file exercises the dispatcher's protocol-control
// handling (pings, peer-bandwidth echo, out-of-state and malformed
// commands, configured options), using the scripted-command helpers in
// dispatch_test.go.

package rtmp

import (
	"bytes"
	"encoding/binary"
	"testing"

	"nonchalant/internal/core/bus"
	"nonchalant/internal/core/protocol/amf0"
	rtmpprotocol "nonchalant/internal/core/protocol/rtmp"
)

// TestPingRoundTrip checks that a USER_CONTROL PingRequest is answered
// with a PingResponse echoing the same timestamp bytes.
func TestPingRoundTrip(t *testing.T) {
	fd := &fakeDuplex{}
	s := NewServiceSession(1, fd, bus.NewRegistry(), &recordingConsumer{})

	body := make([]byte, 6)
	binary.BigEndian.PutUint16(body[0:2], rtmpprotocol.UserControlPingRequest)
	binary.BigEndian.PutUint32(body[2:6], 0x12345678)

	if err := s.dispatch(&rtmpprotocol.Message{Type: rtmpprotocol.MessageTypeUserControl, Body: body}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	replies := readAllReplies(t, fd)
	if len(replies) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(replies))
	}
	reply := replies[0]
	if reply.Type != rtmpprotocol.MessageTypeUserControl {
		t.Fatalf("expected UserControl reply, got type %d", reply.Type)
	}
	event := binary.BigEndian.Uint16(reply.Body[0:2])
	if event != rtmpprotocol.UserControlPingResponse {
		t.Fatalf("expected PingResponse event, got %d", event)
	}
	if !bytes.Equal(reply.Body[2:6], body[2:6]) {
		t.Fatal("PingResponse does not echo the PingRequest timestamp")
	}
}

// TestSetPeerBandwidth_EchoesWindowAckSize verifies the idempotent-echo
// policy: SET_PEER_BANDWIDTH is replied to with a WINDOW_ACKNOWLEDGEMENT_SIZE
// of the same size.
func TestSetPeerBandwidth_EchoesWindowAckSize(t *testing.T) {
	fd := &fakeDuplex{}
	s := NewServiceSession(1, fd, bus.NewRegistry(), &recordingConsumer{})

	body := rtmpprotocol.CreateSetPeerBandwidth(2500000, rtmpprotocol.LimitTypeDynamic)
	if err := s.dispatch(&rtmpprotocol.Message{Type: rtmpprotocol.MessageTypeSetPeerBandwidth, Body: body}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	replies := readAllReplies(t, fd)
	if len(replies) != 1 || replies[0].Type != rtmpprotocol.MessageTypeWindowAckSize {
		t.Fatalf("expected a single WindowAckSize reply, got %+v", replies)
	}
	if got := binary.BigEndian.Uint32(replies[0].Body); got != 2500000 {
		t.Fatalf("expected echoed size 2500000, got %d", got)
	}
}

// TestConnect_RejectsOutOfStateSecondConnect verifies that a second
// connect() on an already-connected session is reported as _error, and
// the connection stays open rather than tearing down.
func TestConnect_RejectsOutOfStateSecondConnect(t *testing.T) {
	fd := &fakeDuplex{}
	s := NewServiceSession(1, fd, bus.NewRegistry(), &recordingConsumer{})

	sendCommand(t, s, "connect", 1, amf0.NewObject().Set("app", "live"))
	fd.writeBuf.Reset()

	sendCommand(t, s, "connect", 2, amf0.NewObject().Set("app", "live"))
	replies := readAllReplies(t, fd)
	if len(replies) != 1 {
		t.Fatalf("expected a single reply to the second connect, got %d", len(replies))
	}
	values, err := amf0.DecodeCommand(bytes.NewReader(replies[0].Body))
	if err != nil {
		t.Fatalf("decoding reply: %v", err)
	}
	if values[0] != "_error" {
		t.Fatalf("expected _error for out-of-state connect, got %v", values[0])
	}
	if s.State() != rtmpprotocol.StateConnected {
		t.Fatal("out-of-state connect must not disturb the existing Connected state")
	}
}

// TestConnect_UsesConfiguredOptions checks that the window-ack, peer
// bandwidth, and chunk-size values announced during connect() come from
// the session's Options rather than hard-coded defaults.
func TestConnect_UsesConfiguredOptions(t *testing.T) {
	fd := &fakeDuplex{}
	s := NewServiceSession(1, fd, bus.NewRegistry(), &recordingConsumer{})
	s.opts = Options{ChunkSizeOut: 2048, WindowAckSize: 1000000, PeerBandwidth: 750000}

	sendCommand(t, s, "connect", 1, amf0.NewObject().Set("app", "live"))

	replies := readAllReplies(t, fd)
	if len(replies) != 5 {
		t.Fatalf("expected 5 replies to connect, got %d", len(replies))
	}
	if got := binary.BigEndian.Uint32(replies[0].Body); got != 1000000 {
		t.Errorf("window ack size = %d, want the configured 1000000", got)
	}
	if got := binary.BigEndian.Uint32(replies[1].Body[0:4]); got != 750000 {
		t.Errorf("peer bandwidth = %d, want the configured 750000", got)
	}
	if lt := replies[1].Body[4]; lt != rtmpprotocol.LimitTypeDynamic {
		t.Errorf("peer bandwidth limit type = %d, want dynamic", lt)
	}
	if got := binary.BigEndian.Uint32(replies[3].Body); got != 2048 {
		t.Errorf("outbound chunk size = %d, want the configured 2048", got)
	}
	if s.OutboundChunkSize() != 2048 {
		t.Errorf("session outbound chunk size = %d, want 2048", s.OutboundChunkSize())
	}
}

// TestHandleCommand_MalformedAMF0SendsError checks that a COMMAND
// message whose body fails to decode as AMF0 gets an _error reply
// rather than being silently swallowed, and that the connection is not
// torn down (dispatch returns nil).
func TestHandleCommand_MalformedAMF0SendsError(t *testing.T) {
	fd := &fakeDuplex{}
	s := NewServiceSession(1, fd, bus.NewRegistry(), &recordingConsumer{})

	// A string marker (0x02) claiming a length longer than the body
	// actually carries: truncated mid-value.
	malformed := []byte{0x02, 0x00, 0x10, 'h', 'i'}

	if err := s.dispatch(&rtmpprotocol.Message{Type: rtmpprotocol.MessageTypeCommandAMF0, Body: malformed}); err != nil {
		t.Fatalf("dispatch on malformed AMF0 must not be fatal: %v", err)
	}

	replies := readAllReplies(t, fd)
	if len(replies) != 1 {
		t.Fatalf("expected a single _error reply, got %d", len(replies))
	}
	if replies[0].Type != rtmpprotocol.MessageTypeCommandAMF0 {
		t.Fatalf("expected COMMAND_AMF0 reply, got type %d", replies[0].Type)
	}
	values, err := amf0.DecodeCommand(bytes.NewReader(replies[0].Body))
	if err != nil {
		t.Fatalf("decoding _error reply: %v", err)
	}
	if values[0] != "_error" {
		t.Fatalf("expected _error, got %v", values[0])
	}
}
