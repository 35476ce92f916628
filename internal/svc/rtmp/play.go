// If you are AI: This file implements the play() side of the dispatcher:
// the play() command handler plus subscriberPump, which attaches a
// bus.Subscriber to a Stream and runs its own goroutine forwarding
// buffered media onto the connection, concurrently with the read loop
// that keeps servicing control messages and pings. The pump is the one
// deliberate exception to the per-connection single-goroutine rule (see
// writeMu in internal/core/protocol/rtmp/session.go).

package rtmp

import (
	"fmt"
	"time"

	"nonchalant/internal/core/bus"
	"nonchalant/internal/core/protocol/amf0"
	rtmpprotocol "nonchalant/internal/core/protocol/rtmp"
)

// handlePlay implements play(): attaches this connection as a bus
// subscriber and starts a pump goroutine forwarding the stream's media
// to the wire.
func (s *ServiceSession) handlePlay(values []amf0.Value) error {
	streamName := extractPlayName(values)
	if streamName == "" {
		return s.sendOnStatus(s.PublishStreamID(), "error", "NetStream.Play.StreamNotFound", "stream name not supplied")
	}
	app := s.App()
	if app == "" {
		return s.sendOnStatus(s.PublishStreamID(), "error", "NetStream.Play.StreamNotFound", "no application set")
	}

	if err := s.consumer.OnPlay(s.id, streamName); err != nil {
		return s.sendOnStatus(s.PublishStreamID(), "error", "NetStream.Play.StreamNotFound", err.Error())
	}

	streamKey := bus.NewStreamKey(app, streamName)
	stream := s.registry.Get(streamKey)
	if stream == nil {
		return s.sendOnStatus(s.PublishStreamID(), "error", "NetStream.Play.StreamNotFound", "stream not found")
	}

	s.SetStreamName(streamName)
	s.SetState(rtmpprotocol.StatePlaying)

	streamID := s.PublishStreamID()
	if err := s.WriteMessage(rtmpprotocol.ChunkStreamIDProtocolControl, rtmpprotocol.MessageTypeUserControl, 0, 0, rtmpprotocol.CreateStreamBegin(streamID)); err != nil {
		return fmt.Errorf("play: stream begin: %w", err)
	}
	if err := s.sendOnStatusDetails(streamID, "status", "NetStream.Play.Start",
		fmt.Sprintf("Started playing %s.", streamName), streamName); err != nil {
		return err
	}

	s.subscriber = newSubscriberPump(s.Connection, stream, streamID)
	s.subscriber.start()
	return nil
}

// extractPlayName pulls the stream name out of a play() command:
// ["play", txnID, null, streamName, ...].
func extractPlayName(values []amf0.Value) string {
	if len(values) >= 4 {
		if s, ok := values[3].(string); ok {
			return s
		}
	}
	return ""
}

// Chunk stream ids the pump writes AV/DATA messages on, matching the
// ids a publishing connection receives them on.
const (
	csidAudio = 4
	csidVideo = 6
	csidData  = 5
)

// subscriberPump drains a stream's ring buffer and writes each message
// to a connection as an RTMP AUDIO/VIDEO/DATA message bound to streamID.
type subscriberPump struct {
	conn     *rtmpprotocol.Connection
	stream   *bus.Stream
	streamID uint32

	busSub *bus.Subscriber
	subID  uint64

	stopCh chan struct{}
	doneCh chan struct{}
}

// newSubscriberPump attaches a new subscriber to stream and returns a
// pump ready to start. Backpressure drops the oldest buffered frame so
// a slow player never blocks the publisher.
func newSubscriberPump(conn *rtmpprotocol.Connection, stream *bus.Stream, streamID uint32) *subscriberPump {
	busSub, subID := stream.AttachSubscriber(1000, bus.BackpressureDropOldest)
	return &subscriberPump{
		conn:     conn,
		stream:   stream,
		streamID: streamID,
		busSub:   busSub,
		subID:    subID,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// start runs the forwarding loop in its own goroutine.
func (p *subscriberPump) start() {
	go p.run()
}

// run drains the subscriber's ring buffer until stop is requested or a
// write to the peer fails. An empty buffer is polled rather than
// busy-spun, since this goroutine shares the connection's writer with
// the read loop and has no wakeup channel of its own.
func (p *subscriberPump) run() {
	defer close(p.doneCh)
	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		msg, ok := p.busSub.Buffer().Read()
		if !ok {
			select {
			case <-p.stopCh:
				return
			case <-time.After(5 * time.Millisecond):
			}
			continue
		}

		csid, msgType := wireTypeForMessage(msg.Type)
		if err := p.conn.WriteMessage(csid, msgType, msg.Timestamp, p.streamID, msg.Payload); err != nil {
			return
		}
	}
}

// stop detaches the subscriber and waits for the pump goroutine to exit.
func (p *subscriberPump) stop() {
	select {
	case <-p.stopCh:
		// already stopped
		return
	default:
		close(p.stopCh)
	}
	<-p.doneCh
	p.stream.DetachSubscriber(p.subID)
}

// wireTypeForMessage maps a bus message type to the RTMP message type
// id and chunk stream id a play() subscriber receives it on.
func wireTypeForMessage(t bus.MessageType) (csid uint32, msgType byte) {
	switch t {
	case bus.MessageTypeAudio:
		return csidAudio, rtmpprotocol.MessageTypeAudio
	case bus.MessageTypeVideo:
		return csidVideo, rtmpprotocol.MessageTypeVideo
	default:
		return csidData, rtmpprotocol.MessageTypeDataAMF0
	}
}
