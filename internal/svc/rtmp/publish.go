// If you are AI: This file handles RTMP publish lifecycle and integration with the bus:
// the publish() command handler, publisher attachment, and media message publishing.

package rtmp

import (
	"fmt"

	"nonchalant/internal/core/bus"
	"nonchalant/internal/core/protocol/amf0"
	rtmpprotocol "nonchalant/internal/core/protocol/rtmp"
)

// handlePublish implements publish(): attaches this connection as the
// stream's publisher and replies with StreamBegin + onStatus. A
// Consumer rejection or an already-published name is reported as
// NetStream.Publish.BadName without closing the connection.
func (s *ServiceSession) handlePublish(values []amf0.Value) error {
	streamName, publishType := extractPublishArgs(values)
	if streamName == "" {
		return s.sendOnStatus(s.PublishStreamID(), "error", "NetStream.Publish.BadName", "stream name not supplied")
	}
	app := s.App()
	if app == "" {
		return s.sendOnStatus(s.PublishStreamID(), "error", "NetStream.Publish.BadName", "no application set")
	}

	if err := s.consumer.OnPublish(s.id, streamName, publishType); err != nil {
		return s.sendOnStatus(s.PublishStreamID(), "error", "NetStream.Publish.BadName", err.Error())
	}

	streamKey := bus.NewStreamKey(app, streamName)
	stream, _ := s.registry.GetOrCreate(streamKey)
	if !stream.AttachPublisher(s.id) {
		return s.sendOnStatus(s.PublishStreamID(), "error", "NetStream.Publish.BadName", "stream already has a publisher")
	}

	s.publisher = NewPublisher(stream, s.id)
	s.SetStreamName(streamName)
	s.SetState(rtmpprotocol.StatePublishing)

	if err := s.WriteMessage(rtmpprotocol.ChunkStreamIDProtocolControl, rtmpprotocol.MessageTypeUserControl, 0, 0, rtmpprotocol.CreateStreamBegin(s.PublishStreamID())); err != nil {
		return fmt.Errorf("publish: stream begin: %w", err)
	}
	return s.sendOnStatusDetails(s.PublishStreamID(), "status", "NetStream.Publish.Start",
		fmt.Sprintf("Started publishing %s.", streamName), streamName)
}

// extractPublishArgs pulls the stream name and publish type out of a
// publish() command: ["publish", txnID, null, streamName, publishType].
func extractPublishArgs(values []amf0.Value) (name, publishType string) {
	if len(values) >= 4 {
		if s, ok := values[3].(string); ok {
			name = s
		}
	}
	if len(values) >= 5 {
		if s, ok := values[4].(string); ok {
			publishType = s
		}
	}
	return name, publishType
}

// Publisher manages publishing media messages to a stream.
// Integrates the RTMP dispatcher with the core bus.
type Publisher struct {
	stream      *bus.Stream
	streamKey   bus.StreamKey
	publisherID uint64
}

// NewPublisher creates a new publisher for a stream.
func NewPublisher(stream *bus.Stream, publisherID uint64) *Publisher {
	return &Publisher{
		stream:      stream,
		streamKey:   stream.Key(),
		publisherID: publisherID,
	}
}

// PublishAudio publishes an audio message to the stream.
// Uses pooled message and payload from the bus.
func (p *Publisher) PublishAudio(timestamp uint32, payload []byte) {
	msg := bus.AcquireMessage()
	msg.Type = bus.MessageTypeAudio
	msg.Timestamp = timestamp
	msg.IsInit = isAACSequenceHeader(payload)
	msg.SetPayload(payload)

	p.stream.Publish(msg)

	// NOTE: Message ownership transfers to stream/subscribers
	// Publisher should not release the message here
}

// PublishVideo publishes a video message to the stream.
// Uses pooled message and payload from the bus.
func (p *Publisher) PublishVideo(timestamp uint32, payload []byte) {
	msg := bus.AcquireMessage()
	msg.Type = bus.MessageTypeVideo
	msg.Timestamp = timestamp
	msg.IsInit = isAVCSequenceHeader(payload)
	msg.SetPayload(payload)

	p.stream.Publish(msg)
}

// PublishMetadata publishes a metadata message (onMetaData and similar
// DATA_AMF0/AMF3 messages) to the stream. Metadata is always cached for
// late-joining subscribers.
func (p *Publisher) PublishMetadata(timestamp uint32, payload []byte) {
	msg := bus.AcquireMessage()
	msg.Type = bus.MessageTypeMetadata
	msg.Timestamp = timestamp
	msg.IsInit = true
	msg.SetPayload(payload)

	p.stream.Publish(msg)
}

// isAVCSequenceHeader reports whether a VIDEO payload is an AVC (H.264)
// sequence header: FrameType=1 (key frame), CodecID=7 (AVC), AVCPacketType=0.
func isAVCSequenceHeader(payload []byte) bool {
	return len(payload) >= 2 && payload[0] == 0x17 && payload[1] == 0x00
}

// isAACSequenceHeader reports whether an AUDIO payload is an AAC sequence
// header: SoundFormat=10 (AAC) in the top nibble, AACPacketType=0.
func isAACSequenceHeader(payload []byte) bool {
	return len(payload) >= 2 && payload[0]>>4 == 10 && payload[1] == 0x00
}

// Detach detaches the publisher from the stream.
func (p *Publisher) Detach() {
	if p.stream != nil {
		p.stream.DetachPublisher()
	}
}

// StreamKey returns the stream key for this publisher.
func (p *Publisher) StreamKey() bus.StreamKey {
	return p.streamKey
}
