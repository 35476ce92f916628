// If you are AI: Converts bus.MediaMessage values into FLV tags for
// the HTTP-FLV and WS-FLV subscribers, without re-encoding the payload.

package flv

import "nonchalant/internal/core/bus"

// MuxMessage builds the FLV tag for msg, picking the tag type from its
// MessageType. Returns nil for a type this muxer doesn't carry.
func MuxMessage(msg *bus.MediaMessage) *Tag {
	if msg == nil {
		return nil
	}
	switch msg.Type {
	case bus.MessageTypeAudio:
		return NewTag(TagTypeAudio, msg.Timestamp, msg.Payload)
	case bus.MessageTypeVideo:
		return NewTag(TagTypeVideo, msg.Timestamp, msg.Payload)
	case bus.MessageTypeMetadata:
		return NewTag(TagTypeScript, msg.Timestamp, msg.Payload)
	default:
		return nil
	}
}
