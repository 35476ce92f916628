// If you are AI: This file defines the consumer interface the command
// dispatcher calls out to: on_connect/on_publish/on_play/on_av_message/
// on_close. BusConsumer is the concrete implementation wired
// into the server, backed by the core pub/sub bus; OnConnect, OnPublish and
// OnPlay may reject the request by returning an error, which the dispatcher reports to the
// peer as a NetConnection/NetStream rejection rather than tearing down
// the connection.

package rtmp

import (
	"errors"
	"log"

	"nonchalant/internal/core/bus"
)

// ErrConnectRejected signals OnConnect rejected the request; the
// dispatcher replies with NetConnection.Connect.Rejected.
var ErrConnectRejected = errors.New("rtmp: connect rejected")

// ErrPublishRejected signals OnPublish rejected the request; the
// dispatcher replies with NetStream.Publish.BadName.
var ErrPublishRejected = errors.New("rtmp: publish rejected")

// AVMessage is the message record handed to OnAVMessage: an AUDIO, VIDEO,
// or DATA_AMF0 message received within a Publishing stream.
type AVMessage struct {
	Type      byte
	Timestamp uint32
	StreamID  uint32
	Payload   []byte
}

// Consumer is the application-level collaborator the dispatcher drives.
// Implementations may reject connect/publish/play by returning an error;
// OnAVMessage and OnClose are notifications with no reject path.
type Consumer interface {
	OnConnect(connID uint64, app, tcURL string, objectEncoding float64) error
	OnPublish(connID uint64, streamName, publishType string) error
	OnPlay(connID uint64, streamName string) error
	OnAVMessage(connID uint64, msg AVMessage)
	OnClose(connID uint64, reason error)
}

// BusConsumer implements Consumer on top of the core bus: publish()
// attaches a Publisher to a bus.Stream and forwards AV messages to it;
// play() attaches a Subscriber and the caller is expected to pump its
// ring buffer back onto the wire (see play.go).
type BusConsumer struct {
	registry *bus.Registry
}

// NewBusConsumer wraps registry as a Consumer.
func NewBusConsumer(registry *bus.Registry) *BusConsumer {
	return &BusConsumer{registry: registry}
}

// OnConnect accepts every app name; this engine does not gate connect()
// on application identity.
func (c *BusConsumer) OnConnect(connID uint64, app, tcURL string, objectEncoding float64) error {
	log.Printf("conn %d: connect app=%q tcUrl=%q objectEncoding=%v", connID, app, tcURL, objectEncoding)
	return nil
}

// OnPublish is a notification hook; actual stream attachment happens in
// ServiceSession.handlePublish, which needs the app name already recorded
// on the connection. Rejection here is reserved for policy extensions
// (e.g. an authorization hook) and always succeeds in this engine.
func (c *BusConsumer) OnPublish(connID uint64, streamName, publishType string) error {
	log.Printf("conn %d: publish %q (%s)", connID, streamName, publishType)
	return nil
}

// OnPlay is the play() notification hook, analogous to OnPublish.
func (c *BusConsumer) OnPlay(connID uint64, streamName string) error {
	log.Printf("conn %d: play %q", connID, streamName)
	return nil
}

// OnAVMessage is a no-op: nothing is logged or recorded on the hot
// audio/video path.
func (c *BusConsumer) OnAVMessage(connID uint64, msg AVMessage) {}

// OnClose logs connection teardown.
func (c *BusConsumer) OnClose(connID uint64, reason error) {
	log.Printf("conn %d: closed: %v", connID, reason)
}
