//go:build ffmpeg
// +build ffmpeg

// If you are AI: This is the ffmpeg-tagged Task — it subscribes to a bus.Stream
// and drains every message through a Pipeline until stopped.

package transcode

import (
	"context"
	"nonchalant/internal/core/bus"
)

// Task drives one transcode profile: it subscribes to stream and feeds
// every message it receives through pipeline.
type Task struct {
	stream       *bus.Stream
	subscriber   *bus.Subscriber
	subscriberID uint64
	pipeline     *Pipeline
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewTask pairs stream with pipeline; Start must be called to begin
// consuming.
func NewTask(stream *bus.Stream, pipeline *Pipeline) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	return &Task{
		stream:   stream,
		pipeline: pipeline,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start attaches a bounded, drop-oldest subscriber to the stream and
// begins draining it in the background.
func (t *Task) Start() error {
	sub, id := t.stream.AttachSubscriber(1000, bus.BackpressureDropOldest)
	t.subscriber = sub
	t.subscriberID = id

	go t.drain()
	return nil
}

// drain reads messages off the subscriber's buffer and runs each
// through the pipeline until the task's context is cancelled.
func (t *Task) drain() {
	for {
		select {
		case <-t.ctx.Done():
			return
		default:
		}

		msg, ok := t.subscriber.Buffer().Read()
		if !ok {
			continue
		}
		// A transcode failure on one message doesn't end the stream;
		// the next message may succeed.
		_ = t.pipeline.Process(msg.Payload)
	}
}

// Stop cancels the drain loop, detaches the subscriber, and closes the
// pipeline.
func (t *Task) Stop() error {
	t.cancel()
	if t.stream != nil && t.subscriberID != 0 {
		t.stream.DetachSubscriber(t.subscriberID)
	}
	if t.pipeline != nil {
		t.pipeline.Close()
	}
	return nil
}
