// If you are AI: This file tests Stream's publisher-exclusivity rule,
// subscriber bookkeeping, and that Publish actually fans a message out
// to every attached subscriber's buffer.

package bus

import "testing"

func TestStreamKeyString(t *testing.T) {
	key := NewStreamKey("live", "mystream")
	if key.App != "live" || key.Name != "mystream" {
		t.Fatalf("key = %+v, want App=live Name=mystream", key)
	}
	if got, want := key.String(), "live/mystream"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNewStreamStartsEmpty(t *testing.T) {
	key := NewStreamKey("live", "test")
	stream := NewStream(key)

	if stream.Key() != key {
		t.Error("Key() does not match the key passed to NewStream")
	}
	if stream.HasPublisher() {
		t.Error("a new stream reports HasPublisher() = true")
	}
	if stream.SubscriberCount() != 0 {
		t.Error("a new stream reports nonzero SubscriberCount()")
	}
	if !stream.IsEmpty() {
		t.Error("a new stream reports IsEmpty() = false")
	}
}

func TestPublisherExclusivity(t *testing.T) {
	stream := NewStream(NewStreamKey("live", "test"))

	if !stream.AttachPublisher(1) {
		t.Fatal("first AttachPublisher failed")
	}
	if !stream.HasPublisher() {
		t.Error("HasPublisher() = false right after a successful attach")
	}
	if stream.AttachPublisher(2) {
		t.Error("a second AttachPublisher succeeded while one was already attached")
	}

	stream.DetachPublisher()
	if stream.HasPublisher() {
		t.Error("HasPublisher() = true after DetachPublisher")
	}
	if !stream.AttachPublisher(3) {
		t.Error("AttachPublisher failed after the slot was freed by Detach")
	}
}

func TestSubscriberAttachDetach(t *testing.T) {
	stream := NewStream(NewStreamKey("live", "test"))

	sub1, id1 := stream.AttachSubscriber(100, BackpressureDropOldest)
	if sub1 == nil || id1 == 0 {
		t.Fatalf("first AttachSubscriber = (%v, %d), want non-nil sub and nonzero id", sub1, id1)
	}
	if stream.SubscriberCount() != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", stream.SubscriberCount())
	}

	_, id2 := stream.AttachSubscriber(100, BackpressureDropOldest)
	if id2 == id1 {
		t.Error("two AttachSubscriber calls returned the same id")
	}
	if stream.SubscriberCount() != 2 {
		t.Errorf("SubscriberCount() = %d, want 2", stream.SubscriberCount())
	}

	stream.DetachSubscriber(id1)
	if stream.SubscriberCount() != 1 {
		t.Errorf("SubscriberCount() after one detach = %d, want 1", stream.SubscriberCount())
	}

	stream.DetachSubscriber(id2)
	if stream.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() after both detached = %d, want 0", stream.SubscriberCount())
	}
	if !stream.IsEmpty() {
		t.Error("IsEmpty() = false after removing every subscriber")
	}
}

func TestPublishFansOutToEverySubscriber(t *testing.T) {
	stream := NewStream(NewStreamKey("live", "test"))
	sub1, _ := stream.AttachSubscriber(10, BackpressureDropOldest)
	sub2, _ := stream.AttachSubscriber(10, BackpressureDropOldest)

	msg := AcquireMessage()
	msg.Type = MessageTypeVideo
	msg.Timestamp = 1000
	msg.SetPayload([]byte("test data"))
	stream.Publish(msg)
	ReleaseMessage(msg)

	for name, sub := range map[string]*Subscriber{"sub1": sub1, "sub2": sub2} {
		got, ok := sub.Buffer().Read()
		if !ok {
			t.Errorf("%s did not receive the published message", name)
			continue
		}
		if got.Type != MessageTypeVideo {
			t.Errorf("%s received type %v, want MessageTypeVideo", name, got.Type)
		}
	}
}

func TestStreamEmptinessTracksBothPublisherAndSubscribers(t *testing.T) {
	stream := NewStream(NewStreamKey("live", "test"))
	stream.AttachPublisher(1)
	stream.AttachSubscriber(10, BackpressureDropOldest)
	stream.AttachSubscriber(10, BackpressureDropOldest)

	if stream.IsEmpty() {
		t.Error("IsEmpty() = true with a publisher and subscribers attached")
	}

	stream.DetachPublisher()
	if stream.IsEmpty() {
		t.Error("IsEmpty() = true with subscribers still attached after publisher detach")
	}
}
