package notify

import "testing"

func TestSubscribePublish(t *testing.T) {
	b := NewBroadcaster()

	var got int
	unsub := b.Subscribe(TopicCustomers, func() { got++ })

	b.Publish(TopicCustomers)
	b.Publish(TopicCustomers)
	if got != 2 {
		t.Fatalf("callback ran %d times, want 2", got)
	}

	// Other topics do not leak into this subscription.
	b.Publish(TopicSettings)
	if got != 2 {
		t.Fatalf("callback ran for an unrelated topic")
	}

	unsub()
	b.Publish(TopicCustomers)
	if got != 2 {
		t.Fatalf("callback ran after unsubscribe")
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	b := NewBroadcaster()
	unsub := b.Subscribe(TopicStatsUpdate, func() {})
	unsub()
	unsub()
	if n := b.SubscriberCount(TopicStatsUpdate); n != 0 {
		t.Fatalf("subscriber count = %d, want 0", n)
	}
}

func TestMultipleSubscribers(t *testing.T) {
	b := NewBroadcaster()

	var first, second bool
	b.Subscribe(TopicDocuments, func() { first = true })
	b.Subscribe(TopicDocuments, func() { second = true })

	b.Publish(TopicDocuments)
	if !first || !second {
		t.Fatalf("not all subscribers ran: first=%v second=%v", first, second)
	}
}
