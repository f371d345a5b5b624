package notify

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestNotifyReachesLocalSubscribers(t *testing.T) {
	redis := miniredis.RunT(t)
	b := NewBroadcaster()

	l, err := NewRedisListener(redis.Addr(), "", b)
	if err != nil {
		t.Fatalf("new listener: %v", err)
	}
	defer l.Close()

	delivered := make(chan struct{}, 4)
	b.Subscribe(TopicCustomers, func() { delivered <- struct{}{} })

	l.Notify(context.Background(), TopicCustomers)

	// The in-process publish is synchronous, so one delivery already
	// happened. The Redis round trip produces a second one.
	waitFor(t, delivered, "in-process delivery")
	waitFor(t, delivered, "redis delivery")
}

func TestRemotePublishForwarded(t *testing.T) {
	redis := miniredis.RunT(t)
	b := NewBroadcaster()

	l, err := NewRedisListener(redis.Addr(), "", b)
	if err != nil {
		t.Fatalf("new listener: %v", err)
	}
	defer l.Close()

	delivered := make(chan struct{}, 1)
	b.Subscribe(TopicSettings, func() { delivered <- struct{}{} })

	// A write on another instance shows up as a bare channel publish.
	redis.Publish(channelPrefix+TopicSettings, "changed")
	waitFor(t, delivered, "forwarded delivery")
}

func TestCloseIdempotent(t *testing.T) {
	redis := miniredis.RunT(t)
	l, err := NewRedisListener(redis.Addr(), "", NewBroadcaster())
	if err != nil {
		t.Fatalf("new listener: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
