// Package notify bridges table-level change streams and in-process refresh
// signals to the views that need to re-fetch.
package notify

import "sync"

// Topics views can subscribe to. One per watched table, plus the manual
// stats_update signal raised by writers.
const (
	TopicCustomers    = "customers"
	TopicDocuments    = "customer_documents"
	TopicStatsHistory = "stats_history"
	TopicSettings     = "app_settings"
	TopicStatsUpdate  = "stats_update"
)

// Broadcaster is an explicit in-process publish/subscribe coordinator.
// Components performing a write publish through it to notify every listening
// view synchronously, without waiting for the change-stream round trip.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func()
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[string]map[int]func())}
}

// Subscribe registers fn for a topic and returns an unsubscribe func.
// Unsubscribing is idempotent.
func (b *Broadcaster) Subscribe(topic string, fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]func())
	}
	id := b.nextID
	b.nextID++
	b.subs[topic][id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish invokes every subscriber of the topic synchronously.
func (b *Broadcaster) Publish(topic string) {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs[topic]))
	for _, fn := range b.subs[topic] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// SubscriberCount reports how many callbacks a topic currently has.
func (b *Broadcaster) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}
