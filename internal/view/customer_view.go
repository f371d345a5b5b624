// Package view holds the per-user view coordinators: the customer table with
// its change-driven refresh, the document browser, and the settings state.
package view

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"doctrack-be/internal/models"
	"doctrack-be/internal/notify"
	"doctrack-be/internal/tabular"
)

// DefaultRefreshInterval is the minimum spacing between two refreshes. A
// write typically produces both a manual broadcast and a change-stream
// delivery for the same row; the debounce collapses the pair into one fetch.
const DefaultRefreshInterval = 1000 * time.Millisecond

// CustomerFetch loads the current customer collection.
type CustomerFetch func(ctx context.Context) ([]models.Customer, error)

// CustomerView owns the tabular engine backing the dashboard for one user
// and keeps it fresh from change notifications.
type CustomerView struct {
	engine      *tabular.Engine
	fetch       CustomerFetch
	minInterval time.Duration

	generation uint64 // newest issued fetch, stale completions are discarded

	mu          sync.Mutex
	lastRefresh time.Time
	trailing    *time.Timer // armed when a change lands inside the debounce window
	lastErr     error
	closed      bool
	unsubs      []func()
}

// NewCustomerView builds a view and subscribes its refresh to every topic
// that can invalidate the table.
func NewCustomerView(fetch CustomerFetch, broadcaster *notify.Broadcaster, minInterval time.Duration) *CustomerView {
	if minInterval <= 0 {
		minInterval = DefaultRefreshInterval
	}
	v := &CustomerView{
		engine:      tabular.NewEngine(),
		fetch:       fetch,
		minInterval: minInterval,
	}
	if broadcaster != nil {
		topics := []string{
			notify.TopicCustomers,
			notify.TopicStatsHistory,
			notify.TopicSettings,
			notify.TopicDocuments,
			notify.TopicStatsUpdate,
		}
		for _, topic := range topics {
			v.unsubs = append(v.unsubs, broadcaster.Subscribe(topic, v.HandleExternalChange))
		}
	}
	return v
}

// Engine exposes the underlying table engine for user actions.
func (v *CustomerView) Engine() *tabular.Engine { return v.engine }

// HandleExternalChange requests a debounced refresh. Broadcaster callbacks
// must not block the publisher, so the fetch runs on its own goroutine.
// A burst of changes inside the window collapses into one trailing refresh
// at window expiry; events are coalesced, never dropped, so a write landing
// right after a refresh still becomes visible.
func (v *CustomerView) HandleExternalChange() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}

	remaining := v.minInterval - time.Since(v.lastRefresh)
	if remaining <= 0 {
		v.lastRefresh = time.Now()
		go v.refreshDetached()
		return
	}
	if v.trailing != nil {
		return
	}
	v.trailing = time.AfterFunc(remaining, func() {
		v.mu.Lock()
		v.trailing = nil
		if v.closed {
			v.mu.Unlock()
			return
		}
		v.lastRefresh = time.Now()
		v.mu.Unlock()
		v.refreshDetached()
	})
}

func (v *CustomerView) refreshDetached() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	v.Refresh(ctx)
}

// Refresh fetches and loads the collection immediately, bypassing the
// debounce. A completion that is no longer the newest issued fetch is
// discarded so an out-of-order result cannot regress the visible state.
// Fetch failures keep the previous projection and are surfaced via Err.
func (v *CustomerView) Refresh(ctx context.Context) bool {
	gen := atomic.AddUint64(&v.generation, 1)

	rows, err := v.fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	// The staleness check must share the critical section with the load:
	// checked outside it, a newer fetch could be issued, complete and load
	// between the check and this load, and the stale rows would win.
	if atomic.LoadUint64(&v.generation) != gen {
		return false
	}
	if v.closed {
		return false
	}
	if err != nil {
		v.lastErr = err
		return false
	}
	v.lastErr = nil
	return v.engine.Load(rows)
}

// Err returns the last refresh failure, if it has not been dismissed.
func (v *CustomerView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

// DismissErr clears the surfaced refresh failure.
func (v *CustomerView) DismissErr() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastErr = nil
}

// Close unsubscribes from all topics. In-flight fetch results are not
// applied afterwards.
func (v *CustomerView) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	if v.trailing != nil {
		v.trailing.Stop()
		v.trailing = nil
	}
	unsubs := v.unsubs
	v.unsubs = nil
	v.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}
