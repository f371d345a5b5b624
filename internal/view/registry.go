package view

import "sync"

// Registry hands out per-user views, creating them lazily on first use and
// closing every one on shutdown.
type Registry struct {
	newView    func() *CustomerView
	newBrowser func() *DocumentBrowser

	mu       sync.Mutex
	views    map[string]*CustomerView
	browsers map[string]*DocumentBrowser
}

func NewRegistry(newView func() *CustomerView, newBrowser func() *DocumentBrowser) *Registry {
	return &Registry{
		newView:    newView,
		newBrowser: newBrowser,
		views:      make(map[string]*CustomerView),
		browsers:   make(map[string]*DocumentBrowser),
	}
}

// CustomerView returns the user's table view, creating it on first access.
func (r *Registry) CustomerView(userID string) *CustomerView {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.views[userID]; ok {
		return v
	}
	v := r.newView()
	r.views[userID] = v
	return v
}

// DocumentBrowser returns the user's document browser, creating it on first
// access.
func (r *Registry) DocumentBrowser(userID string) *DocumentBrowser {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.browsers[userID]; ok {
		return b
	}
	b := r.newBrowser()
	r.browsers[userID] = b
	return b
}

// Close tears down every view. Further lookups create fresh, unsubscribed
// views; Close is meant for server shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*CustomerView)
	r.mu.Unlock()
	for _, v := range views {
		v.Close()
	}
}
