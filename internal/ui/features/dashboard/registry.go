package dashboard

import (
	"sync"

	"github.com/leapstack-labs/pbconsole/internal/feed"
)

// mountedView is a dashboard session bound to the browser session that opened it.
type mountedView struct {
	session *feed.Session
	sid     string
}

// Registry tracks the dashboard sessions mounted by open update streams so that
// out-of-band requests (the refresh button) can reach them.
type Registry struct {
	mu    sync.RWMutex
	views map[string]mountedView
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{views: make(map[string]mountedView)}
}

// Add registers a session under a view id. It returns false, leaving the
// registry untouched, when the id is already taken by another stream.
func (r *Registry) Add(viewID, sid string, s *feed.Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.views[viewID]; taken {
		return false
	}
	r.views[viewID] = mountedView{session: s, sid: sid}
	return true
}

// Remove drops the view if it is still bound to s.
func (r *Registry) Remove(viewID string, s *feed.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.views[viewID]; ok && v.session == s {
		delete(r.views, viewID)
	}
}

// Get returns the session for a view opened by the browser session sid.
func (r *Registry) Get(viewID, sid string) (*feed.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[viewID]
	if !ok || v.sid != sid {
		return nil, false
	}
	return v.session, true
}

// Len returns the number of mounted views.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}
