package forms

import (
	"sync"
	"time"
)

// registryTTL is how long an idle controller survives before it is swept.
const registryTTL = 24 * time.Hour

type entry struct {
	ctrl     *Controller
	lastUsed time.Time
}

// Registry hands out one Controller per (session, collection) pair, so each
// admin session gets its own editing surface with its own upload lock.
// Stale controllers are swept lazily on access.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	factory func(collection string) *Controller
}

// NewRegistry creates a Registry. factory builds a fresh controller for a
// collection; it is called at most once per live (session, collection) key.
func NewRegistry(factory func(collection string) *Controller) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		factory: factory,
	}
}

// Get returns the controller for a session's view of a collection,
// creating it on first use.
func (r *Registry) Get(sessionID, collection string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.sweepLocked(now)

	key := sessionID + ":" + collection
	e, ok := r.entries[key]
	if !ok {
		e = &entry{ctrl: r.factory(collection)}
		r.entries[key] = e
	}
	e.lastUsed = now
	return e.ctrl
}

// sweepLocked drops controllers idle past the TTL. Never drops one whose
// upload is still in flight.
func (r *Registry) sweepLocked(now time.Time) {
	for key, e := range r.entries {
		if now.Sub(e.lastUsed) > registryTTL && !e.ctrl.Uploading() {
			delete(r.entries, key)
		}
	}
}
