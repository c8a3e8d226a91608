package chathub

import "sync"

// Registry tracks which connections belong to which user in this process.
// A user may hold several connections at once (multiple tabs, devices).
//
// All state lives behind a single mutex. Reads hand out snapshot copies so
// the lock is never held while events are pushed to sockets.
type Registry struct {
	mu    sync.Mutex
	conns map[string]map[Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]map[Conn]struct{})}
}

// Add registers a connection for a user.
func (r *Registry) Add(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[userID]
	if !ok {
		set = make(map[Conn]struct{})
		r.conns[userID] = set
	}
	set[conn] = struct{}{}
}

// Remove unregisters a connection. Removing an unknown connection is a no-op,
// so disconnect paths and dead-connection pruning may race freely.
func (r *Registry) Remove(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[userID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(r.conns, userID)
	}
}

// ForUser returns a snapshot of the user's current connections. The caller
// may block on them without holding the registry lock.
func (r *Registry) ForUser(userID string) []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.conns[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]Conn, 0, len(set))
	for conn := range set {
		out = append(out, conn)
	}
	return out
}

// CountFor reports how many connections a user currently holds.
func (r *Registry) CountFor(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns[userID])
}
