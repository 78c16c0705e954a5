package lifecycle

import "sync"

// Registry is the process-wide map from device identity to its live actor.
//
// It enforces the at-most-one-actor-per-identity invariant: Register is an
// atomic check-and-insert, so of any number of concurrent registrations for
// the same identity exactly one wins and the rest observe
// ErrAlreadyRegistered. There is no ordering guarantee across identities.
//
// All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	actors map[string]*Actor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actors: make(map[string]*Actor),
	}
}

// Lookup returns the live actor for an identity, if one exists.
func (r *Registry) Lookup(identity string) (*Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actors[identity]
	return a, ok
}

// Register inserts an actor for an identity. If the identity is already
// held, nothing changes and ErrAlreadyRegistered is returned.
func (r *Registry) Register(identity string, a *Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actors[identity]; exists {
		return ErrAlreadyRegistered
	}
	r.actors[identity] = a
	return nil
}

// Unregister removes the identity. Removing an absent identity is a no-op.
func (r *Registry) Unregister(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.actors, identity)
}

// unregisterActor removes the identity only if it still maps to a.
// This keeps a slow exit-cleanup goroutine from evicting a successor actor
// that re-acquired the same identity in the meantime.
func (r *Registry) unregisterActor(identity string, a *Actor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.actors[identity]; ok && current == a {
		delete(r.actors, identity)
	}
}

// Actors returns a snapshot of all live actors.
func (r *Registry) Actors() []*Actor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Actor, 0, len(r.actors))
	for _, a := range r.actors {
		out = append(out, a)
	}
	return out
}

// Len returns the number of registered actors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actors)
}
