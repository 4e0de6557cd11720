package tracked

import "sync"

// Registry maps listener keys to listeners. Keys are unique; insertion
// order carries no meaning and notification order is unspecified.
type Registry[T any, K comparable] struct {
	// mu protects entries.
	mu sync.RWMutex

	entries map[K]Listener[T]
}

// NewRegistry creates an empty registry.
func NewRegistry[T any, K comparable]() *Registry[T, K] {
	return &Registry[T, K]{
		entries: make(map[K]Listener[T]),
	}
}

// Add inserts or replaces the listener stored under key.
// It returns the previously stored listener and true if one existed.
func (r *Registry[T, K]) Add(key K, l Listener[T]) (Listener[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.entries[key]
	r.entries[key] = l
	return prev, ok
}

// Remove deletes the listener stored under key.
// It returns the removed listener and true if one was present.
// Removing an absent key is a no-op.
func (r *Registry[T, K]) Remove(key K) (Listener[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.entries[key]
	if ok {
		delete(r.entries, key)
	}
	return prev, ok
}

// Len returns the number of registered listeners.
func (r *Registry[T, K]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// NotifyAll invokes every registered listener with (old, new), each exactly
// once, in unspecified order. Uses copy-before-notify so the registry lock
// is not held while listeners run; a listener may therefore add or remove
// listeners, but changes only take effect for later rounds.
//
// A panicking listener propagates to the caller and leaves the remaining
// listeners of this round un-invoked.
func (r *Registry[T, K]) NotifyAll(old, new T) {
	r.mu.RLock()
	listeners := make([]Listener[T], 0, len(r.entries))
	for _, l := range r.entries {
		listeners = append(listeners, l)
	}
	r.mu.RUnlock()

	for _, l := range listeners {
		l.OnChange(old, new)
	}
}
