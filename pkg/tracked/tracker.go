package tracked

import "sync"

// Tracker owns a value of type T and a registry of listeners keyed by K.
// Reads are free; mutation happens through a scoped Mutation handle obtained
// from Begin or, more commonly, through the Mutate wrapper. Change detection
// and listener notification run once, at handle release.
type Tracker[T any, K comparable] struct {
	// mu guards value and mutating. It is held only for the short state
	// transitions, never across listener callbacks or caller code.
	mu sync.Mutex

	// value is the live, owned data. While a Mutation is outstanding the
	// handle holds exclusive access to it.
	value T

	// mutating is true while a Mutation handle is outstanding.
	mutating bool

	registry *Registry[T, K]

	// equal is the equality function used to decide whether the value
	// changed across a mutation window. If nil, uses defaultEquals.
	equal func(T, T) bool

	// clone copies the value into the handle snapshot. If nil, a plain
	// value copy is used.
	clone func(T) T
}

// New creates a tracker that takes ownership of initial.
// The registry starts empty.
func New[T any, K comparable](initial T) *Tracker[T, K] {
	return &Tracker[T, K]{
		value:    initial,
		registry: NewRegistry[T, K](),
	}
}

// WithEquals returns the tracker configured with a custom equality function.
// Useful when reflect.DeepEqual is too expensive or has incorrect semantics
// for T. Must be called before the first mutation handle is created.
func (t *Tracker[T, K]) WithEquals(fn func(a, b T) bool) *Tracker[T, K] {
	t.equal = fn
	return t
}

// WithClone returns the tracker configured with a custom clone function for
// the Begin-time snapshot. Required for correct diffing when T contains
// maps, slices, or pointers and callers mutate through them in place.
// Must be called before the first mutation handle is created.
func (t *Tracker[T, K]) WithClone(fn func(T) T) *Tracker[T, K] {
	t.clone = fn
	return t
}

// Read returns the current value. It does not snapshot and does not touch
// the registry. Read panics with ErrMutationActive if a mutation handle is
// outstanding: the live value is exclusively owned by the handle until it
// is released.
func (t *Tracker[T, K]) Read() T {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mutating {
		panic(ErrMutationActive)
	}
	return t.value
}

// AddListener registers l under key, replacing any existing entry.
// It returns the previously stored listener and true if one existed.
func (t *Tracker[T, K]) AddListener(key K, l Listener[T]) (Listener[T], bool) {
	return t.registry.Add(key, l)
}

// RemoveListener unregisters the listener stored under key.
// It returns the removed listener and true if one was present; removing an
// absent key is a no-op. A removed listener is never invoked again.
func (t *Tracker[T, K]) RemoveListener(key K) (Listener[T], bool) {
	return t.registry.Remove(key)
}

// Listeners returns the number of registered listeners.
func (t *Tracker[T, K]) Listeners() int {
	return t.registry.Len()
}

// Begin creates a mutation handle, snapshotting the current value and
// granting the handle exclusive access until End. Begin panics with
// ErrMutationActive if another handle is already outstanding; at most one
// handle per tracker exists at a time.
//
// Callers are responsible for releasing the handle exactly once, normally
// with defer:
//
//	m := t.Begin()
//	defer m.End()
//
// Prefer Mutate, which cannot leak the handle.
func (t *Tracker[T, K]) Begin() *Mutation[T, K] {
	t.mu.Lock()
	if t.mutating {
		t.mu.Unlock()
		panic(ErrMutationActive)
	}
	t.mutating = true
	snapshot := t.cloneValue(t.value)
	t.mu.Unlock()

	return &Mutation[T, K]{
		tracker:  t,
		snapshot: snapshot,
	}
}

// Mutate runs fn with exclusive write access to the live value and releases
// the handle when fn returns. The release (diff and, if the value changed,
// notification) is deferred, so it runs exactly once even when fn panics or
// returns early; the panic resumes after notification completes.
func (t *Tracker[T, K]) Mutate(fn func(value *T)) {
	m := t.Begin()
	defer m.End()
	fn(&t.value)
}

// Equal reports whether a and b are equal under the tracker's configured
// equality function. This is the same comparison the release step uses to
// decide whether to notify.
func (t *Tracker[T, K]) Equal(a, b T) bool {
	return t.equals(a, b)
}

// equals checks two values with the configured equality function.
func (t *Tracker[T, K]) equals(a, b T) bool {
	if t.equal != nil {
		return t.equal(a, b)
	}
	return defaultEquals(a, b)
}

// cloneValue copies v with the configured clone function.
func (t *Tracker[T, K]) cloneValue(v T) T {
	if t.clone != nil {
		return t.clone(v)
	}
	return v
}

// endMutation returns exclusive access to the tracker.
func (t *Tracker[T, K]) endMutation() {
	t.mu.Lock()
	t.mutating = false
	t.mu.Unlock()
}
