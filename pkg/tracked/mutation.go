package tracked

// Mutation is a scoped handle granting exclusive read/write access to a
// tracker's live value. It is created by Tracker.Begin, which snapshots the
// value, and released exactly once by End, which diffs the snapshot against
// the live value and notifies listeners if they differ.
//
// A Mutation has two states: active and released. Released is terminal; a
// released handle panics with ErrMutationReleased on any further use.
type Mutation[T any, K comparable] struct {
	tracker *Tracker[T, K]

	// snapshot is the independent copy taken at Begin.
	snapshot T

	released bool
}

// Value returns a pointer to the live value for in-place reads and writes.
// The pointer is valid only until End.
func (m *Mutation[T, K]) Value() *T {
	m.checkActive()
	return &m.tracker.value
}

// Get returns the current live value.
func (m *Mutation[T, K]) Get() T {
	m.checkActive()
	return m.tracker.value
}

// Set replaces the live value.
func (m *Mutation[T, K]) Set(v T) {
	m.checkActive()
	m.tracker.value = v
}

// Update replaces the live value with fn applied to it.
func (m *Mutation[T, K]) Update(fn func(T) T) {
	m.checkActive()
	m.tracker.value = fn(m.tracker.value)
}

// End releases the handle: it compares the Begin-time snapshot against the
// live value and, if they are not equal, invokes every registered listener
// with (snapshot, current), old first, no matter how many writes happened
// in between. Exclusive access returns to the tracker even when a listener
// panics.
//
// End must be called exactly once; a second call panics with
// ErrMutationReleased.
func (m *Mutation[T, K]) End() {
	m.checkActive()
	m.released = true

	t := m.tracker
	// Still exclusive: no lock needed to read the live value.
	current := t.value

	defer t.endMutation()

	if !t.equals(m.snapshot, current) {
		t.registry.NotifyAll(m.snapshot, current)
	}
}

func (m *Mutation[T, K]) checkActive() {
	if m.released {
		panic(ErrMutationReleased)
	}
}
