// Package tracked provides change-tracked ownership of a single value.
//
// A Tracker owns a value, lets callers read it freely, and lets callers
// mutate it through a scoped Mutation handle. When the handle is released,
// the tracker compares a snapshot taken at Begin() against the live value
// and, if they differ, notifies every registered listener with the
// (old, new) pair.
//
// # Core Types
//
// Tracker[T, K] owns the value and the listener registry:
//
//	t := tracked.New[MyData, int](MyData{A: 1})
//	t.AddListener(0, tracked.ListenerFunc[MyData](func(old, new MyData) {
//	    fmt.Printf("changed %v -> %v\n", old, new)
//	}))
//	value := t.Read()
//
// Mutation[T, K] is the scoped handle. The Mutate wrapper guarantees the
// release step runs exactly once, even when the function panics:
//
//	t.Mutate(func(v *MyData) {
//	    v.A = 10
//	})
//	// Listeners were notified with (old, new) before Mutate returned.
//
// The explicit Begin/End form is available when the mutation window spans
// more than one statement block:
//
//	m := t.Begin()
//	defer m.End()
//	m.Value().A = 10
//
// # Change Detection
//
// An arbitrary number of writes inside one handle collapses into a single
// pre/post diff. Writing the value back to its original state produces no
// notification. Equality defaults to == for comparable kinds with a
// reflect.DeepEqual fallback; override with WithEquals. The snapshot is a
// plain value copy by default; values holding maps, slices, or pointers
// need WithClone to snapshot independently.
//
// # Exclusivity
//
// At most one Mutation per Tracker may be alive at a time. Read, Begin,
// and a second concurrent handle fail fast by panicking with
// ErrMutationActive while a handle is outstanding; this is a programming
// error, not a runtime condition. Listener panics are not recovered: they
// propagate out of the release step and may leave later listeners in that
// round un-invoked.
package tracked
