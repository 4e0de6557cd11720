package tracked

// Listener is anything that can be notified when the tracked value changes.
// OnChange receives the value as it was when the mutation handle was
// created and the value as it is at release. Implementations may be invoked
// from whichever goroutine releases the handle, but never concurrently with
// another listener of the same tracker.
type Listener[T any] interface {
	// OnChange is called once per release in which the value changed.
	// old is the pre-mutation snapshot, new is the post-mutation value.
	OnChange(old, new T)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc[T any] func(old, new T)

// OnChange calls f(old, new).
func (f ListenerFunc[T]) OnChange(old, new T) {
	f(old, new)
}
