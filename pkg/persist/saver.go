package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tracked-dev/tracked/pkg/tracked"
)

// defaultSaveTimeout bounds each store write triggered by a change round.
const defaultSaveTimeout = 10 * time.Second

// Saver is a listener that writes the post-change value to a store, as
// JSON, on every change round. Listeners return nothing, so failures
// surface through the OnError callback.
type Saver[T any] struct {
	store   Store
	key     string
	timeout time.Duration

	// OnError receives persistence failures. If nil, failures are dropped.
	OnError func(error)
}

// SaverOption configures a Saver.
type SaverOption[T any] func(*Saver[T])

// WithSaveTimeout bounds each store write (default: 10s).
func WithSaveTimeout[T any](d time.Duration) SaverOption[T] {
	return func(s *Saver[T]) {
		s.timeout = d
	}
}

// WithOnError sets the persistence failure callback.
func WithOnError[T any](fn func(error)) SaverOption[T] {
	return func(s *Saver[T]) {
		s.OnError = fn
	}
}

// NewSaver creates a Saver writing snapshots to store under key.
// Register it on a tracker like any other listener:
//
//	tr.AddListener("persist", persist.NewSaver[Doc](store, "doc"))
func NewSaver[T any](store Store, key string, opts ...SaverOption[T]) *Saver[T] {
	s := &Saver[T]{
		store:   store,
		key:     key,
		timeout: defaultSaveTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange marshals the new value and saves it. The old value is unused;
// the store holds only the latest snapshot.
func (s *Saver[T]) OnChange(old, new T) {
	data, err := json.Marshal(new)
	if err != nil {
		s.fail(fmt.Errorf("persist: marshal snapshot: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.store.Save(ctx, s.key, data); err != nil {
		s.fail(fmt.Errorf("persist: save snapshot: %w", err))
	}
}

func (s *Saver[T]) fail(err error) {
	if s.OnError != nil {
		s.OnError(err)
	}
}

// Restore loads the snapshot stored under key and unmarshals it into a
// value of type T. Returns ErrNotFound when no snapshot exists; callers
// fall back to their initial value.
func Restore[T any](ctx context.Context, store Store, key string) (T, error) {
	var value T

	data, err := store.Load(ctx, key)
	if err != nil {
		return value, err
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("persist: unmarshal snapshot: %w", err)
	}
	return value, nil
}

// compile-time interface checks
var _ tracked.Listener[int] = (*Saver[int])(nil)
