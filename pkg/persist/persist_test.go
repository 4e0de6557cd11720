package persist

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/tracked-dev/tracked/pkg/tracked"
)

func TestMemStoreRoundTrip(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing key, got %v", err)
	}

	if err := s.Save(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := s.Load(ctx, "k")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("expected stored snapshot back, got %s", data)
	}

	// Overwrite replaces the snapshot.
	if err := s.Save(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, _ = s.Load(ctx, "k")
	if string(data) != `{"a":2}` {
		t.Errorf("expected overwritten snapshot, got %s", data)
	}
}

func TestMemStoreCopies(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	buf := []byte(`{"a":1}`)
	s.Save(ctx, "k", buf)
	buf[2] = 'x' // caller's buffer mutation must not leak into the store

	data, _ := s.Load(ctx, "k")
	if string(data) != `{"a":1}` {
		t.Errorf("store must hold an independent copy, got %s", data)
	}
}

type sample struct {
	A int `json:"a"`
}

func TestSaverPersistsOnChange(t *testing.T) {
	store := NewMemStore()
	saver := NewSaver[sample](store, "doc")

	tr := tracked.New[sample, string](sample{A: 1})
	tr.AddListener("persist", saver)

	tr.Mutate(func(v *sample) { v.A = 10 })

	data, err := store.Load(context.Background(), "doc")
	if err != nil {
		t.Fatalf("expected snapshot saved, got %v", err)
	}
	var got sample
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if got.A != 10 {
		t.Errorf("expected snapshot of new value 10, got %d", got.A)
	}
}

func TestSaverSkipsUnchanged(t *testing.T) {
	store := NewMemStore()
	saver := NewSaver[sample](store, "doc")

	tr := tracked.New[sample, string](sample{A: 1})
	tr.AddListener("persist", saver)

	tr.Mutate(func(v *sample) { v.A = 1 })

	if _, err := store.Load(context.Background(), "doc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unchanged release must not persist, got %v", err)
	}
}

// failStore always fails Save.
type failStore struct {
	err error
}

func (s *failStore) Save(ctx context.Context, key string, data []byte) error {
	return s.err
}

func (s *failStore) Load(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrNotFound
}

func TestSaverReportsErrors(t *testing.T) {
	boom := errors.New("disk full")
	var got error
	saver := NewSaver[sample](&failStore{err: boom},
		"doc",
		WithOnError[sample](func(err error) { got = err }),
	)

	tr := tracked.New[sample, string](sample{A: 1})
	tr.AddListener("persist", saver)

	tr.Mutate(func(v *sample) { v.A = 2 })

	if !errors.Is(got, boom) {
		t.Errorf("expected OnError to receive the store failure, got %v", got)
	}
}

func TestRestore(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	if _, err := Restore[sample](ctx, store, "doc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty store, got %v", err)
	}

	store.Save(ctx, "doc", []byte(`{"a":42}`))
	got, err := Restore[sample](ctx, store, "doc")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got.A != 42 {
		t.Errorf("expected restored value 42, got %d", got.A)
	}

	store.Save(ctx, "doc", []byte(`{broken`))
	if _, err := Restore[sample](ctx, store, "doc"); err == nil {
		t.Error("expected error for corrupt snapshot")
	}
}
