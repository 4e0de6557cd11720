package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tracked-dev/tracked/pkg/tracked"
)

func newTestMetrics() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithNamespace("test"))
	return m, reg
}

func TestObserveCountsChanges(t *testing.T) {
	m, _ := newTestMetrics()

	tr := tracked.New[int, string](0)
	tr.AddListener("metrics", Observe[int](m, nil))

	tr.Mutate(func(v *int) { *v = 1 })
	tr.Mutate(func(v *int) { *v = 1 }) // unchanged, no notification
	tr.Mutate(func(v *int) { *v = 2 })

	if got := testutil.ToFloat64(m.changesTotal); got != 2 {
		t.Errorf("expected changes_total 2, got %v", got)
	}
}

func TestObserveDelegates(t *testing.T) {
	m, _ := newTestMetrics()

	count := 0
	var gotOld, gotNew int
	next := tracked.ListenerFunc[int](func(old, new int) {
		count++
		gotOld, gotNew = old, new
	})

	tr := tracked.New[int, string](5)
	tr.AddListener("metrics", Observe[int](m, next))

	tr.Mutate(func(v *int) { *v = 6 })

	if count != 1 {
		t.Fatalf("expected delegate invoked once, got %d", count)
	}
	if gotOld != 5 || gotNew != 6 {
		t.Errorf("expected delegate called with (5, 6), got (%d, %d)", gotOld, gotNew)
	}
}

func TestRecordRelease(t *testing.T) {
	m, _ := newTestMetrics()

	m.RecordRelease(true, 10*time.Millisecond)
	m.RecordRelease(false, time.Millisecond)
	m.RecordRelease(false, time.Millisecond)

	if got := testutil.ToFloat64(m.releasesTotal.WithLabelValues("changed")); got != 1 {
		t.Errorf("expected releases_total{outcome=changed} 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.releasesTotal.WithLabelValues("unchanged")); got != 2 {
		t.Errorf("expected releases_total{outcome=unchanged} 2, got %v", got)
	}
}

func TestSetListeners(t *testing.T) {
	m, _ := newTestMetrics()

	m.SetListeners(3)
	if got := testutil.ToFloat64(m.listeners); got != 3 {
		t.Errorf("expected listeners gauge 3, got %v", got)
	}
	m.SetListeners(0)
	if got := testutil.ToFloat64(m.listeners); got != 0 {
		t.Errorf("expected listeners gauge 0, got %v", got)
	}
}
