package goSession

import (
	"sync"
	"testing"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricSignInComplete)

	if got := m.Get(MetricSignInComplete); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricSignInComplete)
	m.Inc(MetricSignInComplete)
	m.Inc(MetricSignInComplete)

	if got := m.Get(MetricSignInComplete); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricRefreshSuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Get(MetricRefreshSuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsSnapshotConsistency(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricSignInComplete)
	m.Inc(MetricRefreshFailure)
	m.Inc(MetricRefreshFailure)

	snap := m.Snapshot()

	if snap.Counters[MetricSignInComplete] != 1 {
		t.Fatalf("expected MetricSignInComplete=1 got %d", snap.Counters[MetricSignInComplete])
	}
	if snap.Counters[MetricRefreshFailure] != 2 {
		t.Fatalf("expected MetricRefreshFailure=2 got %d", snap.Counters[MetricRefreshFailure])
	}
	if snap.Counters[MetricSignOut] != 0 {
		t.Fatalf("expected MetricSignOut=0 got %d", snap.Counters[MetricSignOut])
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricSignInStart)

	if got := m.Get(MetricSignInStart); got != 0 {
		t.Fatalf("expected 0 from nil metrics, got %d", got)
	}
}
