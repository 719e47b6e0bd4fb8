package goSession

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricSignInStart counts SignIn calls that issued an authorization URL.
	MetricSignInStart MetricID = iota
	// MetricSignInComplete counts successful code exchanges.
	MetricSignInComplete
	// MetricSignInShortCircuit counts SignIn calls answered from an existing valid session.
	MetricSignInShortCircuit
	// MetricSignInFailure counts failed sign-in attempts of either branch.
	MetricSignInFailure
	// MetricRefreshSuccess counts successful silent refreshes.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refreshes that yielded no usable token.
	MetricRefreshFailure
	// MetricSignOut counts completed sign-outs.
	MetricSignOut
	// MetricStaleEvicted counts stale session records evicted by the engine.
	MetricStaleEvicted
	// MetricAuthCheckTrue counts IsAuthenticated calls answering true.
	MetricAuthCheckTrue
	// MetricAuthCheckFalse counts IsAuthenticated calls answering false.
	MetricAuthCheckFalse
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the engine's atomic counters. All methods are safe for
// concurrent use; a disabled Metrics is a no-op.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a Metrics per the given config.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
	}
}

// Inc increments a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Get reads a single counter.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, metricIDCount),
	}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snap
}
