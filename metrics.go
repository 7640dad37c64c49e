package goGuard

import (
	"sync/atomic"
	"time"
)

// MetricID defines a public type used by goGuard APIs.
type MetricID uint16

const (
	// MetricIssueSuccess is an exported constant or variable used by the token lifecycle engine.
	MetricIssueSuccess MetricID = iota
	// MetricIssueFailure is an exported constant or variable used by the token lifecycle engine.
	MetricIssueFailure
	// MetricRotateSuccess is an exported constant or variable used by the token lifecycle engine.
	MetricRotateSuccess
	// MetricRotateFailure is an exported constant or variable used by the token lifecycle engine.
	MetricRotateFailure
	// MetricValidateSuccess is an exported constant or variable used by the token lifecycle engine.
	MetricValidateSuccess
	// MetricValidateFailure is an exported constant or variable used by the token lifecycle engine.
	MetricValidateFailure
	// MetricValidateExpired is an exported constant or variable used by the token lifecycle engine.
	MetricValidateExpired
	// MetricValidateSuperseded is an exported constant or variable used by the token lifecycle engine.
	MetricValidateSuperseded
	// MetricRevokeOne is an exported constant or variable used by the token lifecycle engine.
	MetricRevokeOne
	// MetricRevokeAll is an exported constant or variable used by the token lifecycle engine.
	MetricRevokeAll
	// MetricRoleResolveFailure is an exported constant or variable used by the token lifecycle engine.
	MetricRoleResolveFailure
	// MetricRateLimitAdmitted is an exported constant or variable used by the token lifecycle engine.
	MetricRateLimitAdmitted
	// MetricRateLimitRejected is an exported constant or variable used by the token lifecycle engine.
	MetricRateLimitRejected
	// MetricValidateLatency is an exported constant or variable used by the token lifecycle engine.
	MetricValidateLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics defines a public type used by goGuard APIs.
//
// Counters are cache-line padded and updated with atomics; reads never block
// writers.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot defines a public type used by goGuard APIs.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a metrics collector honoring the given config.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are being collected.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments the counter for id; disabled collectors ignore the call.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a validate latency sample when histograms are enabled.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricValidateLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value returns the current value of one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters and histograms at one point in time.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricValidateLatency].buckets[i])
		}
		s.Histograms[MetricValidateLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
