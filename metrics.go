package otpflow

import "sync/atomic"

// MetricID defines a public type used by otpflow APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricRequestCodeSuccess is an exported constant or variable used by the login client.
	MetricRequestCodeSuccess MetricID = iota
	// MetricRequestCodeFailure is an exported constant or variable used by the login client.
	MetricRequestCodeFailure
	// MetricRequestCodeRateLimited is an exported constant or variable used by the login client.
	MetricRequestCodeRateLimited
	// MetricVerifySuccess is an exported constant or variable used by the login client.
	MetricVerifySuccess
	// MetricVerifyFailure is an exported constant or variable used by the login client.
	MetricVerifyFailure
	// MetricValidationFailure is an exported constant or variable used by the login client.
	MetricValidationFailure
	// MetricEncryptionFailure is an exported constant or variable used by the login client.
	MetricEncryptionFailure
	// MetricTransportFailure is an exported constant or variable used by the login client.
	MetricTransportFailure
	// MetricCodeExpired is an exported constant or variable used by the login client.
	MetricCodeExpired
	// MetricRateLimitLifted is an exported constant or variable used by the login client.
	MetricRateLimitLifted
	// MetricLogout is an exported constant or variable used by the login client.
	MetricLogout
	// MetricWhoAmI is an exported constant or variable used by the login client.
	MetricWhoAmI

	metricIDCount
)

// Metrics holds atomic counters for the login client. When disabled, all
// operations are no-ops.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig].
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc describes the inc operation and its observable behavior.
//
// Inc may return an error when input validation, dependency calls, or security checks fail.
// Inc does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot may return an error when input validation, dependency calls, or security checks fail.
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Snapshot() MetricsSnapshot {
	out := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, metricIDCount),
	}
	if m == nil || !m.enabled {
		return out
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		out.Counters[id] = m.counters[id].Load()
	}
	return out
}
