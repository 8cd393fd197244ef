package metrics

import "sync/atomic"

// MetricID identifies a single counter slot.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginRateLimited
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricReplayDetected
	MetricFamilyRevoked
	MetricLogout
	MetricPermissionDenied
	MetricCodeSent
	MetricCodeSendRateLimited
	MetricCaptchaRejected
	MetricVerifySuccess
	MetricVerifyFailure
	MetricVerifyAttemptsExceeded

	MetricIDCount
)

var metricNames = [MetricIDCount]string{
	MetricLoginSuccess:           "login.success",
	MetricLoginFailure:           "login.failure",
	MetricLoginRateLimited:       "login.rate_limited",
	MetricRefreshSuccess:         "refresh.success",
	MetricRefreshFailure:         "refresh.failure",
	MetricReplayDetected:         "refresh.replay_detected",
	MetricFamilyRevoked:          "refresh.family_revoked",
	MetricLogout:                 "logout",
	MetricPermissionDenied:       "permission.denied",
	MetricCodeSent:               "verification.code_sent",
	MetricCodeSendRateLimited:    "verification.send_rate_limited",
	MetricCaptchaRejected:        "verification.captcha_rejected",
	MetricVerifySuccess:          "verification.success",
	MetricVerifyFailure:          "verification.failure",
	MetricVerifyAttemptsExceeded: "verification.attempts_exceeded",
}

// Name returns the stable dotted name for a counter, or "unknown" for an
// out-of-range id.
func (id MetricID) Name() string {
	if id >= MetricIDCount {
		return "unknown"
	}
	return metricNames[id]
}

// Config controls counter behavior.
type Config struct {
	Enabled bool
}

// paddedCounter occupies a full cache line so adjacent counters do not
// false-share under concurrent increments.
type paddedCounter struct {
	value uint64
	_     [7]uint64
}

// Metrics holds lock-free counters. When disabled, all operations are
// no-ops and Snapshot returns empty maps.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]paddedCounter
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc atomically increments the counter. Allocation-free.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Get returns the current value of a single counter.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot deep-copies all counters.
func (m *Metrics) Snapshot() Snapshot {
	out := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil || !m.enabled {
		return out
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		out.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return out
}
