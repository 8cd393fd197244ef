package authcore

import (
	internalmetrics "github.com/cafeplatform/authcore/internal/metrics"
)

// MetricID identifies one lock-free counter slot.
type MetricID = internalmetrics.MetricID

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot

const (
	MetricLoginSuccess           = internalmetrics.MetricLoginSuccess
	MetricLoginFailure           = internalmetrics.MetricLoginFailure
	MetricLoginRateLimited       = internalmetrics.MetricLoginRateLimited
	MetricRefreshSuccess         = internalmetrics.MetricRefreshSuccess
	MetricRefreshFailure         = internalmetrics.MetricRefreshFailure
	MetricReplayDetected         = internalmetrics.MetricReplayDetected
	MetricFamilyRevoked          = internalmetrics.MetricFamilyRevoked
	MetricLogout                 = internalmetrics.MetricLogout
	MetricPermissionDenied       = internalmetrics.MetricPermissionDenied
	MetricCodeSent               = internalmetrics.MetricCodeSent
	MetricCodeSendRateLimited    = internalmetrics.MetricCodeSendRateLimited
	MetricCaptchaRejected        = internalmetrics.MetricCaptchaRejected
	MetricVerifySuccess          = internalmetrics.MetricVerifySuccess
	MetricVerifyFailure          = internalmetrics.MetricVerifyFailure
	MetricVerifyAttemptsExceeded = internalmetrics.MetricVerifyAttemptsExceeded
)

// MetricsSnapshot copies all counters. Returns empty maps when metrics are
// disabled, so exporters can poll unconditionally.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}
