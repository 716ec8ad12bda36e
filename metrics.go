package sessionkit

import (
	internalmetrics "github.com/campuspulse/sessionkit/internal/metrics"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure counts failed logins.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLogout counts caller-initiated logouts.
	MetricLogout = internalmetrics.MetricLogout
	// MetricLogoutForced counts logouts forced by the expiry monitor.
	MetricLogoutForced = internalmetrics.MetricLogoutForced
	// MetricLogoutRemoteFailed counts remote logout calls that failed and
	// were swallowed.
	MetricLogoutRemoteFailed = internalmetrics.MetricLogoutRemoteFailed
	// MetricRefreshSuccess counts successful user refreshes.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure counts failed user refreshes.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricRefreshDiscarded counts refresh responses dropped because the
	// session was torn down while they were in flight.
	MetricRefreshDiscarded = internalmetrics.MetricRefreshDiscarded
	// MetricExtendSuccess counts successful extend-session refreshes.
	MetricExtendSuccess = internalmetrics.MetricExtendSuccess
	// MetricExtendFailure counts extend-session refreshes that escalated
	// to forced logout.
	MetricExtendFailure = internalmetrics.MetricExtendFailure
	// MetricUpdateApplied counts applied partial user updates.
	MetricUpdateApplied = internalmetrics.MetricUpdateApplied
	// MetricRestoreSuccess counts sessions restored from the credential
	// store at startup.
	MetricRestoreSuccess = internalmetrics.MetricRestoreSuccess
	// MetricRestoreCorrupt counts corrupt persisted records discarded at
	// startup.
	MetricRestoreCorrupt = internalmetrics.MetricRestoreCorrupt
	// MetricSessionExpired counts sessions that hit the end of their
	// window.
	MetricSessionExpired = internalmetrics.MetricSessionExpired
	// MetricExpiryWarning counts ticks on which a session first entered
	// the warning window.
	MetricExpiryWarning = internalmetrics.MetricExpiryWarning
	// MetricLoginLatency is the login round-trip latency histogram.
	MetricLoginLatency = internalmetrics.MetricLoginLatency
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
