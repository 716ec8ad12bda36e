package internaldefs

import (
	sessionkit "github.com/campuspulse/sessionkit"
)

// CounterDef names a single exported counter.
type CounterDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// HistogramDef names a single exported histogram.
type HistogramDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// CounterDefs is the canonical export order for counters.
var CounterDefs = []CounterDef{
	{ID: sessionkit.MetricLoginSuccess, Name: "sessionkit_login_success_total", Help: "Successful login attempts."},
	{ID: sessionkit.MetricLoginFailure, Name: "sessionkit_login_failure_total", Help: "Failed login attempts."},
	{ID: sessionkit.MetricLogout, Name: "sessionkit_logout_total", Help: "Caller-initiated logout operations."},
	{ID: sessionkit.MetricLogoutForced, Name: "sessionkit_logout_forced_total", Help: "Logouts forced by the expiry monitor or fail-closed policy."},
	{ID: sessionkit.MetricLogoutRemoteFailed, Name: "sessionkit_logout_remote_failed_total", Help: "Remote logout calls that failed and were swallowed."},
	{ID: sessionkit.MetricRefreshSuccess, Name: "sessionkit_refresh_success_total", Help: "Successful user refresh operations."},
	{ID: sessionkit.MetricRefreshFailure, Name: "sessionkit_refresh_failure_total", Help: "Failed user refresh operations."},
	{ID: sessionkit.MetricRefreshDiscarded, Name: "sessionkit_refresh_discarded_total", Help: "Refresh responses discarded because the session was torn down in flight."},
	{ID: sessionkit.MetricExtendSuccess, Name: "sessionkit_extend_success_total", Help: "Successful extend-session operations."},
	{ID: sessionkit.MetricExtendFailure, Name: "sessionkit_extend_failure_total", Help: "Extend-session operations that escalated to forced logout."},
	{ID: sessionkit.MetricUpdateApplied, Name: "sessionkit_update_applied_total", Help: "Applied partial user updates."},
	{ID: sessionkit.MetricRestoreSuccess, Name: "sessionkit_restore_success_total", Help: "Sessions restored from the credential store at startup."},
	{ID: sessionkit.MetricRestoreCorrupt, Name: "sessionkit_restore_corrupt_total", Help: "Corrupt persisted records discarded at startup."},
	{ID: sessionkit.MetricSessionExpired, Name: "sessionkit_session_expired_total", Help: "Sessions that reached the end of their window."},
	{ID: sessionkit.MetricExpiryWarning, Name: "sessionkit_expiry_warning_total", Help: "Sessions that entered the expiry warning window."},
}

// HistogramDefs is the canonical export order for histograms.
var HistogramDefs = []HistogramDef{
	{ID: sessionkit.MetricLoginLatency, Name: "sessionkit_login_latency_seconds", Help: "Login round-trip latency histogram."},
}

// HistogramBounds are the Prometheus le labels for the 8 fixed buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with OTel-safe names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// 8-bucket layout.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
