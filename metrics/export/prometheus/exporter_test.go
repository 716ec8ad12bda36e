package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	sessionkit "github.com/campuspulse/sessionkit"
)

type fakeSource struct {
	snapshot sessionkit.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() sessionkit.MetricsSnapshot { return f.snapshot }
func (f *fakeSource) AuditDropped() uint64                        { return f.dropped }

func populatedSource() *fakeSource {
	return &fakeSource{
		snapshot: sessionkit.MetricsSnapshot{
			Counters: map[sessionkit.MetricID]uint64{
				sessionkit.MetricLoginSuccess:   4,
				sessionkit.MetricLoginFailure:   1,
				sessionkit.MetricSessionExpired: 2,
			},
			Histograms: map[sessionkit.MetricID][]uint64{
				sessionkit.MetricLoginLatency: {3, 1, 0, 0, 1, 0, 0, 0},
			},
		},
		dropped: 7,
	}
}

func TestRenderCounters(t *testing.T) {
	exporter := NewExporterFromSource(populatedSource())
	out := exporter.Render()

	for _, want := range []string{
		"# TYPE sessionkit_login_success_total counter",
		"sessionkit_login_success_total 4",
		"sessionkit_login_failure_total 1",
		"sessionkit_session_expired_total 2",
		"sessionkit_logout_total 0",
		"sessionkit_audit_dropped_total 7",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHistogramCumulative(t *testing.T) {
	exporter := NewExporterFromSource(populatedSource())
	out := exporter.Render()

	for _, want := range []string{
		"# TYPE sessionkit_login_latency_seconds histogram",
		`sessionkit_login_latency_seconds_bucket{le="0.005"} 3`,
		`sessionkit_login_latency_seconds_bucket{le="0.01"} 4`,
		`sessionkit_login_latency_seconds_bucket{le="0.05"} 4`,
		`sessionkit_login_latency_seconds_bucket{le="0.1"} 5`,
		`sessionkit_login_latency_seconds_bucket{le="+Inf"} 5`,
		"sessionkit_login_latency_seconds_count 5",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptySource(t *testing.T) {
	exporter := NewExporterFromSource(&fakeSource{
		snapshot: sessionkit.MetricsSnapshot{
			Counters:   map[sessionkit.MetricID]uint64{},
			Histograms: map[sessionkit.MetricID][]uint64{},
		},
	})
	if out := exporter.Render(); out != "" {
		t.Fatalf("expected empty output for empty source, got:\n%s", out)
	}

	var nilExporter *Exporter
	if out := nilExporter.Render(); out != "" {
		t.Fatalf("nil exporter must render nothing, got:\n%s", out)
	}
}

func TestHandler(t *testing.T) {
	exporter := NewExporterFromSource(populatedSource())

	rec := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("content type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "sessionkit_login_success_total 4") {
		t.Fatalf("handler body missing counter:\n%s", rec.Body.String())
	}
}

func TestExporterFromNilManager(t *testing.T) {
	exporter := NewExporter(nil)
	if out := exporter.Render(); out != "" {
		t.Fatalf("nil manager must render nothing, got:\n%s", out)
	}
}
