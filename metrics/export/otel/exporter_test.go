package otel

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"

	sessionkit "github.com/campuspulse/sessionkit"
)

type fakeSource struct {
	snapshot sessionkit.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() sessionkit.MetricsSnapshot { return f.snapshot }
func (f *fakeSource) AuditDropped() uint64                        { return f.dropped }

func TestNewExporterRegisters(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("sessionkit-test")
	source := &fakeSource{
		snapshot: sessionkit.MetricsSnapshot{
			Counters:   map[sessionkit.MetricID]uint64{sessionkit.MetricLoginSuccess: 3},
			Histograms: map[sessionkit.MetricID][]uint64{},
		},
	}

	exporter, err := NewExporterFromSource(meter, source)
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	if err := exporter.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestNewExporterNilMeter(t *testing.T) {
	if _, err := NewExporterFromSource(nil, &fakeSource{}); !errors.Is(err, ErrNilMeter) {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestNewExporterNilSource(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("sessionkit-test")
	if _, err := NewExporterFromSource(meter, nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
}

func TestCloseNil(t *testing.T) {
	var exporter *Exporter
	if err := exporter.Close(); err != nil {
		t.Fatalf("nil Close must be a no-op, got %v", err)
	}
}
