// Package otel bridges sessionkit metrics into OpenTelemetry observable
// instruments. Snapshot values are read lazily inside the meter callback,
// so the exporter adds no overhead to the metric write path.
package otel
