// Package internaldefs holds the shared metric name, help, and bucket
// definitions used by the Prometheus and OTel exporters. It exists so the
// two exporters cannot drift: one table, two renderings.
package internaldefs
