// Package prometheus renders sessionkit metrics in Prometheus text
// exposition format. It reads point-in-time snapshots from a Manager (or
// any compatible source) and performs no background work of its own.
package prometheus
