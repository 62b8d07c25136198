// Package metrics defines the observability hooks docsite records into and a
// Prometheus-backed implementation of them.
//
// Callers depend on the Recorder interface; NoopRecorder is the default when
// metrics are disabled so call sites never need nil checks.
package metrics
