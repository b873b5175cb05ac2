// Package prometheus provides Prometheus collectors for accountkit metrics.
//
// [NewPrometheusExporter] accepts an [accountkit.Engine] and exposes an [http.Handler]
// that renders all accountkit counters and histograms in Prometheus text exposition
// format. Counter names are prefixed accountkit_*_total; the single histogram is
// accountkit_login_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
