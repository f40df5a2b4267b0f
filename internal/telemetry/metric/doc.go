// Package metric provides Prometheus metrics for respkv.
//
//   - prometheus.go: the Registry holding the server's counters, gauges and
//     histograms, and the /metrics handler
//   - collector.go: a collector reporting live key counts from the backend
//
// Every metric is registered on the Registry's own prometheus.Registry, not
// the global default, so tests can build independent instances.
package metric
