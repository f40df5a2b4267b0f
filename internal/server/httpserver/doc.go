// Package httpserver provides the HTTP admin endpoint for respkv.
//
// It serves:
//
//   - GET /healthz, GET /ready: liveness and readiness
//   - GET /metrics: Prometheus exposition
//   - GET /admin/v1/status: keyspace and connection summary
//
// /metrics and /admin are guarded by an optional IP/CIDR allow list.
package httpserver
