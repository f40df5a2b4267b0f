// Package handler provides the HTTP handlers for the respkv admin endpoint.
//
// This package contains handlers for:
//
//   - health.go: liveness and readiness checks
//   - status.go: keyspace and connection summary
//
// Responses use the JSON envelope in types.go. /metrics is served by the
// Prometheus handler and is not part of this package.
package handler
