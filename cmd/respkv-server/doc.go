// Package main provides the entry point for respkv-server.
//
// The server provides:
//
//   - A RESP listener (plaintext and optional TLS) over an in-memory keyspace
//   - An HTTP endpoint for health checks, Prometheus metrics and status
//
// Usage:
//
//	respkv-server [flags]
//	respkv-server --config /path/to/config.yaml
//	respkv-server --redis-addr :6380 --log-level debug
//
// Configuration is read from defaults, then the YAML file, then RESPKV_*
// environment variables, then the override flags. Changes to the file's log level apply without a
// restart.
package main
