// Package logger provides structured logging for respkv.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, handler selection, dynamic level
//   - context.go: context propagation of the logger and connection id
//   - redact.go: redaction of credentials and truncation of client payloads
//
// Client data (keys, values, raw protocol bytes) can be arbitrarily large,
// so attributes named payload, value or args are truncated before they
// reach the handler.
package logger
