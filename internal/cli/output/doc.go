// Package output renders replies for respkv-cli.
//
// Formats:
//
//   - text: redis-cli style, e.g. (integer) 1, "value", 1) ...
//   - resp: the raw wire encoding
//   - json, yaml: replies converted to plain values
//
// Structured results such as the server status use Print, which renders
// a Table for text output.
package output
