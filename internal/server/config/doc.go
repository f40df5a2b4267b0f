// Package config provides server configuration for respkv.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: validation of addresses, limits and TLS files
//
// Configuration is loaded via internal/infra/confloader from a YAML file
// and RESPKV_* environment variables.
package config
