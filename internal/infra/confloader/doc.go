// Package confloader loads configuration with koanf.
//
// Sources, highest priority first:
//
//  1. Overrides, usually from command-line flags (WithOverrides)
//  2. Environment variables (RESPKV_ prefix)
//  3. Configuration file (YAML)
//  4. Default values already present in the target struct
//
// Environment variable names are the upper-cased key path joined with
// underscores, e.g. RESPKV_SERVER_REDIS_READ_TIMEOUT for
// server.redis.read_timeout. Keys are resolved against the koanf tags of
// the target struct, so key segments may themselves contain underscores.
//
// Watcher reports changes to the configuration file through fsnotify,
// coalescing bursts of writes into one callback.
package confloader
