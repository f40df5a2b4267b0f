package config

import "time"

// ServerConfig is the root configuration for respkv-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Protocol ProtocolSection `koanf:"protocol"`
	Backend  BackendSection  `koanf:"backend"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis RedisConfig `koanf:"redis"`
	HTTP  HTTPConfig  `koanf:"http"`
}

// RedisConfig configures the RESP listener.
type RedisConfig struct {
	Addr        string `koanf:"addr"`
	TLSAddr     string `koanf:"tls_addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`

	// RateLimit is commands per second per client IP. 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// MaxClients caps concurrent connections. 0 means unlimited.
	MaxClients int `koanf:"max_clients"`
}

// HTTPConfig configures the metrics and health endpoint. An empty Addr
// disables it.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
	// AllowList restricts /metrics and /admin to these IPs or CIDRs.
	// Empty means no restriction.
	AllowList []string `koanf:"allow_list"`
}

// ProtocolSection bounds what a client may send.
type ProtocolSection struct {
	MaxDepth    int `koanf:"max_depth"`
	MaxBulkLen  int `koanf:"max_bulk_len"`
	MaxElements int `koanf:"max_elements"`
	// MaxBuffer is the most unparsed bytes held for one connection.
	MaxBuffer int `koanf:"max_buffer"`
}

// BackendSection configures the keyspace.
type BackendSection struct {
	Shards int `koanf:"shards"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
