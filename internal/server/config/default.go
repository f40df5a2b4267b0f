package config

import (
	"time"

	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/pkg/resp"
)

// Default configuration values.
const (
	DefaultRedisAddr = "127.0.0.1:6379"
	DefaultHTTPAddr  = "127.0.0.1:9121"

	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultIdleTimeout  = 5 * time.Minute
	DefaultRateBurst    = 100

	DefaultMaxBuffer = 1 << 30

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:         DefaultRedisAddr,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
				IdleTimeout:  DefaultIdleTimeout,
				RateBurst:    DefaultRateBurst,
			},
			HTTP: HTTPConfig{
				Addr: DefaultHTTPAddr,
			},
		},
		Protocol: ProtocolSection{
			MaxDepth:    resp.DefaultMaxDepth,
			MaxBulkLen:  resp.DefaultMaxBulkLen,
			MaxElements: resp.DefaultMaxElements,
			MaxBuffer:   DefaultMaxBuffer,
		},
		Backend: BackendSection{
			Shards: memory.DefaultShards,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Limits returns the decoder limits described by the protocol section.
func (p ProtocolSection) Limits() resp.Limits {
	return resp.Limits{
		MaxDepth:    p.MaxDepth,
		MaxBulkLen:  p.MaxBulkLen,
		MaxElements: p.MaxElements,
	}
}
