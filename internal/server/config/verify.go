package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strings"

	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyProtocol(&cfg.Protocol); err != nil {
		return err
	}
	if err := verifyBackend(&cfg.Backend); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	r := &cfg.Redis
	if r.Addr == "" && r.TLSAddr == "" {
		return errors.New("server.redis: addr or tls_addr is required")
	}
	if err := verifyAddr("server.redis.addr", r.Addr); err != nil {
		return err
	}
	if err := verifyAddr("server.redis.tls_addr", r.TLSAddr); err != nil {
		return err
	}
	if err := verifyAddr("server.http.addr", cfg.HTTP.Addr); err != nil {
		return err
	}
	for _, entry := range cfg.HTTP.AllowList {
		if err := verifyAllowEntry(entry); err != nil {
			return fmt.Errorf("server.http.allow_list: %w", err)
		}
	}

	if r.TLSAddr != "" {
		if r.TLSCertFile == "" || r.TLSKeyFile == "" {
			return errors.New("server.redis.tls_addr requires tls_cert_file and tls_key_file")
		}
		for _, f := range []string{r.TLSCertFile, r.TLSKeyFile} {
			if _, err := os.Stat(f); err != nil {
				return fmt.Errorf("server.redis: tls file: %w", err)
			}
		}
	}

	if r.ReadTimeout < 0 || r.WriteTimeout < 0 || r.IdleTimeout < 0 {
		return errors.New("server.redis: timeouts must not be negative")
	}
	if r.RateLimit < 0 {
		return errors.New("server.redis.rate_limit must not be negative")
	}
	if r.RateLimit > 0 && r.RateBurst < 1 {
		return errors.New("server.redis.rate_burst must be at least 1 when rate_limit is set")
	}
	if r.MaxClients < 0 {
		return errors.New("server.redis.max_clients must not be negative")
	}
	return nil
}

func verifyAddr(name, addr string) error {
	if addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// verifyAllowEntry accepts what the admin ACL middleware accepts: a CIDR
// prefix or a single address.
func verifyAllowEntry(entry string) error {
	if strings.Contains(entry, "/") {
		_, err := netip.ParsePrefix(entry)
		return err
	}
	if _, err := netip.ParseAddr(entry); err != nil {
		return fmt.Errorf("invalid IP %q", entry)
	}
	return nil
}

func verifyProtocol(cfg *ProtocolSection) error {
	if cfg.MaxDepth < 1 {
		return errors.New("protocol.max_depth must be at least 1")
	}
	if cfg.MaxBulkLen < 1 {
		return errors.New("protocol.max_bulk_len must be at least 1")
	}
	if cfg.MaxElements < 1 {
		return errors.New("protocol.max_elements must be at least 1")
	}
	if cfg.MaxBuffer < cfg.MaxBulkLen {
		return errors.New("protocol.max_buffer must be at least protocol.max_bulk_len")
	}
	return nil
}

func verifyBackend(cfg *BackendSection) error {
	if cfg.Shards < 1 || cfg.Shards&(cfg.Shards-1) != 0 {
		return fmt.Errorf("backend.shards must be a power of two, got %d", cfg.Shards)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "json", "text", "console":
		return nil
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
}
