package config

import (
	"path/filepath"
	"time"
)

// CLIConfig is the configuration for respkv-cli.
type CLIConfig struct {
	// Server is the RESP address.
	Server string `koanf:"server"`
	// HTTP is the admin endpoint address used by the status command.
	HTTP string `koanf:"http"`
	// Output is text, resp, json or yaml.
	Output  string        `koanf:"output"`
	Timeout time.Duration `koanf:"timeout"`

	TLS         bool   `koanf:"tls"`
	TLSInsecure bool   `koanf:"tls_insecure"`
	TLSCAFile   string `koanf:"tls_ca_file"`

	// HistoryFile stores REPL history. Empty disables it.
	HistoryFile string `koanf:"history_file"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:      "127.0.0.1:6379",
		HTTP:        "127.0.0.1:9121",
		Output:      "text",
		Timeout:     5 * time.Second,
		HistoryFile: filepath.Join(configDir(), "history"),
	}
}
