package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server != "127.0.0.1:6379" {
		t.Errorf("Server = %q", cfg.Server)
	}
	if cfg.Output != "text" {
		t.Errorf("Output = %q, want text", cfg.Output)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if !strings.HasSuffix(cfg.HistoryFile, filepath.Join(".respkv", "history")) {
		t.Errorf("HistoryFile = %q", cfg.HistoryFile)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	expected := filepath.Join(".respkv", "cli.yaml")
	if !strings.HasSuffix(path, expected) {
		t.Errorf("Path = %q, should end with %q", path, expected)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load should not error for nonexistent file: %v", err)
	}
	if cfg.Server != Default().Server {
		t.Error("Should return default config for nonexistent file")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	content := "server: 10.0.0.5:6380\noutput: json\ntimeout: 2s\nhistory_file: \"\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("RESPKV_CLI_OUTPUT", "yaml")
	t.Setenv("RESPKV_CLI_TLS_INSECURE", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server != "10.0.0.5:6380" {
		t.Errorf("Server = %q", cfg.Server)
	}
	if cfg.Output != "yaml" {
		t.Errorf("Output = %q, env should win over file", cfg.Output)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if !cfg.TLSInsecure {
		t.Error("TLSInsecure should be set from env")
	}
	if cfg.HistoryFile != "" {
		t.Errorf("HistoryFile = %q, want empty", cfg.HistoryFile)
	}
	if cfg.HTTP != Default().HTTP {
		t.Errorf("HTTP = %q, want default", cfg.HTTP)
	}
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
