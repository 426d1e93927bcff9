package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"MCP_SERVER_NAME", "MCP_SERVER_VERSION", "MCP_LOG_LEVEL", "MCP_LOG_FILE", "MCP_TRANSPORT",
		"MCP_WS_ADDR", "MCP_RATE_LIMIT", "MCP_RATE_BURST", "MCP_REQUEST_TIMEOUT", "MCP_OTEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Config{
		Name:          "mcp-starter",
		Version:       "1.0.0",
		LogLevel:      "info",
		Transport:     TransportStdio,
		WebSocketAddr: ":8080",
		RateBurst:     10,
	}
	if *cfg != want {
		t.Errorf("Load() = %+v, want %+v", *cfg, want)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MCP_SERVER_NAME", "custom")
	t.Setenv("MCP_TRANSPORT", "websocket")
	t.Setenv("MCP_RATE_LIMIT", "20")
	t.Setenv("MCP_REQUEST_TIMEOUT", "3s")
	t.Setenv("MCP_OTEL", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "custom" || cfg.Transport != TransportWebSocket || cfg.RateLimit != 20 || !cfg.Telemetry {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("RequestTimeout = %v, want 3s", cfg.RequestTimeout)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("MCP_SERVER_VERSION", "")
	os.Unsetenv("MCP_SERVER_VERSION")
	t.Setenv("MCP_LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), "test.env")
	data := "MCP_SERVER_VERSION=9.9.9\nMCP_LOG_LEVEL=debug\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Version != "9.9.9" {
		t.Errorf("Version = %q, want value from file", cfg.Version)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want environment to win over file", cfg.LogLevel)
	}

	t.Run("missing explicit file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.env")); err == nil {
			t.Error("expected error for missing env file")
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Name: "n", Version: "v", LogLevel: "info", Transport: TransportStdio}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown transport", func(c *Config) { c.Transport = "http" }, "unknown transport"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "not a valid logrus Level"},
		{"empty name", func(c *Config) { c.Name = "" }, "must not be empty"},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, "must not be negative"},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("Validate() error = %v", err)
			case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
