// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Transport names.
const (
	TransportStdio     = "stdio"
	TransportWebSocket = "websocket"
)

// Config holds every setting the server reads at startup.
type Config struct {
	// ENV: MCP_SERVER_NAME
	Name string `env:"MCP_SERVER_NAME,default=mcp-starter"`
	// ENV: MCP_SERVER_VERSION
	Version string `env:"MCP_SERVER_VERSION,default=1.0.0"`

	// LogLevel is any level logrus understands. ENV: MCP_LOG_LEVEL
	LogLevel string `env:"MCP_LOG_LEVEL,default=info"`
	// LogFile, when set, receives a copy of every log entry. ENV: MCP_LOG_FILE
	LogFile string `env:"MCP_LOG_FILE"`

	// Transport is stdio or websocket. ENV: MCP_TRANSPORT
	Transport string `env:"MCP_TRANSPORT,default=stdio"`
	// WebSocketAddr is the listen address for the websocket transport. ENV: MCP_WS_ADDR
	WebSocketAddr string `env:"MCP_WS_ADDR,default=:8080"`

	// RateLimit is requests per second per client; 0 disables. ENV: MCP_RATE_LIMIT
	RateLimit int `env:"MCP_RATE_LIMIT,default=0"`
	// ENV: MCP_RATE_BURST
	RateBurst int `env:"MCP_RATE_BURST,default=10"`

	// RequestTimeout bounds each request's context; 0 disables. ENV: MCP_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"MCP_REQUEST_TIMEOUT,default=0s"`

	// Telemetry enables OpenTelemetry tracing and metrics. ENV: MCP_OTEL
	Telemetry bool `env:"MCP_OTEL,default=false"`
}

// Load reads a .env file from the working directory if there is one, then
// decodes the environment into a Config and validates it. Variables already
// set in the environment win over the .env file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("config: load env file: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportWebSocket:
	default:
		return fmt.Errorf("config: unknown transport %q (want %s or %s)", c.Transport, TransportStdio, TransportWebSocket)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Name == "" || c.Version == "" {
		return errors.New("config: server name and version must not be empty")
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return errors.New("config: rate limit and burst must not be negative")
	}
	if c.RequestTimeout < 0 {
		return errors.New("config: request timeout must not be negative")
	}
	return nil
}
