package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcp "github.com/felixgeelhaar/mcp-starter"
	"github.com/felixgeelhaar/mcp-starter/capabilities"
	"github.com/felixgeelhaar/mcp-starter/config"
	"github.com/felixgeelhaar/mcp-starter/middleware"
	"github.com/felixgeelhaar/mcp-starter/server"
	"github.com/felixgeelhaar/mcp-starter/transport"
)

type flags struct {
	envFile   string
	transport string
	addr      string
	logLevel  string
}

// newRootCmd builds the command. Flags override values from the environment.
func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "mcp-starter",
		Short:         "Minimal MCP server with echo, health, server-info and summarize",
		Long:          "mcp-starter serves a fixed set of MCP tools, resources and prompts over stdio (default) or WebSocket. Settings come from MCP_* environment variables or a .env file.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, stdin, stdout, stderr)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.envFile, "env-file", "", "Load settings from this file instead of ./.env")
	fl.StringVar(&f.transport, "transport", config.TransportStdio, "Transport to serve: stdio or websocket")
	fl.StringVar(&f.addr, "addr", ":8080", "Listen address for the websocket transport")
	fl.StringVar(&f.logLevel, "log-level", "info", "Log level: trace, debug, info, warn or error")
	return cmd
}

func loadConfig(cmd *cobra.Command, f flags) (*config.Config, error) {
	var files []string
	if f.envFile != "" {
		files = append(files, f.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("transport") {
		cfg.Transport = f.transport
	}
	if fl.Changed("addr") {
		cfg.WebSocketAddr = f.addr
	}
	if fl.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run wires the server from cfg and serves until ctx is done or input ends.
func run(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	l, closeLog, err := setupLogging(stderr, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := newLogrusLogger(l)

	if cfg.Telemetry {
		shutdown := setupTelemetry(cfg.Name, cfg.Version)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				logger.Warn("telemetry shutdown failed", middleware.F("error", err.Error()))
			}
		}()
	}

	info := server.Info{Name: cfg.Name, Version: cfg.Version}
	srv := server.New(info, server.WithLogger(logger))
	if err := capabilities.Register(srv, info, capabilities.NewSystemClock()); err != nil {
		return fmt.Errorf("register capabilities: %w", err)
	}

	stack := middleware.NewStack(middleware.StackConfig{
		Logger:      logger,
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
		Timeout:     cfg.RequestTimeout,
		Telemetry:   cfg.Telemetry,
		ServiceName: cfg.Name,
	})
	opts := []mcp.ServeOption{
		mcp.WithLogger(logger),
		mcp.WithMiddleware(stack...),
	}

	switch cfg.Transport {
	case config.TransportWebSocket:
		err = mcp.ServeWebSocket(ctx, srv, cfg.WebSocketAddr, opts...)
	default:
		opts = append(opts, mcp.WithStdioOptions(
			transport.WithStdin(stdin),
			transport.WithStdout(stdout),
		))
		err = mcp.ServeStdio(ctx, srv, opts...)
	}
	if errors.Is(err, context.Canceled) {
		logger.Info("shutdown complete")
		return nil
	}
	return err
}

// Execute runs the root command against the process streams.
func Execute() {
	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
