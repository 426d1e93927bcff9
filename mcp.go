// Package mcp runs a capability registry as a Model Context Protocol server.
//
// A server is assembled in three steps: populate a registry, check it, and
// hand it to a transport.
//
//	srv := mcp.NewServer(mcp.ServerInfo{Name: "my-server", Version: "1.0.0"})
//
//	srv.Tool("echo").
//	    Description("Echo back the provided message").
//	    Input(schema.Shape{"message": schema.String()}).
//	    Handler(func(ctx context.Context, args server.Arguments) (*server.ToolResult, error) {
//	        return server.Text(args.String("message")), nil
//	    })
//
//	if err := mcp.ServeStdio(ctx, srv, mcp.WithLogger(logger)); err != nil {
//	    log.Fatal(err)
//	}
//
// Serving refuses to start while the registry holds registration errors,
// and seals the registry before the first request is read.
package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-starter/middleware"
	"github.com/felixgeelhaar/mcp-starter/server"
	"github.com/felixgeelhaar/mcp-starter/transport"
)

// ServerInfo contains server metadata exposed to clients.
type ServerInfo = server.Info

// Server is the capability registry being served.
type Server = server.Server

// Option configures a Server.
type Option = server.Option

// Logger is the structured logger used by every layer.
type Logger = middleware.Logger

// Middleware wraps request handling.
type Middleware = middleware.Middleware

// NewServer creates an empty registry.
func NewServer(info ServerInfo, opts ...Option) *Server {
	return server.New(info, opts...)
}

// ServeOption configures how the server is run.
type ServeOption func(*serveOptions)

type serveOptions struct {
	middleware []Middleware
	logger     Logger
	stdio      []transport.StdioOption
	websocket  []transport.WebSocketOption
}

// WithMiddleware adds middleware to the request handling chain. The first
// middleware given runs outermost.
func WithMiddleware(m ...Middleware) ServeOption {
	return func(o *serveOptions) {
		o.middleware = append(o.middleware, m...)
	}
}

// WithLogger sets the logger for the router and transport.
func WithLogger(l Logger) ServeOption {
	return func(o *serveOptions) {
		o.logger = l
	}
}

// WithStdioOptions passes options through to the stdio transport.
func WithStdioOptions(opts ...transport.StdioOption) ServeOption {
	return func(o *serveOptions) {
		o.stdio = append(o.stdio, opts...)
	}
}

// WithWebSocketOptions passes options through to the WebSocket transport.
func WithWebSocketOptions(opts ...transport.WebSocketOption) ServeOption {
	return func(o *serveOptions) {
		o.websocket = append(o.websocket, opts...)
	}
}

func buildOptions(opts []ServeOption) *serveOptions {
	o := &serveOptions{logger: middleware.NopLogger{}}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = middleware.NopLogger{}
	}
	return o
}

// NewHandler checks and seals srv and returns the transport handler that
// routes MCP methods to it. It fails if any registration failed.
func NewHandler(srv *Server, opts ...ServeOption) (transport.Handler, error) {
	return newHandler(srv, buildOptions(opts))
}

func newHandler(srv *Server, o *serveOptions) (transport.Handler, error) {
	if err := srv.Err(); err != nil {
		return nil, err
	}
	srv.Seal()

	r := &router{srv: srv, logger: o.logger}
	return transport.HandlerFunc(middleware.Chain(o.middleware...)(r.handle)), nil
}

// ServeStdio serves srv over stdin and stdout until stdin is closed or ctx
// is canceled. Closing stdin is a clean shutdown and yields nil.
func ServeStdio(ctx context.Context, srv *Server, opts ...ServeOption) error {
	o := buildOptions(opts)
	h, err := newHandler(srv, o)
	if err != nil {
		return err
	}

	stdioOpts := append([]transport.StdioOption{transport.WithStdioLogger(o.logger)}, o.stdio...)
	t := transport.NewStdio(stdioOpts...)

	o.logger.Info("serving",
		middleware.F("transport", t.Addr()),
		middleware.F("server", srv.Info().Name),
		middleware.F("version", srv.Info().Version),
	)
	return t.Serve(ctx, h)
}

// ServeWebSocket serves srv to WebSocket peers on addr until ctx is canceled.
func ServeWebSocket(ctx context.Context, srv *Server, addr string, opts ...ServeOption) error {
	o := buildOptions(opts)
	h, err := newHandler(srv, o)
	if err != nil {
		return err
	}

	wsOpts := append([]transport.WebSocketOption{transport.WithWebSocketLogger(o.logger)}, o.websocket...)
	t := transport.NewWebSocket(addr, wsOpts...)

	o.logger.Info("serving",
		middleware.F("transport", "websocket"),
		middleware.F("addr", t.Addr()),
		middleware.F("server", srv.Info().Name),
		middleware.F("version", srv.Info().Version),
	)
	return t.Serve(ctx, h)
}
