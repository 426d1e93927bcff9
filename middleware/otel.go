package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/mcp-starter/protocol"
)

const instrumentationName = "github.com/felixgeelhaar/mcp-starter"

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*otelConfig)

type otelConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	serviceName    string
	skipMethods    map[string]bool
}

// WithTracerProvider sets the tracer provider. The global one is the default.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *otelConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider. The global one is the default.
func WithMeterProvider(mp metric.MeterProvider) OTelOption {
	return func(c *otelConfig) {
		c.meterProvider = mp
	}
}

// WithOTelServiceName sets the service.name attribute.
func WithOTelServiceName(name string) OTelOption {
	return func(c *otelConfig) {
		if name != "" {
			c.serviceName = name
		}
	}
}

// WithOTelSkipMethods disables instrumentation for the given methods.
func WithOTelSkipMethods(methods ...string) OTelOption {
	return func(c *otelConfig) {
		for _, m := range methods {
			c.skipMethods[m] = true
		}
	}
}

// OTel returns middleware that opens a server span per request and records
// request count, latency and error count. Requests that target a capability
// (tools/call, resources/read, prompts/get) carry its name or URI in the
// mcp.capability attribute. Pings are not instrumented by default.
func OTel(opts ...OTelOption) Middleware {
	cfg := &otelConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		serviceName:    "mcp-starter",
		skipMethods:    map[string]bool{protocol.MethodPing: true},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tracer := cfg.tracerProvider.Tracer(instrumentationName)
	meter := cfg.meterProvider.Meter(instrumentationName)

	requests, _ := meter.Int64Counter(
		"mcp.server.requests",
		metric.WithDescription("Number of MCP requests handled"),
		metric.WithUnit("{request}"),
	)
	latency, _ := meter.Float64Histogram(
		"mcp.server.request.duration",
		metric.WithDescription("Duration of MCP requests"),
		metric.WithUnit("ms"),
	)
	failures, _ := meter.Int64Counter(
		"mcp.server.errors",
		metric.WithDescription("Number of MCP requests that failed"),
		metric.WithUnit("{error}"),
	)

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if cfg.skipMethods[req.Method] {
				return next(ctx, req)
			}

			attrs := []attribute.KeyValue{
				attribute.String("mcp.method", req.Method),
				attribute.String("service.name", cfg.serviceName),
			}
			if target := capabilityTarget(req); target != "" {
				attrs = append(attrs, attribute.String("mcp.capability", target))
			}
			if transport := protocol.GetRequestMeta(ctx, protocol.MetaTransport); transport != "" {
				attrs = append(attrs, attribute.String("mcp.transport", transport))
			}

			ctx, span := tracer.Start(ctx, "mcp."+req.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			if id := RequestIDFromContext(ctx); id != "" {
				span.SetAttributes(attribute.String("mcp.request_id", id))
			}

			start := time.Now()
			requests.Add(ctx, 1, metric.WithAttributes(attrs...))

			resp, err := next(ctx, req)

			latency.Record(ctx, float64(time.Since(start).Microseconds())/1000, metric.WithAttributes(attrs...))

			var rpcErr *protocol.Error
			switch {
			case err != nil && errors.As(err, &rpcErr):
				span.RecordError(err)
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				failures.Add(ctx, 1, metric.WithAttributes(attrs...))
				return resp, err
			case resp != nil && resp.Error != nil:
				rpcErr = resp.Error
			default:
				span.SetStatus(codes.Ok, "")
				return resp, err
			}

			span.SetStatus(codes.Error, rpcErr.Message)
			errAttrs := []attribute.KeyValue{
				attribute.Int("mcp.error_code", rpcErr.Code),
				attribute.String("mcp.error", protocol.CodeName(rpcErr.Code)),
			}
			span.SetAttributes(errAttrs...)
			failures.Add(ctx, 1, metric.WithAttributes(append(attrs, errAttrs...)...))
			return resp, err
		}
	}
}

// capabilityTarget returns the tool or prompt name, or the resource URI, a
// request addresses. Malformed params yield "".
func capabilityTarget(req *protocol.Request) string {
	switch req.Method {
	case protocol.MethodToolsCall, protocol.MethodPromptsGet, protocol.MethodResourcesRead:
	default:
		return ""
	}
	var p struct {
		Name string `json:"name"`
		URI  string `json:"uri"`
	}
	if len(req.Params) == 0 || json.Unmarshal(req.Params, &p) != nil {
		return ""
	}
	if p.Name != "" {
		return p.Name
	}
	return p.URI
}
