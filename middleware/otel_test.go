package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/felixgeelhaar/mcp-starter/protocol"
)

func newTestTracer(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func spanAttr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestOTel(t *testing.T) {
	ok := func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		return protocol.NewResponse(req.ID, "ok"), nil
	}

	t.Run("creates span per request", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		handler := OTel(WithTracerProvider(tp))(ok)

		if _, err := handler(context.Background(), &protocol.Request{ID: json.RawMessage("1"), Method: "tools/list"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		spans := exporter.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if spans[0].Name != "mcp.tools/list" {
			t.Errorf("span name = %q, want %q", spans[0].Name, "mcp.tools/list")
		}
	})

	t.Run("tags capability target", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		handler := OTel(WithTracerProvider(tp))(ok)

		reqs := []*protocol.Request{
			{ID: json.RawMessage("1"), Method: "tools/call", Params: json.RawMessage(`{"name":"echo","arguments":{}}`)},
			{ID: json.RawMessage("2"), Method: "resources/read", Params: json.RawMessage(`{"uri":"mcp://server/info"}`)},
		}
		for _, req := range reqs {
			_, _ = handler(context.Background(), req)
		}

		spans := exporter.GetSpans()
		want := []string{"echo", "mcp://server/info"}
		for i, span := range spans {
			v, found := spanAttr(span.Attributes, "mcp.capability")
			if !found || v.AsString() != want[i] {
				t.Errorf("span %d mcp.capability = %q, want %q", i, v.AsString(), want[i])
			}
		}
	})

	t.Run("records protocol error code", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		handler := OTel(WithTracerProvider(tp))(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			return protocol.NewErrorResponse(req.ID, protocol.NewNotFound("tool not found: x")), nil
		})

		_, _ = handler(context.Background(), &protocol.Request{ID: json.RawMessage("1"), Method: "tools/call"})

		span := exporter.GetSpans()[0]
		v, found := spanAttr(span.Attributes, "mcp.error_code")
		if !found || v.AsInt64() != int64(protocol.CodeNotFound) {
			t.Errorf("mcp.error_code = %v, want %d", v.AsInt64(), protocol.CodeNotFound)
		}
		if v, _ := spanAttr(span.Attributes, "mcp.error"); v.AsString() != "not_found" {
			t.Errorf("mcp.error = %q, want not_found", v.AsString())
		}
	})

	t.Run("records plain error", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		handler := OTel(WithTracerProvider(tp))(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			return nil, errors.New("handler failed")
		})

		if _, err := handler(context.Background(), &protocol.Request{ID: json.RawMessage("1"), Method: "tools/call"}); err == nil {
			t.Fatal("expected error")
		}
		if len(exporter.GetSpans()[0].Events) == 0 {
			t.Error("expected error event on span")
		}
	})

	t.Run("skips ping by default", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		handler := OTel(WithTracerProvider(tp))(ok)

		_, _ = handler(context.Background(), &protocol.Request{ID: json.RawMessage("1"), Method: "ping"})
		if n := len(exporter.GetSpans()); n != 0 {
			t.Errorf("expected 0 spans, got %d", n)
		}
	})

	t.Run("uses custom service name", func(t *testing.T) {
		exporter, tp := newTestTracer(t)
		handler := OTel(WithTracerProvider(tp), WithOTelServiceName("my-server"))(ok)

		_, _ = handler(context.Background(), &protocol.Request{ID: json.RawMessage("1"), Method: "tools/list"})

		v, _ := spanAttr(exporter.GetSpans()[0].Attributes, "service.name")
		if v.AsString() != "my-server" {
			t.Errorf("service.name = %q, want %q", v.AsString(), "my-server")
		}
	})

	t.Run("counts requests", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer mp.Shutdown(context.Background())

		handler := OTel(WithMeterProvider(mp))(ok)
		for i := 0; i < 3; i++ {
			_, _ = handler(context.Background(), &protocol.Request{ID: json.RawMessage("1"), Method: "tools/list"})
		}

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(context.Background(), &rm); err != nil {
			t.Fatalf("collect: %v", err)
		}

		var total int64
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name != "mcp.server.requests" {
					continue
				}
				sum, ok := m.Data.(metricdata.Sum[int64])
				if !ok {
					t.Fatalf("data = %T, want Sum[int64]", m.Data)
				}
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
		if total != 3 {
			t.Errorf("mcp.server.requests = %d, want 3", total)
		}
	})
}
