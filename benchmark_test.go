package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/mcp-starter"
	"github.com/felixgeelhaar/mcp-starter/middleware"
	"github.com/felixgeelhaar/mcp-starter/protocol"
	"github.com/felixgeelhaar/mcp-starter/schema"
	"github.com/felixgeelhaar/mcp-starter/server"
)

func BenchmarkDispatch(b *testing.B) {
	srv := echoServer()
	srv.Seal()
	raw := json.RawMessage(`{"message":"hello"}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := srv.Dispatch(context.Background(), server.KindTool, "echo", raw); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDispatch_InvalidArgs(b *testing.B) {
	srv := echoServer()
	srv.Seal()
	raw := json.RawMessage(`{"message":42}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := srv.Dispatch(context.Background(), server.KindTool, "echo", raw); err == nil {
			b.Fatal("expected error")
		}
	}
}

func BenchmarkValidate(b *testing.B) {
	shape := schema.Shape{
		"query": schema.String(),
		"limit": schema.Integer().Min(1).Max(100).Optional(),
		"tags":  schema.Array(schema.String()).Optional(),
	}
	raw := json.RawMessage(`{"query":"mcp","limit":10,"tags":["a","b"]}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := schema.Validate(shape, raw); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHandler_ToolsCall(b *testing.B) {
	h, err := mcp.NewHandler(echoServer(), mcp.WithMiddleware(middleware.DefaultStack(middleware.NopLogger{})...))
	if err != nil {
		b.Fatal(err)
	}
	req := &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      json.RawMessage(`1`),
		Method:  protocol.MethodToolsCall,
		Params:  json.RawMessage(`{"name":"echo","arguments":{"message":"hello"}}`),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.HandleRequest(context.Background(), req); err != nil {
			b.Fatal(err)
		}
	}
}
