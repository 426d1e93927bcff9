package mcp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-starter"
	"github.com/felixgeelhaar/mcp-starter/middleware"
	"github.com/felixgeelhaar/mcp-starter/protocol"
	"github.com/felixgeelhaar/mcp-starter/schema"
	"github.com/felixgeelhaar/mcp-starter/server"
	"github.com/felixgeelhaar/mcp-starter/testutil"
	"github.com/felixgeelhaar/mcp-starter/transport"
)

func echoServer() *mcp.Server {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test-server", Version: "1.0.0"})
	srv.Tool("echo").
		Description("Echo back the provided message").
		Input(schema.Shape{"message": schema.String()}).
		Handler(func(ctx context.Context, args server.Arguments) (*server.ToolResult, error) {
			return server.Text(args.String("message")), nil
		})
	return srv
}

func TestNewHandler(t *testing.T) {
	t.Run("refuses a server with registration errors", func(t *testing.T) {
		srv := echoServer()
		srv.Tool("echo").Handler(func(ctx context.Context, args server.Arguments) (*server.ToolResult, error) {
			return nil, nil
		})

		_, err := mcp.NewHandler(srv)
		if !errors.Is(err, server.ErrDuplicateName) {
			t.Fatalf("error = %v, want ErrDuplicateName", err)
		}
		if srv.Sealed() {
			t.Error("a refused server must not be sealed")
		}
	})

	t.Run("seals the registry", func(t *testing.T) {
		srv := echoServer()
		if _, err := mcp.NewHandler(srv); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !srv.Sealed() {
			t.Error("expected registry to be sealed")
		}
		if err := srv.Tool("late").Handler(nil).Err(); !errors.Is(err, server.ErrSealed) {
			t.Errorf("late registration error = %v, want ErrSealed", err)
		}
	})

	t.Run("applies middleware", func(t *testing.T) {
		var methods []string
		record := func(next middleware.HandlerFunc) middleware.HandlerFunc {
			return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
				methods = append(methods, req.Method)
				return next(ctx, req)
			}
		}

		client := testutil.NewTestClient(t, echoServer(), mcp.WithMiddleware(record))
		_ = client.Ping()
		_, _ = client.ListTools()

		if strings.Join(methods, ",") != "ping,tools/list" {
			t.Errorf("methods = %v", methods)
		}
	})
}

func TestRouter(t *testing.T) {
	client := testutil.NewTestClient(t, echoServer())

	t.Run("initialize advertises only registered kinds", func(t *testing.T) {
		res, err := client.Initialize()
		if err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		if res.ProtocolVersion != protocol.MCPVersion {
			t.Errorf("protocolVersion = %q", res.ProtocolVersion)
		}
		if _, ok := res.Capabilities["tools"]; !ok {
			t.Error("expected tools capability")
		}
		if _, ok := res.Capabilities["prompts"]; ok {
			t.Error("unexpected prompts capability")
		}
	})

	t.Run("tools/list carries input schema", func(t *testing.T) {
		tools, err := client.ListTools()
		if err != nil {
			t.Fatalf("ListTools: %v", err)
		}
		if len(tools) != 1 {
			t.Fatalf("expected 1 tool, got %d", len(tools))
		}
		required, _ := tools[0].InputSchema["required"].([]any)
		if tools[0].InputSchema["type"] != "object" || len(required) != 1 || required[0] != "message" {
			t.Errorf("inputSchema = %v", tools[0].InputSchema)
		}
	})

	t.Run("empty listings are arrays", func(t *testing.T) {
		resp, err := client.SendRequest("prompts/list", nil)
		if err != nil {
			t.Fatalf("SendRequest: %v", err)
		}
		data, _ := json.Marshal(resp.Result)
		if string(data) != `{"prompts":[]}` {
			t.Errorf("result = %s", data)
		}
	})

	t.Run("tools/call without name", func(t *testing.T) {
		resp, _ := client.SendRequest("tools/call", map[string]any{"arguments": map[string]any{}})
		if resp.Error == nil || resp.Error.Code != protocol.CodeInvalidParams {
			t.Errorf("resp = %+v, want invalid params", resp)
		}
	})

	t.Run("malformed params", func(t *testing.T) {
		resp, _ := client.SendRequest("tools/call", []int{1, 2})
		if resp.Error == nil || resp.Error.Code != protocol.CodeInvalidParams {
			t.Errorf("resp = %+v, want invalid params", resp)
		}
	})

	t.Run("resources/read unknown uri", func(t *testing.T) {
		_, err := client.ReadResource("mcp://nowhere")
		if testutil.ErrorCode(err) != protocol.CodeNotFound {
			t.Errorf("error = %v, want not found", err)
		}
	})

	t.Run("unknown notification is ignored", func(t *testing.T) {
		if err := client.Notify("notifications/cancelled"); err != nil {
			t.Errorf("Notify: %v", err)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		resp, _ := client.SendRequest("sampling/createMessage", nil)
		if resp.Error == nil || resp.Error.Code != protocol.CodeMethodNotFound {
			t.Errorf("resp = %+v, want method not found", resp)
		}
	})
}

func TestServeStdio(t *testing.T) {
	t.Run("answers over stdout and exits on EOF", func(t *testing.T) {
		in := strings.NewReader(
			`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}` + "\n" +
				`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
				`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"echo","arguments":{"message":"hi"}}}` + "\n",
		)
		out := &bytes.Buffer{}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := mcp.ServeStdio(ctx, echoServer(), mcp.WithStdioOptions(transport.WithStdin(in), transport.WithStdout(out)))
		if err != nil {
			t.Fatalf("ServeStdio: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 responses, got %d: %q", len(lines), out.String())
		}
		if !strings.Contains(out.String(), `"content":[{"type":"text","text":"hi"}]`) {
			t.Errorf("output = %q, want echo result", out.String())
		}
	})

	t.Run("refuses to start on registration errors", func(t *testing.T) {
		srv := echoServer()
		srv.Tool("bad name").Handler(func(ctx context.Context, args server.Arguments) (*server.ToolResult, error) {
			return nil, nil
		})

		out := &bytes.Buffer{}
		err := mcp.ServeStdio(context.Background(), srv,
			mcp.WithStdioOptions(transport.WithStdin(strings.NewReader("")), transport.WithStdout(out)))

		var cfgErr *server.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("error = %v, want *server.ConfigError", err)
		}
		if out.Len() != 0 {
			t.Errorf("stdout = %q, want nothing", out.String())
		}
	})
}
