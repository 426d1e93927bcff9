// Package testutil drives MCP servers from tests.
//
// TestClient calls a server in memory through the same handler the
// transports use, so middleware and routing are exercised:
//
//	func TestMyServer(t *testing.T) {
//	    srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})
//	    srv.Tool("echo").Input(schema.Shape{"message": schema.String()}).Handler(echo)
//
//	    tc := testutil.NewTestClient(t, srv)
//	    res, err := tc.CallTool("echo", map[string]any{"message": "hi"})
//	    ...
//	}
//
// StdioSession runs the real stdio transport over in-memory pipes.
package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/felixgeelhaar/mcp-starter"
	"github.com/felixgeelhaar/mcp-starter/protocol"
	"github.com/felixgeelhaar/mcp-starter/server"
	"github.com/felixgeelhaar/mcp-starter/transport"
)

// TestClient sends requests to a handler in memory.
type TestClient struct {
	t       testing.TB
	handler transport.Handler
	ctx     context.Context
	nextID  atomic.Int64
}

// NewTestClient creates a client for srv. It fails the test if srv holds
// registration errors.
func NewTestClient(t testing.TB, srv *server.Server, opts ...mcp.ServeOption) *TestClient {
	t.Helper()
	h, err := mcp.NewHandler(srv, opts...)
	if err != nil {
		t.Fatalf("testutil: server not servable: %v", err)
	}
	return NewTestClientWithHandler(t, h)
}

// NewTestClientWithHandler creates a client for an arbitrary handler, which
// is useful for testing middleware in isolation.
func NewTestClientWithHandler(t testing.TB, handler transport.Handler) *TestClient {
	return &TestClient{t: t, handler: handler, ctx: context.Background()}
}

// WithContext returns a copy of the client that sends requests with ctx.
func (tc *TestClient) WithContext(ctx context.Context) *TestClient {
	c := &TestClient{t: tc.t, handler: tc.handler, ctx: ctx}
	c.nextID.Store(tc.nextID.Load())
	return c
}

// SendRequest sends a request and returns the response. Handler errors are
// folded into the response the way the transports do it.
func (tc *TestClient) SendRequest(method string, params any) (*protocol.Response, error) {
	req := &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      json.RawMessage(fmt.Sprintf("%d", tc.nextID.Add(1))),
		Method:  method,
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode params: %w", err)
		}
		req.Params = data
	}

	resp, err := tc.handler.HandleRequest(tc.ctx, req)
	if err != nil {
		var rpcErr *protocol.Error
		if !errors.As(err, &rpcErr) {
			rpcErr = protocol.NewInternalError(err.Error())
		}
		return protocol.NewErrorResponse(req.ID, rpcErr), nil
	}
	if resp == nil {
		return nil, fmt.Errorf("no response to %s", method)
	}
	return resp, nil
}

// Notify sends a notification.
func (tc *TestClient) Notify(method string) error {
	_, err := tc.handler.HandleRequest(tc.ctx, &protocol.Request{JSONRPC: protocol.JSONRPCVersion, Method: method})
	return err
}

// call sends a request and decodes its result into v. A JSON-RPC error is
// returned as *protocol.Error.
func (tc *TestClient) call(method string, params, v any) error {
	resp, err := tc.SendRequest(method, params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return json.Unmarshal(data, v)
}

// InitializeResult is the decoded initialize response.
type InitializeResult struct {
	ProtocolVersion string `json:"protocolVersion"`
	ServerInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"serverInfo"`
	Capabilities map[string]any `json:"capabilities"`
}

// Initialize performs the initialize handshake.
func (tc *TestClient) Initialize() (*InitializeResult, error) {
	var res InitializeResult
	if err := tc.call(protocol.MethodInitialize, map[string]any{
		"protocolVersion": protocol.MCPVersion,
		"clientInfo":      map[string]string{"name": "testutil", "version": "0.0.0"},
	}, &res); err != nil {
		return nil, err
	}
	if err := tc.Notify(protocol.MethodInitialized); err != nil {
		return nil, err
	}
	return &res, nil
}

// Ping sends a ping.
func (tc *TestClient) Ping() error {
	var res map[string]any
	return tc.call(protocol.MethodPing, nil, &res)
}

// Tool is one tools/list entry.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ListTools lists the advertised tools.
func (tc *TestClient) ListTools() ([]Tool, error) {
	var res struct {
		Tools []Tool `json:"tools"`
	}
	if err := tc.call(protocol.MethodToolsList, nil, &res); err != nil {
		return nil, err
	}
	return res.Tools, nil
}

// CallTool invokes a tool.
func (tc *TestClient) CallTool(name string, args any) (*server.ToolResult, error) {
	var res server.ToolResult
	if err := tc.call(protocol.MethodToolsCall, map[string]any{"name": name, "arguments": args}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CallToolText invokes a tool and returns its first text item.
func (tc *TestClient) CallToolText(name string, args any) (string, error) {
	res, err := tc.CallTool(name, args)
	if err != nil {
		return "", err
	}
	if len(res.Content) == 0 {
		return "", errors.New("tool returned no content")
	}
	return res.Content[0].Text, nil
}

// Resource is one resources/list entry.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// ListResources lists the advertised resources.
func (tc *TestClient) ListResources() ([]Resource, error) {
	var res struct {
		Resources []Resource `json:"resources"`
	}
	if err := tc.call(protocol.MethodResourcesList, nil, &res); err != nil {
		return nil, err
	}
	return res.Resources, nil
}

// ReadResource reads the resource at uri.
func (tc *TestClient) ReadResource(uri string) (*server.ResourceResult, error) {
	var res server.ResourceResult
	if err := tc.call(protocol.MethodResourcesRead, map[string]string{"uri": uri}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Prompt is one prompts/list entry.
type Prompt struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Arguments   []server.PromptArgument `json:"arguments"`
}

// ListPrompts lists the advertised prompts.
func (tc *TestClient) ListPrompts() ([]Prompt, error) {
	var res struct {
		Prompts []Prompt `json:"prompts"`
	}
	if err := tc.call(protocol.MethodPromptsList, nil, &res); err != nil {
		return nil, err
	}
	return res.Prompts, nil
}

// GetPrompt renders a prompt.
func (tc *TestClient) GetPrompt(name string, args any) (*server.PromptResult, error) {
	var res server.PromptResult
	if err := tc.call(protocol.MethodPromptsGet, map[string]any{"name": name, "arguments": args}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ErrorCode returns the JSON-RPC code of err, or 0 if err is not a
// *protocol.Error.
func ErrorCode(err error) int {
	var rpcErr *protocol.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Code
	}
	return 0
}
