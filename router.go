package mcp

import (
	"context"
	"encoding/json"

	"github.com/felixgeelhaar/mcp-starter/middleware"
	"github.com/felixgeelhaar/mcp-starter/protocol"
	"github.com/felixgeelhaar/mcp-starter/schema"
	"github.com/felixgeelhaar/mcp-starter/server"
)

// router maps MCP methods onto the registry. Listings and lifecycle methods
// are answered here; capability invocations go through the server's
// dispatch adapter.
type router struct {
	srv    *Server
	logger Logger
}

func (r *router) handle(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var (
		result any
		err    error
	)

	switch req.Method {
	case protocol.MethodInitialize:
		result = r.initialize()
	case protocol.MethodInitialized:
		return nil, nil
	case protocol.MethodPing:
		result = struct{}{}
	case protocol.MethodToolsList:
		result = r.toolsList()
	case protocol.MethodToolsCall:
		result, err = r.toolsCall(ctx, req)
	case protocol.MethodResourcesList:
		result = r.resourcesList()
	case protocol.MethodResourcesRead:
		result, err = r.resourcesRead(ctx, req)
	case protocol.MethodPromptsList:
		result = r.promptsList()
	case protocol.MethodPromptsGet:
		result, err = r.promptsGet(ctx, req)
	default:
		if req.IsNotification() {
			r.logger.Debug("ignoring notification", middleware.F("method", req.Method))
			return nil, nil
		}
		return nil, protocol.NewMethodNotFound(req.Method)
	}

	if err != nil {
		return nil, err
	}
	return protocol.NewResponse(req.ID, result), nil
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	ServerInfo      serverInfo     `json:"serverInfo"`
	Capabilities    map[string]any `json:"capabilities"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (r *router) initialize() initializeResult {
	m := r.srv.Manifest()

	caps := make(map[string]any)
	if m.Capabilities.Tools {
		caps["tools"] = map[string]any{}
	}
	if m.Capabilities.Resources {
		caps["resources"] = map[string]any{}
	}
	if m.Capabilities.Prompts {
		caps["prompts"] = map[string]any{}
	}

	return initializeResult{
		ProtocolVersion: m.ProtocolVersion,
		ServerInfo:      serverInfo{Name: m.Name, Version: m.Version},
		Capabilities:    caps,
	}
}

type toolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema *schema.Schema `json:"inputSchema"`
}

func (r *router) toolsList() map[string]any {
	tools := r.srv.Tools()
	list := make([]toolInfo, 0, len(tools))
	for _, t := range tools {
		list = append(list, toolInfo{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema()})
	}
	return map[string]any{"tools": list}
}

type resourceInfo struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

func (r *router) resourcesList() map[string]any {
	resources := r.srv.Resources()
	list := make([]resourceInfo, 0, len(resources))
	for _, res := range resources {
		list = append(list, resourceInfo{URI: res.URI, Name: res.Name, Description: res.Description, MimeType: res.MimeType})
	}
	return map[string]any{"resources": list}
}

type promptInfo struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Arguments   []server.PromptArgument `json:"arguments,omitempty"`
}

func (r *router) promptsList() map[string]any {
	prompts := r.srv.Prompts()
	list := make([]promptInfo, 0, len(prompts))
	for _, p := range prompts {
		list = append(list, promptInfo{Name: p.Name, Description: p.Description, Arguments: p.Arguments()})
	}
	return map[string]any{"prompts": list}
}

// invocation holds the params of tools/call and prompts/get.
type invocation struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func decodeInvocation(req *protocol.Request) (invocation, error) {
	var p invocation
	if err := req.DecodeParams(&p); err != nil {
		return p, err
	}
	if p.Name == "" {
		return p, protocol.NewInvalidParams("missing name")
	}
	return p, nil
}

func (r *router) toolsCall(ctx context.Context, req *protocol.Request) (*server.ToolResult, error) {
	p, err := decodeInvocation(req)
	if err != nil {
		return nil, err
	}
	return r.srv.CallTool(ctx, p.Name, p.Arguments)
}

func (r *router) promptsGet(ctx context.Context, req *protocol.Request) (*server.PromptResult, error) {
	p, err := decodeInvocation(req)
	if err != nil {
		return nil, err
	}
	return r.srv.GetPrompt(ctx, p.Name, p.Arguments)
}

func (r *router) resourcesRead(ctx context.Context, req *protocol.Request) (*server.ResourceResult, error) {
	var p struct {
		URI string `json:"uri"`
	}
	if err := req.DecodeParams(&p); err != nil {
		return nil, err
	}
	if p.URI == "" {
		return nil, protocol.NewInvalidParams("missing uri")
	}
	return r.srv.ReadResource(ctx, p.URI)
}
