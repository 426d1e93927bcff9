package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-starter/protocol"
	"github.com/felixgeelhaar/mcp-starter/schema"
)

// ContentTypeText tags a text content item.
const ContentTypeText = "text"

// Content is one item of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextContent returns a text content item.
func TextContent(text string) Content {
	return Content{Type: ContentTypeText, Text: text}
}

// ToolResult is the payload of a tools/call response.
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

func (*ToolResult) Kind() Kind { return KindTool }

// Text returns a tool result holding a single text item.
func Text(text string) *ToolResult {
	return &ToolResult{Content: []Content{TextContent(text)}}
}

// JSON returns a tool result holding v encoded as a single text item.
func JSON(v any) (*ToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return Text(string(data)), nil
}

// ToolHandler runs a tool with validated arguments.
type ToolHandler func(ctx context.Context, args Arguments) (*ToolResult, error)

// ToolDescriptor describes a registered tool. A nil Input means the tool
// takes no arguments.
type ToolDescriptor struct {
	Name        string
	Description string
	Input       schema.Shape
}

// InputSchema returns the object schema advertised in tools/list.
func (d ToolDescriptor) InputSchema() *schema.Schema {
	return d.Input.Object()
}

// RegisterTool adds a tool to the registry.
func (s *Server) RegisterTool(desc ToolDescriptor, handler ToolHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.admit(KindTool, desc.Name, handler != nil); err != nil {
		return s.fail(err)
	}
	if _, exists := s.tools[desc.Name]; exists {
		return s.fail(&ConfigError{Kind: KindTool, Name: desc.Name, Err: ErrDuplicateName})
	}

	s.tools[desc.Name] = &toolEntry{desc: desc, handler: handler}
	return nil
}

// LookupTool returns the descriptor of a registered tool.
func (s *Server) LookupTool(name string) (ToolDescriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tools[name]
	if !ok {
		return ToolDescriptor{}, false
	}
	return t.desc, true
}

// RegisterTypedTool registers a tool whose contract is reflected from In.
// The handler receives the validated arguments decoded into In.
func RegisterTypedTool[In any](s *Server, name, description string, fn func(ctx context.Context, in In) (*ToolResult, error)) error {
	shape, err := schema.Reflect[In]()
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.fail(&ConfigError{Kind: KindTool, Name: name, Err: err})
	}

	var handler ToolHandler
	if fn != nil {
		handler = func(ctx context.Context, args Arguments) (*ToolResult, error) {
			var in In
			if err := args.Decode(&in); err != nil {
				return nil, protocol.NewInvalidParams(fmt.Sprintf("decode arguments: %v", err))
			}
			return fn(ctx, in)
		}
	}

	return s.RegisterTool(ToolDescriptor{Name: name, Description: description, Input: shape}, handler)
}

// ToolBuilder provides a fluent API for registering tools.
type ToolBuilder struct {
	desc   ToolDescriptor
	server *Server
	err    error
}

// Tool starts building a new tool with the given name.
func (s *Server) Tool(name string) *ToolBuilder {
	return &ToolBuilder{desc: ToolDescriptor{Name: name}, server: s}
}

// Description sets the tool description.
func (b *ToolBuilder) Description(desc string) *ToolBuilder {
	b.desc.Description = desc
	return b
}

// Input declares the tool's input contract.
func (b *ToolBuilder) Input(shape schema.Shape) *ToolBuilder {
	b.desc.Input = shape
	return b
}

// Handler registers the tool. Registration errors are kept on the builder
// and on the server.
func (b *ToolBuilder) Handler(fn ToolHandler) *ToolBuilder {
	b.err = b.server.RegisterTool(b.desc, fn)
	return b
}

// Err returns the registration error, if any.
func (b *ToolBuilder) Err() error {
	return b.err
}
