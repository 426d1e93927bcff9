package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-starter/middleware"
	"github.com/felixgeelhaar/mcp-starter/protocol"
	"github.com/felixgeelhaar/mcp-starter/schema"
)

// Result is the payload of a successful dispatch: *ToolResult,
// *ResourceResult or *PromptResult.
type Result interface {
	Kind() Kind
}

// Dispatch invokes the capability of the given kind and name. Resources are
// addressed by name here; use ReadResource to address them by URI.
//
// Every failure is returned as a *protocol.Error:
//   - unknown capability: CodeNotFound
//   - arguments violating the contract: CodeInvalidParams, with the field
//     issues in Data; the handler is not invoked
//   - handler error or panic: the handler's *protocol.Error, or
//     CodeInternalError
func (s *Server) Dispatch(ctx context.Context, kind Kind, name string, raw json.RawMessage) (Result, error) {
	s.Seal()

	switch kind {
	case KindTool:
		res, err := s.CallTool(ctx, name, raw)
		if err != nil {
			return nil, err
		}
		return res, nil
	case KindResource:
		s.mu.RLock()
		entry, ok := s.resources[name]
		s.mu.RUnlock()
		if !ok {
			return nil, s.notFound(ctx, KindResource, name)
		}
		res, err := s.ReadResource(ctx, entry.desc.URI)
		if err != nil {
			return nil, err
		}
		return res, nil
	case KindPrompt:
		res, err := s.GetPrompt(ctx, name, raw)
		if err != nil {
			return nil, err
		}
		return res, nil
	default:
		return nil, protocol.NewInvalidRequest(fmt.Sprintf("unknown capability kind %d", kind))
	}
}

// CallTool validates raw against the tool's contract and runs it.
func (s *Server) CallTool(ctx context.Context, name string, raw json.RawMessage) (*ToolResult, error) {
	s.Seal()

	s.mu.RLock()
	entry, ok := s.tools[name]
	s.mu.RUnlock()
	if !ok {
		return nil, s.notFound(ctx, KindTool, name)
	}

	args, err := s.arguments(ctx, KindTool, name, entry.desc.Input, raw)
	if err != nil {
		return nil, err
	}

	res, err := invoke(ctx, s, KindTool, name, func(ctx context.Context) (*ToolResult, error) {
		return entry.handler(ctx, args)
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &ToolResult{}
	}
	if res.Content == nil {
		res.Content = []Content{}
	}
	return res, nil
}

// ReadResource runs the resource registered at exactly uri.
func (s *Server) ReadResource(ctx context.Context, uri string) (*ResourceResult, error) {
	s.Seal()

	entry := s.resourceAt(uri)
	if entry == nil {
		return nil, s.notFound(ctx, KindResource, uri)
	}

	res, err := invoke[ResourceResult](ctx, s, KindResource, entry.desc.Name, entry.handler)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &ResourceResult{}
	}
	if res.Contents == nil {
		res.Contents = []ResourceContent{}
	}
	for i := range res.Contents {
		if res.Contents[i].URI == "" {
			res.Contents[i].URI = entry.desc.URI
		}
		if res.Contents[i].MimeType == "" {
			res.Contents[i].MimeType = entry.desc.MimeType
		}
	}
	return res, nil
}

// GetPrompt validates raw against the prompt's contract and renders it.
func (s *Server) GetPrompt(ctx context.Context, name string, raw json.RawMessage) (*PromptResult, error) {
	s.Seal()

	s.mu.RLock()
	entry, ok := s.prompts[name]
	s.mu.RUnlock()
	if !ok {
		return nil, s.notFound(ctx, KindPrompt, name)
	}

	args, err := s.arguments(ctx, KindPrompt, name, entry.desc.Args, raw)
	if err != nil {
		return nil, err
	}

	res, err := invoke(ctx, s, KindPrompt, name, func(ctx context.Context) (*PromptResult, error) {
		return entry.handler(ctx, args)
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &PromptResult{}
	}
	if res.Messages == nil {
		res.Messages = []PromptMessage{}
	}
	return res, nil
}

// arguments turns raw input into the argument set handed to a handler.
func (s *Server) arguments(ctx context.Context, kind Kind, name string, shape schema.Shape, raw json.RawMessage) (Arguments, error) {
	if shape == nil {
		return Arguments{}, nil
	}

	value, err := s.validator.Validate(shape, raw)
	if err != nil {
		var issues schema.Issues
		if !errors.As(err, &issues) {
			issues = schema.Issues{{Message: err.Error()}}
		}
		s.logger.Debug("invalid arguments", fields(ctx, kind, name, middleware.F("issues", issues.Error()))...)
		return nil, protocol.NewInvalidParams(fmt.Sprintf("invalid arguments for %s %q", kind, name)).
			WithData(map[string]any{"issues": issues})
	}
	if value == nil {
		value = map[string]any{}
	}
	return Arguments(value), nil
}

// notFound reports a dispatch to an unregistered capability. The runtime
// only routes names it advertised, so this indicates an inconsistency.
func (s *Server) notFound(ctx context.Context, kind Kind, name string) error {
	s.logger.Error("dispatch to unregistered capability", fields(ctx, kind, name)...)
	return protocol.NewNotFound(fmt.Sprintf("%s not found: %s", kind, name))
}

// invoke runs fn once, converting errors and panics into *protocol.Error.
func invoke[R any](ctx context.Context, s *Server, kind Kind, name string, fn func(context.Context) (*R, error)) (res *R, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("capability handler panicked", fields(ctx, kind, name, middleware.F("panic", fmt.Sprint(r)))...)
			res, err = nil, protocol.NewInternalError(fmt.Sprintf("%s %q panicked: %v", kind, name, r))
		}
	}()

	res, err = fn(ctx)
	if err == nil {
		return res, nil
	}

	s.logger.Warn("capability handler failed", fields(ctx, kind, name, middleware.F("error", err.Error()))...)

	return nil, protocol.AsError(err)
}

func fields(ctx context.Context, kind Kind, name string, extra ...middleware.Field) []middleware.Field {
	f := []middleware.Field{
		middleware.F("kind", kind.String()),
		middleware.F("name", name),
	}
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		f = append(f, middleware.F("request_id", id))
	}
	return append(f, extra...)
}
