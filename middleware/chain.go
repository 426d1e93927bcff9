package middleware

import (
	"context"

	"github.com/felixgeelhaar/mcp-starter/protocol"
)

// HandlerFunc handles one decoded JSON-RPC request.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// Middleware wraps a handler with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares so that Chain(a, b)(h) runs a, then b, then h.
func Chain(middlewares ...Middleware) Middleware {
	return func(final HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] == nil {
				continue
			}
			final = middlewares[i](final)
		}
		return final
	}
}

// Stack is an ordered middleware list built up during startup.
type Stack []Middleware

// Use appends middlewares to the stack. Nil entries are ignored, which lets
// callers add optional layers without branching.
func (s Stack) Use(middlewares ...Middleware) Stack {
	for _, m := range middlewares {
		if m != nil {
			s = append(s, m)
		}
	}
	return s
}

// Then wraps handler with every middleware in the stack.
func (s Stack) Then(handler HandlerFunc) HandlerFunc {
	return Chain(s...)(handler)
}
