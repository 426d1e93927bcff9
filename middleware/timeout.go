package middleware

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mcp-starter/protocol"
)

// Timeout attaches a deadline of d to the request context. Handlers that
// honor ctx stop early; the dispatch itself is never abandoned.
func Timeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if d <= 0 {
				return next(ctx, req)
			}
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, req)
		}
	}
}
