// Package middleware wraps request handling with cross-cutting behavior.
//
// A Middleware wraps a HandlerFunc. Stacks run outermost first:
//
//	stack := middleware.DefaultStack(logger).
//	    Use(middleware.RateLimitByClient(20, 40)).
//	    Use(middleware.OTel())
//	handler := stack.Then(base)
//
// The package also owns the Logger interface used by every other package.
// Implementations must write to stderr or a file, never to stdout, which
// carries the stdio transport.
package middleware
