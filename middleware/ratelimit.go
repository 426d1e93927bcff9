package middleware

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/felixgeelhaar/mcp-starter/protocol"
)

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(ctx context.Context, req *protocol.Request) string

// RateLimitOption configures the rate limiter.
type RateLimitOption func(*rateLimitConfig)

type rateLimitConfig struct {
	keyFunc KeyFunc
	logger  Logger
	exempt  map[string]bool
}

// WithRateLimitKeyFunc sets how requests are grouped into buckets.
func WithRateLimitKeyFunc(fn KeyFunc) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.keyFunc = fn
	}
}

// WithRateLimitLogger logs rejected requests to l.
func WithRateLimitLogger(l Logger) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.logger = l
	}
}

// WithRateLimitExempt lets the named methods bypass the limiter.
func WithRateLimitExempt(methods ...string) RateLimitOption {
	return func(o *rateLimitConfig) {
		for _, m := range methods {
			o.exempt[m] = true
		}
	}
}

// RateLimit returns token bucket middleware allowing rate requests per
// second with bursts of up to burst. Rejected requests fail with
// CodeRateLimited. The lifecycle methods initialize and ping are exempt.
func RateLimit(rate int, burst int, opts ...RateLimitOption) Middleware {
	cfg := &rateLimitConfig{
		keyFunc: func(context.Context, *protocol.Request) string { return "global" },
		exempt: map[string]bool{
			protocol.MethodInitialize: true,
			protocol.MethodPing:       true,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if burst < 1 {
		burst = 1
	}

	limiter := ratelimit.New(&ratelimit.Config{
		Rate:     rate,
		Burst:    burst,
		Interval: time.Second,
	})

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if cfg.exempt[req.Method] {
				return next(ctx, req)
			}

			key := cfg.keyFunc(ctx, req)
			if !limiter.Allow(ctx, key) {
				if cfg.logger != nil {
					cfg.logger.Warn("rate limit exceeded",
						F("method", req.Method),
						F("key", key),
					)
				}
				return nil, protocol.NewRateLimited("rate limit exceeded")
			}

			return next(ctx, req)
		}
	}
}

// RateLimitByMethod keeps one bucket per JSON-RPC method.
func RateLimitByMethod(rate int, burst int, opts ...RateLimitOption) Middleware {
	keyed := WithRateLimitKeyFunc(func(_ context.Context, req *protocol.Request) string {
		return req.Method
	})
	return RateLimit(rate, burst, append([]RateLimitOption{keyed}, opts...)...)
}

// RateLimitByClient keeps one bucket per peer. Peers are told apart by the
// remote address their transport recorded; requests without one (stdio)
// share a single bucket.
func RateLimitByClient(rate int, burst int, opts ...RateLimitOption) Middleware {
	keyed := WithRateLimitKeyFunc(func(ctx context.Context, _ *protocol.Request) string {
		if addr := protocol.GetRequestMeta(ctx, protocol.MetaRemoteAddr); addr != "" {
			return addr
		}
		return "local"
	})
	return RateLimit(rate, burst, append([]RateLimitOption{keyed}, opts...)...)
}
