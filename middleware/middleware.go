package middleware

import "time"

// DefaultStack returns the stack every server starts from: panic recovery,
// request IDs and request logging, in that order.
func DefaultStack(logger Logger) Stack {
	return Stack{
		Recover(logger),
		RequestID(),
		Logging(logger),
	}
}

// StackConfig selects the optional layers added on top of DefaultStack.
type StackConfig struct {
	Logger Logger

	// RateLimit is the allowed requests per second. Zero disables limiting.
	RateLimit int
	RateBurst int

	// Timeout bounds each request. Zero means no deadline.
	Timeout time.Duration

	// Telemetry enables the OpenTelemetry layer using the global providers.
	Telemetry   bool
	ServiceName string
}

// NewStack builds the production stack described by cfg.
func NewStack(cfg StackConfig) Stack {
	logger := cfg.Logger
	if logger == nil {
		logger = NopLogger{}
	}

	s := DefaultStack(logger)
	if cfg.Telemetry {
		s = s.Use(OTel(WithOTelServiceName(cfg.ServiceName)))
	}
	if cfg.RateLimit > 0 {
		s = s.Use(RateLimitByClient(cfg.RateLimit, cfg.RateBurst, WithRateLimitLogger(logger)))
	}
	if cfg.Timeout > 0 {
		s = s.Use(Timeout(cfg.Timeout))
	}
	return s
}
