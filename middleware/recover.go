package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/felixgeelhaar/mcp-starter/protocol"
)

// PanicHandler turns a recovered panic into a result.
type PanicHandler func(ctx context.Context, req *protocol.Request, panicVal any) (*protocol.Response, error)

// Recover returns middleware that converts a panic anywhere below it into an
// internal error, so one bad request never takes the process down. The
// panic and its stack are logged at error level.
func Recover(logger Logger) Middleware {
	if logger == nil {
		logger = NopLogger{}
	}
	return RecoverWithHandler(func(ctx context.Context, req *protocol.Request, panicVal any) (*protocol.Response, error) {
		logger.Error("panic recovered",
			F("method", req.Method),
			F("panic", fmt.Sprint(panicVal)),
			F("stack", string(debug.Stack())),
		)
		return nil, protocol.NewInternalError(fmt.Sprintf("panic: %v", panicVal))
	})
}

// RecoverWithHandler returns middleware that hands recovered panics to handler.
func RecoverWithHandler(handler PanicHandler) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (resp *protocol.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp, err = handler(ctx, req, r)
				}
			}()
			return next(ctx, req)
		}
	}
}
