package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/mcp-starter/protocol"
)

// Logger is the structured logger used throughout the server. Entries go to
// stderr; stdout belongs to the protocol.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// F creates a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logging returns middleware that logs one entry per handled request.
// Notifications are logged at debug level. Failed requests are logged at
// warn level with the error code.
func Logging(logger Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			fields := []Field{
				F("method", req.Method),
				F("duration", time.Since(start)),
			}
			if id := RequestIDFromContext(ctx); id != "" {
				fields = append(fields, F("request_id", id))
			}
			if transport := protocol.GetRequestMeta(ctx, protocol.MetaTransport); transport != "" {
				fields = append(fields, F("transport", transport))
			}

			rpcErr := responseError(resp, err)
			switch {
			case rpcErr != nil:
				fields = append(fields, F("code", rpcErr.Code), F("reason", protocol.CodeName(rpcErr.Code)), F("error", rpcErr.Message))
				logger.Warn("request failed", fields...)
			case err != nil:
				fields = append(fields, F("error", err.Error()))
				logger.Error("request failed", fields...)
			case req.IsNotification():
				logger.Debug("notification handled", fields...)
			default:
				logger.Info("request completed", fields...)
			}

			return resp, err
		}
	}
}

// responseError extracts the JSON-RPC error carried by either the returned
// error or the response, if any.
func responseError(resp *protocol.Response, err error) *protocol.Error {
	if err != nil {
		var rpcErr *protocol.Error
		if errors.As(err, &rpcErr) {
			return rpcErr
		}
		return nil
	}
	if resp != nil {
		return resp.Error
	}
	return nil
}

// NopLogger discards all entries.
type NopLogger struct{}

func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
