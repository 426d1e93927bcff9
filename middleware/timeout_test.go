package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-starter/protocol"
)

func TestTimeout(t *testing.T) {
	t.Run("sets deadline", func(t *testing.T) {
		var deadline time.Time
		var ok bool
		wrapped := Timeout(time.Second)(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			deadline, ok = ctx.Deadline()
			return protocol.NewResponse(req.ID, "ok"), nil
		})

		if _, err := wrapped(context.Background(), &protocol.Request{Method: "test"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok || time.Until(deadline) > time.Second {
			t.Errorf("deadline = %v, ok = %v", deadline, ok)
		}
	})

	t.Run("cancels slow handlers that honor ctx", func(t *testing.T) {
		wrapped := Timeout(10 * time.Millisecond)(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

		_, err := wrapped(context.Background(), &protocol.Request{Method: "test"})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("error = %v, want deadline exceeded", err)
		}
	})

	t.Run("zero disables", func(t *testing.T) {
		wrapped := Timeout(0)(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if _, ok := ctx.Deadline(); ok {
				t.Error("expected no deadline")
			}
			return nil, nil
		})
		_, _ = wrapped(context.Background(), &protocol.Request{Method: "test"})
	})
}
