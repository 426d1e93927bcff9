package middleware

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/mcp-starter/protocol"
)

func TestRequestID(t *testing.T) {
	capture := func(id *string) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			*id = RequestIDFromContext(ctx)
			return protocol.NewResponse(req.ID, "ok"), nil
		}
	}

	t.Run("injects uuid", func(t *testing.T) {
		var id string
		_, _ = RequestID()(capture(&id))(context.Background(), &protocol.Request{Method: "test"})

		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("request id %q is not a uuid: %v", id, err)
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		var a, b string
		wrapped := RequestID()
		_, _ = wrapped(capture(&a))(context.Background(), &protocol.Request{Method: "test"})
		_, _ = wrapped(capture(&b))(context.Background(), &protocol.Request{Method: "test"})
		if a == b {
			t.Errorf("expected distinct ids, both %q", a)
		}
	})

	t.Run("preserves existing id", func(t *testing.T) {
		var id string
		ctx := ContextWithRequestID(context.Background(), "existing")
		_, _ = RequestID()(capture(&id))(ctx, &protocol.Request{Method: "test"})
		if id != "existing" {
			t.Errorf("id = %q, want existing", id)
		}
	})

	t.Run("custom generator", func(t *testing.T) {
		var id string
		gen := func() string { return "fixed" }
		_, _ = RequestIDWithGenerator(gen)(capture(&id))(context.Background(), &protocol.Request{Method: "test"})
		if id != "fixed" {
			t.Errorf("id = %q, want fixed", id)
		}
	})

	t.Run("empty context", func(t *testing.T) {
		if id := RequestIDFromContext(context.Background()); id != "" {
			t.Errorf("id = %q, want empty", id)
		}
	})
}
