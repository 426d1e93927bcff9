package transport

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/felixgeelhaar/mcp-starter/protocol"
)

// Handler processes incoming MCP requests.
type Handler interface {
	HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
}

// HandlerFunc is an adapter to allow ordinary functions as handlers.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// HandleRequest calls f(ctx, req).
func (f HandlerFunc) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return f(ctx, req)
}

// Transport defines the communication layer interface.
type Transport interface {
	// Serve blocks until the peer goes away, ctx is canceled or an error
	// occurs.
	Serve(ctx context.Context, handler Handler) error

	// Addr describes where the transport listens.
	Addr() string
}

// nullID is the id of responses to frames whose id could not be read.
var nullID = json.RawMessage("null")

// respond runs one raw frame through handler and returns the response to
// write back, or nil when none is due (notifications).
//
// Frame-level failures never reach the handler: undecodable JSON yields a
// parse error and a frame that is not a JSON-RPC 2.0 request yields an
// invalid request error, both with a null id.
func respond(ctx context.Context, handler Handler, frame []byte) *protocol.Response {
	var req protocol.Request
	if err := json.Unmarshal(frame, &req); err != nil {
		return protocol.NewErrorResponse(nullID, protocol.NewParseError(err.Error()))
	}
	if req.JSONRPC != protocol.JSONRPCVersion || req.Method == "" {
		id := req.ID
		if len(id) == 0 {
			id = nullID
		}
		return protocol.NewErrorResponse(id, protocol.NewInvalidRequest("expected a JSON-RPC 2.0 request"))
	}

	resp, err := handler.HandleRequest(ctx, &req)
	if req.IsNotification() {
		return nil
	}

	if err != nil {
		return protocol.NewErrorResponse(req.ID, protocol.AsError(err))
	}
	if resp == nil {
		return protocol.NewResponse(req.ID, struct{}{})
	}
	return resp
}

// blank reports whether a frame holds only whitespace.
func blank(frame []byte) bool {
	return len(bytes.TrimSpace(frame)) == 0
}

// withMeta tags ctx with the transport facts of a request.
func withMeta(ctx context.Context, transport, remoteAddr string) context.Context {
	meta := protocol.RequestMeta{protocol.MetaTransport: transport}
	if remoteAddr != "" {
		meta[protocol.MetaRemoteAddr] = remoteAddr
	}
	return protocol.ContextWithRequestMeta(ctx, meta)
}
