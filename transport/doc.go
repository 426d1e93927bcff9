// Package transport carries JSON-RPC 2.0 frames between a peer and a Handler.
//
// Two transports are provided. Stdio reads newline-delimited requests from
// stdin and writes one response per line to stdout:
//
//	t := transport.NewStdio(transport.WithStdioLogger(logger))
//	err := t.Serve(ctx, handler)
//
// WebSocket accepts connections on an address and treats every message as
// one frame:
//
//	t := transport.NewWebSocket(":8080")
//	err := t.Serve(ctx, handler)
//
// Both decode frames, answer malformed ones with parse or invalid request
// errors, drop responses to notifications and turn handler errors into
// JSON-RPC error responses. Requests are handled concurrently; on shutdown
// a transport stops reading and waits for the requests still in flight.
package transport
