package capabilities

import (
	"context"

	"github.com/felixgeelhaar/mcp-starter/server"
)

// EchoInput is the argument set of the echo tool.
type EchoInput struct {
	Message string `json:"message" jsonschema:"description=The message to echo back"`
}

// RegisterEcho adds the echo tool, which returns its message unchanged.
func RegisterEcho(srv *server.Server) error {
	return server.RegisterTypedTool(srv, "echo",
		"Echo back the provided message, useful for testing connectivity",
		func(ctx context.Context, in EchoInput) (*server.ToolResult, error) {
			return server.Text(in.Message), nil
		})
}
