package capabilities

import (
	"context"

	"github.com/felixgeelhaar/mcp-starter/server"
)

// HealthStatus is the payload of the health tool.
type HealthStatus struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

// RegisterHealth adds the health tool. It takes no arguments.
func RegisterHealth(srv *server.Server, clock Clock) error {
	return srv.Tool("health").
		Description("Check if the MCP server is running").
		Handler(func(ctx context.Context, _ server.Arguments) (*server.ToolResult, error) {
			return server.JSON(HealthStatus{
				Status:    "ok",
				Timestamp: timestamp(clock),
				Uptime:    uptime(clock),
			})
		}).
		Err()
}
