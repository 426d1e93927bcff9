package capabilities

import (
	"context"
	"encoding/json"

	"github.com/felixgeelhaar/mcp-starter/server"
)

// ServerInfoURI is where the server-info resource is published.
const ServerInfoURI = "mcp://server/info"

// ServerInfo is the payload of the server-info resource.
type ServerInfo struct {
	Name      string  `json:"name"`
	Version   string  `json:"version"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

// RegisterServerInfo adds the server-info resource describing this process.
func RegisterServerInfo(srv *server.Server, info server.Info, clock Clock) error {
	return srv.Resource("server-info", ServerInfoURI).
		Description("General information about this MCP server").
		MimeType("application/json").
		Handler(func(ctx context.Context) (*server.ResourceResult, error) {
			data, err := json.Marshal(ServerInfo{
				Name:      info.Name,
				Version:   info.Version,
				Timestamp: timestamp(clock),
				Uptime:    uptime(clock),
			})
			if err != nil {
				return nil, err
			}
			return &server.ResourceResult{
				Contents: []server.ResourceContent{{URI: ServerInfoURI, Text: string(data)}},
			}, nil
		}).
		Err()
}
