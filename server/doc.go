// Package server provides the capability registry and dispatch adapter.
//
// Most users should use the higher-level mcp package, which wires a Server
// to a transport.
//
// # Registry
//
// A Server holds three registries, one per Kind. Names are unique within a
// kind; a duplicate or malformed registration is a *ConfigError, recorded on
// the server and reported by Err:
//
//	srv := server.New(server.Info{Name: "my-server", Version: "1.0.0"})
//
//	srv.Tool("echo").
//	    Description("Echo back the provided message").
//	    Input(schema.Shape{"message": schema.String()}).
//	    Handler(func(ctx context.Context, args server.Arguments) (*server.ToolResult, error) {
//	        return server.Text(args.String("message")), nil
//	    })
//
//	srv.Resource("server-info", "mcp://server/info").
//	    MimeType("application/json").
//	    Handler(func(ctx context.Context) (*server.ResourceResult, error) {
//	        return &server.ResourceResult{Contents: []server.ResourceContent{{Text: "{}"}}}, nil
//	    })
//
//	if err := srv.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// The registry is sealed by the first dispatch (or an explicit Seal) and is
// read-only from then on.
//
// # Dispatch
//
// Dispatch, CallTool, ReadResource and GetPrompt look the capability up,
// validate the raw arguments against its contract, run the handler exactly
// once and return the kind-specific result. Every failure is a
// *protocol.Error; handler panics are recovered.
package server
