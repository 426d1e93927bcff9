// Command mcp-starter runs the starter MCP server over stdio or WebSocket.
package main

func main() {
	Execute()
}
