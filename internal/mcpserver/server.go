package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	httpserver "github.com/franz/rstream/internal/server"
	"github.com/franz/rstream/internal/store"
	"github.com/franz/rstream/internal/util"
)

// Server exposes the song library as MCP tools
type Server struct {
	mcp   *server.MCPServer
	store store.Querier
}

// New creates an MCP server backed by q and registers all tools
func New(q store.Querier, version string) *Server {
	s := &Server{
		mcp:   server.NewMCPServer(httpserver.Name, version, server.WithToolCapabilities(true)),
		store: q,
	}
	s.registerSongTools()
	s.registerLibraryTools()
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	util.DebugLog("Starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// optionalUint reads a non-negative whole number argument; absent is nil
func optionalUint(args map[string]any, key string) (*uint32, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	f, ok := raw.(float64)
	if !ok || f < 0 || f > float64(^uint32(0)) || f != float64(uint32(f)) {
		return nil, fmt.Errorf("%s must be a non-negative integer", key)
	}
	v := uint32(f)
	return &v, nil
}
