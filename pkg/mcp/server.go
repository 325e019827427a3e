// Package mcp exposes device control and element resolution as MCP tools
// over stdio, so AI clients can drive the phone.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/devicelab-dev/droidreplay/pkg/core"
	"github.com/devicelab-dev/droidreplay/pkg/logger"
)

// ServerName identifies the tool server to clients.
const ServerName = "droidreplay"

// Server wraps an MCP server bound to one device.
type Server struct {
	dev    core.Device
	server *server.MCPServer
}

// NewServer creates a tool server for dev and registers every tool.
func NewServer(dev core.Device, version string) *Server {
	s := &Server{
		dev: dev,
		server: server.NewMCPServer(
			ServerName,
			version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
	}
	s.registerScreenTools()
	s.registerInputTools()
	s.registerDeviceTools()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.server
}

// Serve speaks MCP over in/out until ctx is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.server)
	logger.Info("mcp").Msg("tool server started")
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp").Err(err).Msg("tool server stopped")
		return err
	}
	logger.Info("mcp").Msg("tool server stopped")
	return nil
}

// textResult is a successful text reply.
func textResult(format string, args ...interface{}) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(fmt.Sprintf(format, args...))},
	}
}

// errorResult reports a failed tool call to the client. Tool failures never
// surface as protocol errors.
func errorResult(tool string, err error) *mcp.CallToolResult {
	code := "unknown"
	var e *core.ExecutionError
	if errors.As(err, &e) {
		code = e.Code
	}
	logger.Warn("mcp").Str("tool", tool).Str("code", code).Err(err).Msg("tool failed")
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(fmt.Sprintf("Error: %v", err))},
		IsError: true,
	}
}

// intArg reads a numeric argument. JSON numbers arrive as float64; numeric
// strings are accepted too.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

// requireInts reads the named numeric arguments or reports the first missing.
func requireInts(args map[string]interface{}, keys ...string) ([]int, error) {
	out := make([]int, len(keys))
	for i, k := range keys {
		v, ok := intArg(args, k)
		if !ok {
			return nil, fmt.Errorf("%s is required and must be a number", k)
		}
		out[i] = v
	}
	return out, nil
}
