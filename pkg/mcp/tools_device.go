package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDeviceTools() {
	s.server.AddTool(
		mcp.NewTool("get_device_info",
			mcp.WithDescription("Return display size and the foreground app"),
		),
		s.handleDeviceInfo,
	)

	s.server.AddTool(
		mcp.NewTool("list_apps",
			mcp.WithDescription("List launchable apps as 'label (package)' lines"),
		),
		s.handleListApps,
	)
}

func (s *Server) handleDeviceInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.dev.DeviceState(ctx)
	if err != nil {
		return errorResult("get_device_info", err), nil
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errorResult("get_device_info", err), nil
	}
	return textResult("%s", data), nil
}

func (s *Server) handleListApps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pkgs, err := s.dev.Packages(ctx)
	if err != nil {
		return errorResult("list_apps", err), nil
	}
	if len(pkgs) == 0 {
		return textResult("No apps found"), nil
	}
	lines := make([]string, len(pkgs))
	for i, p := range pkgs {
		lines[i] = fmt.Sprintf("%s (%s)", p.Label, p.PackageName)
	}
	return textResult("%s", strings.Join(lines, "\n")), nil
}
