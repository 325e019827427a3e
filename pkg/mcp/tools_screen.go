package mcp

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devicelab-dev/droidreplay/pkg/resolver"
)

func (s *Server) registerScreenTools() {
	s.server.AddTool(
		mcp.NewTool("get_screen_content",
			mcp.WithDescription("Return the accessibility tree of the current screen as JSON"),
			mcp.WithString("mode",
				mcp.Description("fast (accessibility tree only, default) or full (complete device state)"),
				mcp.Enum("fast", "full"),
			),
		),
		s.handleScreenContent,
	)

	s.server.AddTool(
		mcp.NewTool("tap_element",
			mcp.WithDescription("Find an element in the live tree by text, content description or resource id and tap its center"),
			mcp.WithString("text", mcp.Description("Visible text")),
			mcp.WithString("content_description", mcp.Description("Accessibility description")),
			mcp.WithString("resource_id", mcp.Description("Resource id, e.g. com.app:id/ok")),
		),
		s.handleTapElement,
	)

	s.server.AddTool(
		mcp.NewTool("get_screenshot",
			mcp.WithDescription("Capture the screen as a PNG image"),
		),
		s.handleScreenshot,
	)
}

func (s *Server) handleScreenContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode := stringArg(request.GetArguments(), "mode")
	if mode == "" {
		mode = "fast"
	}

	var (
		body []byte
		err  error
	)
	switch mode {
	case "fast":
		body, err = s.dev.AccessibilityTree(ctx)
	case "full":
		body, err = s.dev.FullState(ctx)
	default:
		return errorResult("get_screen_content", fmt.Errorf("mode must be fast or full, got %q", mode)), nil
	}
	if err != nil {
		return errorResult("get_screen_content", err), nil
	}
	return textResult("%s", body), nil
}

func (s *Server) handleTapElement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	c := resolver.Criteria{
		Text:               stringArg(args, "text"),
		ContentDescription: stringArg(args, "content_description"),
		ResourceID:         stringArg(args, "resource_id"),
	}
	if c.IsEmpty() {
		return errorResult("tap_element", fmt.Errorf("one of text, content_description or resource_id is required")), nil
	}

	m, err := resolver.Find(ctx, s.dev, c)
	if err != nil {
		return errorResult("tap_element", err), nil
	}
	x, y, err := m.Center()
	if err != nil {
		return errorResult("tap_element", err), nil
	}
	if err := s.dev.Tap(ctx, x, y); err != nil {
		return errorResult("tap_element", err), nil
	}
	return textResult("Tapped %s (index %d, score %d) at (%d, %d)", c.DescribeQuoted(), m.Node.Index, m.Score, x, y), nil
}

func (s *Server) handleScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	png, err := s.dev.Screenshot(ctx)
	if err != nil {
		return errorResult("get_screenshot", err), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewImageContent(base64.StdEncoding.EncodeToString(png), "image/png"),
			mcp.NewTextContent(fmt.Sprintf("Screenshot captured (%d bytes)", len(png))),
		},
	}, nil
}
