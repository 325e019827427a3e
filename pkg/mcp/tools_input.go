package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devicelab-dev/droidreplay/pkg/core"
)

// Tool defaults, in milliseconds.
const (
	defaultSwipeMs     = 500
	defaultLongPressMs = 1000
)

func (s *Server) registerInputTools() {
	s.server.AddTool(
		mcp.NewTool("tap_coordinate",
			mcp.WithDescription("Tap at absolute screen coordinates"),
			mcp.WithNumber("x", mcp.Required(), mcp.Description("X coordinate")),
			mcp.WithNumber("y", mcp.Required(), mcp.Description("Y coordinate")),
		),
		s.handleTapCoordinate,
	)

	s.server.AddTool(
		mcp.NewTool("long_press",
			mcp.WithDescription("Long press at absolute screen coordinates"),
			mcp.WithNumber("x", mcp.Required(), mcp.Description("X coordinate")),
			mcp.WithNumber("y", mcp.Required(), mcp.Description("Y coordinate")),
			mcp.WithNumber("duration_ms", mcp.Description("Hold time in milliseconds (default: 1000)")),
		),
		s.handleLongPress,
	)

	s.server.AddTool(
		mcp.NewTool("swipe",
			mcp.WithDescription("Swipe between two points"),
			mcp.WithNumber("sx", mcp.Required(), mcp.Description("Start X")),
			mcp.WithNumber("sy", mcp.Required(), mcp.Description("Start Y")),
			mcp.WithNumber("ex", mcp.Required(), mcp.Description("End X")),
			mcp.WithNumber("ey", mcp.Required(), mcp.Description("End Y")),
			mcp.WithNumber("duration_ms", mcp.Description("Swipe duration in milliseconds (default: 500)")),
		),
		s.handleSwipe,
	)

	s.server.AddTool(
		mcp.NewTool("type_text",
			mcp.WithDescription("Type text into the focused field"),
			mcp.WithString("text", mcp.Required(), mcp.Description("Text to type, any language")),
		),
		s.handleTypeText,
	)

	s.server.AddTool(
		mcp.NewTool("clear_text",
			mcp.WithDescription("Clear the focused text field"),
		),
		s.handleClearText,
	)

	s.server.AddTool(
		mcp.NewTool("press_key",
			mcp.WithDescription("Press an Android key by code (66) or name (enter, backspace, tab, escape, up, down, left, right, back, home)"),
			mcp.WithString("key", mcp.Required(), mcp.Description("Key code or name")),
		),
		s.handlePressKey,
	)

	s.server.AddTool(
		mcp.NewTool("press_home",
			mcp.WithDescription("Press the home button"),
		),
		s.handlePressHome,
	)

	s.server.AddTool(
		mcp.NewTool("press_back",
			mcp.WithDescription("Press the back button"),
		),
		s.handlePressBack,
	)
}

func (s *Server) handleTapCoordinate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := requireInts(request.GetArguments(), "x", "y")
	if err != nil {
		return errorResult("tap_coordinate", err), nil
	}
	if err := s.dev.Tap(ctx, p[0], p[1]); err != nil {
		return errorResult("tap_coordinate", err), nil
	}
	return textResult("Tapped at (%d, %d)", p[0], p[1]), nil
}

func (s *Server) handleLongPress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	p, err := requireInts(args, "x", "y")
	if err != nil {
		return errorResult("long_press", err), nil
	}
	ms, ok := intArg(args, "duration_ms")
	if !ok || ms <= 0 {
		ms = defaultLongPressMs
	}
	if err := s.dev.Swipe(ctx, p[0], p[1], p[0], p[1], ms); err != nil {
		return errorResult("long_press", err), nil
	}
	return textResult("Long pressed at (%d, %d) for %dms", p[0], p[1], ms), nil
}

func (s *Server) handleSwipe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	p, err := requireInts(args, "sx", "sy", "ex", "ey")
	if err != nil {
		return errorResult("swipe", err), nil
	}
	ms, ok := intArg(args, "duration_ms")
	if !ok || ms <= 0 {
		ms = defaultSwipeMs
	}
	if err := s.dev.Swipe(ctx, p[0], p[1], p[2], p[3], ms); err != nil {
		return errorResult("swipe", err), nil
	}
	return textResult("Swiped %d,%d -> %d,%d", p[0], p[1], p[2], p[3]), nil
}

func (s *Server) handleTypeText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := stringArg(request.GetArguments(), "text")
	if text == "" {
		return errorResult("type_text", fmt.Errorf("text is required")), nil
	}
	if err := s.dev.InputText(ctx, text); err != nil {
		return errorResult("type_text", err), nil
	}
	return textResult("Typed: '%s'", text), nil
}

func (s *Server) handleClearText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.dev.ClearText(ctx); err != nil {
		return errorResult("clear_text", err), nil
	}
	return textResult("Text Cleared"), nil
}

func (s *Server) handlePressKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	key := stringArg(args, "key")
	if n, ok := args["key"].(float64); ok {
		key = fmt.Sprintf("%d", int(n))
	}
	code, ok := core.KeyCode(key)
	if !ok {
		return errorResult("press_key", fmt.Errorf("unknown key %q", key)), nil
	}
	if err := s.dev.PressKey(ctx, code); err != nil {
		return errorResult("press_key", err), nil
	}
	return textResult("Pressed Key: %d", code), nil
}

func (s *Server) handlePressHome(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.dev.GlobalAction(ctx, core.GlobalActionHome); err != nil {
		return errorResult("press_home", err), nil
	}
	return textResult("Pressed HOME"), nil
}

func (s *Server) handlePressBack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.dev.GlobalAction(ctx, core.GlobalActionBack); err != nil {
		return errorResult("press_back", err), nil
	}
	return textResult("Pressed BACK"), nil
}
