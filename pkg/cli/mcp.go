package cli

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/droidreplay/pkg/mcp"
)

var mcpCommand = &cli.Command{
	Name:  "mcp",
	Usage: "Serve device tools over MCP on stdin/stdout",
	Description: `Expose tap, swipe, typing, key presses, screen content and element
resolution as MCP tools for AI clients. Stdout carries the protocol; use
--log-file for diagnostics.

Example client entry:
  {"command": "droidreplay", "args": ["--host", "192.168.1.20", "mcp"]}`,
	Action: runMCP,
}

func runMCP(c *cli.Context) error {
	dev, _, err := deviceFromContext(c)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	in := c.App.Reader
	if in == nil {
		in = os.Stdin
	}
	return mcp.NewServer(dev, Version).Serve(ctx, in, out(c))
}
