package cli

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/droidreplay/pkg/recorder"
	"github.com/devicelab-dev/droidreplay/pkg/resolver"
	"github.com/devicelab-dev/droidreplay/pkg/uitree"
)

var dumpCommand = &cli.Command{
	Name:  "dump",
	Usage: "Print the current accessibility tree as an indexed table",
	Description: `Fetch the fast tree (or the full state with --full) and print one row per
node in depth-first order.

Examples:
  droidreplay --host 192.168.1.20 dump
  droidreplay --host 192.168.1.20 dump --full --raw`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "full",
			Usage: "Use the full state endpoint",
		},
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "Print the response body instead of a table",
		},
	},
	Action: runDump,
}

var resolveCommand = &cli.Command{
	Name:  "resolve",
	Usage: "Resolve an element in the live tree and optionally tap it",
	Description: `Score every node against the criteria and report the best match.

Examples:
  droidreplay --host 192.168.1.20 resolve --text OK
  droidreplay --host 192.168.1.20 resolve --id com.app:id/submit --tap`,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "text", Usage: "Visible text"},
		&cli.StringFlag{Name: "desc", Usage: "Content description"},
		&cli.StringFlag{Name: "id", Usage: "Resource id"},
		&cli.BoolFlag{Name: "tap", Usage: "Tap the element's center"},
	},
	Action: runResolve,
}

var deviceInfoCommand = &cli.Command{
	Name:   "device-info",
	Usage:  "Print display size and foreground app",
	Action: runDeviceInfo,
}

var pingCommand = &cli.Command{
	Name:   "ping",
	Usage:  "Check that the control service answers",
	Action: runPing,
}

func runDump(c *cli.Context) error {
	dev, _, err := deviceFromContext(c)
	if err != nil {
		return err
	}

	var (
		body  []byte
		nodes []uitree.FlatNode
	)
	if c.Bool("full") {
		body, err = dev.FullState(c.Context)
		if err == nil {
			nodes = uitree.Flatten(uitree.FromFullState(body))
		}
	} else {
		body, err = dev.AccessibilityTree(c.Context)
		if err == nil {
			nodes = uitree.Flatten(uitree.FromResponse(body))
		}
	}
	if err != nil {
		return err
	}

	w := out(c)
	if c.Bool("raw") {
		fmt.Fprintln(w, string(body))
		return nil
	}
	if len(nodes) == 0 {
		fmt.Fprintln(w, "No elements found.")
		return nil
	}
	fmt.Fprint(w, recorder.NodeTable(nodes).Render())
	fmt.Fprintf(w, "%d elements\n", len(nodes))
	return nil
}

func runResolve(c *cli.Context) error {
	crit := resolver.Criteria{
		Text:               c.String("text"),
		ContentDescription: c.String("desc"),
		ResourceID:         c.String("id"),
	}
	if crit.IsEmpty() {
		return fmt.Errorf("one of --text, --desc or --id is required")
	}

	dev, _, err := deviceFromContext(c)
	if err != nil {
		return err
	}

	m, err := resolver.Find(c.Context, dev, crit)
	if err != nil {
		return err
	}
	w := out(c)
	el := m.Element()
	fmt.Fprintf(w, "Matched index %d (score %d): %s\n", el.Index, el.Score, m.Node.Label())

	x, y, err := m.Center()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Center: (%d, %d)\n", x, y)

	if c.Bool("tap") {
		if err := dev.Tap(c.Context, x, y); err != nil {
			return err
		}
		fmt.Fprintf(w, "Tapped at (%d, %d)\n", x, y)
	}
	return nil
}

func runDeviceInfo(c *cli.Context) error {
	dev, _, err := deviceFromContext(c)
	if err != nil {
		return err
	}
	state, err := dev.DeviceState(c.Context)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out(c), string(data))
	return nil
}

func runPing(c *cli.Context) error {
	dev, cfg, err := deviceFromContext(c)
	if err != nil {
		return err
	}
	if err := dev.Ping(c.Context); err != nil {
		return fmt.Errorf("%s unreachable: %w", cfg.BaseURL(), err)
	}
	fmt.Fprintf(out(c), "%s is reachable\n", cfg.BaseURL())
	return nil
}
