package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/droidreplay/pkg/compiler"
	"github.com/devicelab-dev/droidreplay/pkg/routine"
)

var compileCommand = &cli.Command{
	Name:      "compile",
	Usage:     "Compile an action log into a replayable routine",
	ArgsUsage: "<action-log>",
	Description: `Translate an action log into a routine file. Malformed lines are skipped
with a warning. With --watch the routine is rebuilt whenever the log changes.

Examples:
  droidreplay compile -o login.yaml action_wifi_log.txt
  droidreplay compile -o login.yaml --name login --watch action_wifi_log.txt`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Routine file to write (default: <log name>.yaml)",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Routine name stored in the header",
		},
		&cli.StringFlag{
			Name:  "session",
			Usage: "Recording session id stored in the header",
		},
		&cli.BoolFlag{
			Name:  "watch",
			Usage: "Recompile on every change to the log until interrupted",
		},
	},
	Action: runCompile,
}

func runCompile(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one action log is required (flags go before it)")
	}
	logPath := c.Args().First()
	outPath := c.String("output")
	if outPath == "" {
		outPath = defaultRoutinePath(logPath)
	}

	cfg := configFrom(c)
	opts := compiler.Options{
		Name:    c.String("name"),
		Session: c.String("session"),
	}
	if cfg.Target.Host != "" {
		opts.Target = routine.Target{Host: cfg.Target.Host, Port: cfg.Target.Port}
	}

	w := out(c)
	if c.Bool("watch") {
		ctx, cancel := signalContext(c.Context)
		defer cancel()
		fmt.Fprintf(w, "Watching %s (Ctrl+C to stop)\n", logPath)
		return compiler.Watch(ctx, logPath, outPath, opts, func(res *compiler.Result, err error) {
			if err != nil {
				fmt.Fprintf(w, "Compile failed: %v\n", err)
				return
			}
			printCompileResult(w, res, outPath)
		})
	}

	res, err := compiler.CompileToFile(logPath, outPath, opts)
	if err != nil {
		return err
	}
	printCompileResult(w, res, outPath)
	return nil
}

func printCompileResult(w io.Writer, res *compiler.Result, outPath string) {
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning: %v\n", warn)
	}
	fmt.Fprintf(w, "Compiled %d steps to %s", len(res.Routine.Steps), outPath)
	if n := len(res.Warnings); n > 0 {
		fmt.Fprintf(w, " (%d lines skipped)", n)
	}
	fmt.Fprintln(w)
}

// defaultRoutinePath swaps the log extension for .yaml.
func defaultRoutinePath(logPath string) string {
	return strings.TrimSuffix(logPath, filepath.Ext(logPath)) + ".yaml"
}
