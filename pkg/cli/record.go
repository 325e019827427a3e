package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/droidreplay/pkg/recorder"
)

var recordCommand = &cli.Command{
	Name:  "record",
	Usage: "Record interactions into an action log through the REC shell",
	Description: `Start an interactive recording session. The action log is truncated at
start; every replayable command (idx, long, txt, clear, key, sleep, home, back)
appends one line. Type 'help' at the REC> prompt for commands.

Examples:
  droidreplay --host 192.168.1.20 record
  droidreplay --host 192.168.1.20 record --log checkout.txt`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "log",
			Aliases: []string{"o"},
			Usage:   "Action log path (default: actionLog from config)",
		},
	},
	Action: runRecord,
}

func runRecord(c *cli.Context) error {
	dev, cfg, err := deviceFromContext(c)
	if err != nil {
		return err
	}

	logPath := cfg.ActionLog
	if c.IsSet("log") {
		logPath = c.String("log")
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	w := out(c)
	session, err := recorder.Start(ctx, dev, recorder.Options{LogPath: logPath, Out: w})
	if err != nil {
		return err
	}
	defer session.Close()

	in := c.App.Reader
	if in == nil {
		in = os.Stdin
	}
	if err := recorder.NewShell(session, in).Run(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "Saved action log to %s\n", logPath)
	fmt.Fprintf(w, "Compile it with: droidreplay compile -o routine.yaml --session %s %s\n", session.ID, logPath)
	return nil
}
