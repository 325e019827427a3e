package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/droidreplay/pkg/core"
	"github.com/devicelab-dev/droidreplay/pkg/executor"
	"github.com/devicelab-dev/droidreplay/pkg/logger"
	"github.com/devicelab-dev/droidreplay/pkg/report"
	"github.com/devicelab-dev/droidreplay/pkg/routine"
	"github.com/devicelab-dev/droidreplay/pkg/validator"
)

var replayCommand = &cli.Command{
	Name:      "replay",
	Usage:     "Replay a compiled routine on the device",
	ArgsUsage: "<routine.yaml>",
	Description: `Run every step of a routine. Taps re-resolve their element in the live
tree; a step that cannot act is skipped and replay continues. The device from
the routine header is used when no host is configured.

Examples:
  droidreplay --host 192.168.1.20 replay login.yaml
  droidreplay replay --report result.json login.yaml`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "report",
			Usage: "Write the run result as JSON to this path",
		},
	},
	Action: runReplay,
}

// replaySleeper paces replay; tests replace it.
var replaySleeper executor.Sleeper = executor.Sleep

func runReplay(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one routine file is required")
	}

	rt, err := routine.ParseFile(c.Args().First())
	if err != nil {
		return err
	}
	// Unsound steps are skipped at run time; flag them up front.
	for _, problem := range validator.Routine(rt) {
		logger.Warn("cli").Err(problem).Msg("routine check")
	}

	cfg := *configFrom(c)
	if cfg.Target.Host == "" && rt.Header.Target.Host != "" {
		cfg.Target.Host = rt.Header.Target.Host
		if rt.Header.Target.Port != 0 && !c.IsSet("port") {
			cfg.Target.Port = rt.Header.Target.Port
		}
		logger.Info("cli").Str("host", cfg.Target.Host).Msg("using target from routine header")
	}
	dev, err := newDevice(&cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	w := out(c)
	total := len(rt.Steps)
	fmt.Fprintf(w, "Replaying %s (%d steps) on %s\n", rt.DisplayName(), total, cfg.BaseURL())

	runner := executor.New(dev, executor.RunnerConfig{
		OnStepComplete: func(idx int, sr core.StepResult) {
			report.PrintStep(w, total, sr)
		},
	}, executor.WithSleeper(replaySleeper))

	result := runner.Run(ctx, rt)
	report.PrintSummary(w, result)

	if path := c.String("report"); path != "" {
		if err := report.WriteJSON(path, result); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(w, "Report: %s\n", path)
	}
	return nil
}
