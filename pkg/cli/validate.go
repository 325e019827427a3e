package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/droidreplay/pkg/validator"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Check routine files without touching a device",
	ArgsUsage: "<routine-or-dir>",
	Description: `Parse a routine file, or every .yaml/.yml file under a directory,
and report steps that cannot replay as written.

Examples:
  droidreplay validate login.yaml
  droidreplay validate routines/`,
	Action: runValidate,
}

func runValidate(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one routine file or directory is required")
	}

	result := validator.Validate(c.Args().First())
	w := out(c)
	for _, err := range result.Errors {
		fmt.Fprintf(w, "  %v\n", err)
	}
	if !result.IsValid() {
		return fmt.Errorf("%d problem(s) found", len(result.Errors))
	}

	steps := 0
	for _, rt := range result.Routines {
		steps += len(rt.Steps)
	}
	fmt.Fprintf(w, "%d routine(s) OK, %d steps\n", len(result.Files), steps)
	return nil
}
