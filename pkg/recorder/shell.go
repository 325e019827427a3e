package recorder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/devicelab-dev/droidreplay/pkg/core"
	"github.com/devicelab-dev/droidreplay/pkg/logger"
)

// Prompt is printed before each command.
const Prompt = "REC> "

// keyShortcuts are bare commands that send a named key.
var keyShortcuts = []string{"enter", "backspace", "tab", "escape", "up", "down", "left", "right"}

const helpText = `Commands:
  dump                 show the full tree (index source: full)
  fast                 show the fast tree (index source: fast)
  idx N                tap element N
  long N [ms]          long press element N (default 1000ms)
  txt MESSAGE          type text
  clear                clear the focused field
  key N|name           press a key code or name
  enter, backspace, tab, escape, up, down, left, right
  sleep SECONDS        record a pause
  home, back           system buttons
  swipe SX SY EX EY [ms]  swipe (not recorded)
  ping                 check the device
  help                 show this help
  exit, x, q           stop recording
`

// Shell reads commands line by line and runs them against a session.
type Shell struct {
	s  *Session
	in io.Reader
}

// NewShell creates a shell over s reading from in.
func NewShell(s *Session, in io.Reader) *Shell {
	return &Shell{s: s, in: in}
}

// Run processes commands until exit, end of input or ctx cancellation.
// Command failures are reported and the loop continues.
func (sh *Shell) Run(ctx context.Context) error {
	out := sh.s.out
	scanner := bufio.NewScanner(sh.in)
	fmt.Fprint(out, "Type 'help' for commands.\n")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(out, Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		stop, err := sh.Exec(ctx, scanner.Text())
		if err != nil {
			logger.Warn("recorder").Str("session", sh.s.ID).Str("code", codeOf(err)).Err(err).Msg("command failed")
			fmt.Fprintln(out, errorStyle.Render(errorText(err)))
		}
		if stop {
			return nil
		}
	}
}

// Exec runs one command line. It reports whether the shell should stop.
func (sh *Shell) Exec(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]
	s := sh.s

	switch cmd {
	case "exit", "x", "q":
		return true, nil
	case "help", "h", "?":
		fmt.Fprint(s.out, helpText)
		return false, nil
	case "dump":
		return false, s.Dump(ctx, SourceFull)
	case "fast":
		return false, s.Dump(ctx, SourceFast)
	case "idx":
		n, err := intArgs(args, 1, 1, "idx N")
		if err != nil {
			return false, err
		}
		return false, s.TapIndex(ctx, n[0])
	case "long":
		n, err := intArgs(args, 1, 2, "long N [ms]")
		if err != nil {
			return false, err
		}
		ms := 0
		if len(n) == 2 {
			ms = n[1]
		}
		return false, s.LongPressIndex(ctx, n[0], ms)
	case "txt":
		// Text keeps its case and inner spacing.
		text := strings.TrimSpace(line[len(fields[0]):])
		if text == "" {
			return false, usage("txt MESSAGE")
		}
		return false, s.Type(ctx, text)
	case "clear":
		return false, s.Clear(ctx)
	case "key":
		if len(args) != 1 {
			return false, usage("key N|name")
		}
		code, ok := core.KeyCode(args[0])
		if !ok {
			return false, fmt.Errorf("unknown key %q (known: %s)", args[0], strings.Join(core.KeyNames(), ", "))
		}
		return false, s.Key(ctx, code)
	case "sleep":
		if len(args) != 1 {
			return false, usage("sleep SECONDS")
		}
		secs, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return false, usage("sleep SECONDS")
		}
		return false, s.Sleep(ctx, secs)
	case "home":
		return false, s.Home(ctx)
	case "back":
		return false, s.Back(ctx)
	case "swipe":
		n, err := intArgs(args, 4, 5, "swipe SX SY EX EY [ms]")
		if err != nil {
			return false, err
		}
		ms := 500
		if len(n) == 5 {
			ms = n[4]
		}
		if err := s.Swipe(ctx, n[0], n[1], n[2], n[3], ms); err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "Swiped %d,%d -> %d,%d\n", n[0], n[1], n[2], n[3])
		return false, nil
	case "ping":
		if err := s.Ping(ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, "Device reachable.")
		return false, nil
	}

	for _, name := range keyShortcuts {
		if cmd == name {
			code, _ := core.KeyCode(name)
			return false, s.Key(ctx, code)
		}
	}
	return false, fmt.Errorf("unknown command %q, type 'help'", cmd)
}

func intArgs(args []string, lo, hi int, form string) ([]int, error) {
	if len(args) < lo || len(args) > hi {
		return nil, usage(form)
	}
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, usage(form)
		}
		out[i] = v
	}
	return out, nil
}

func usage(form string) error {
	return fmt.Errorf("usage: %s", form)
}

// errorText prefers the bare message of execution errors.
func errorText(err error) string {
	if e, ok := err.(*core.ExecutionError); ok && e.Cause == nil {
		return e.Message
	}
	return "Error: " + err.Error()
}
