// Package cli provides the command-line interface for droidreplay.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/droidreplay/pkg/config"
	"github.com/devicelab-dev/droidreplay/pkg/core"
	"github.com/devicelab-dev/droidreplay/pkg/droidrun"
	"github.com/devicelab-dev/droidreplay/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "host",
		Usage:   "Device control service host (phone IP on the LAN)",
		EnvVars: []string{"DROIDRUN_HOST"},
	},
	&cli.IntFlag{
		Name:    "port",
		Usage:   "Device control service port",
		Value:   droidrun.DefaultPort,
		EnvVars: []string{"DROIDRUN_PORT"},
	},
	&cli.StringFlag{
		Name:    "token",
		Usage:   "Bearer token for the control service",
		EnvVars: []string{"DROIDRUN_TOKEN"},
	},
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to config.yaml (default: ./config.yaml if present)",
		EnvVars: []string{"DROIDREPLAY_CONFIG"},
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Write JSON diagnostics to this file (default: <home>/logs/droidreplay.log, '-' to disable)",
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging to stderr",
		EnvVars: []string{"DROIDREPLAY_VERBOSE"},
	},
}

// NewApp builds the CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "droidreplay",
		Usage:   "Record and replay Android UI interactions over Wi-Fi",
		Version: Version,
		Description: `droidreplay talks to an on-device control service over HTTP. Record
interactions into an action log, compile the log into a routine, and replay
the routine later. Taps are re-resolved against the live screen on replay.

Examples:
  droidreplay --host 192.168.1.20 record
  droidreplay compile -o login.yaml --name login action_wifi_log.txt
  droidreplay --host 192.168.1.20 replay --report result.json login.yaml
  droidreplay --host 192.168.1.20 resolve --text OK --tap`,
		Flags: GlobalFlags,
		Before: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.App.Metadata == nil {
				c.App.Metadata = map[string]interface{}{}
			}
			c.App.Metadata[configKey] = cfg
			return initLogging(c, cfg)
		},
		After: func(c *cli.Context) error {
			logger.Close()
			return nil
		},
		Commands: []*cli.Command{
			recordCommand,
			compileCommand,
			replayCommand,
			validateCommand,
			dumpCommand,
			resolveCommand,
			deviceInfoCommand,
			pingCommand,
			mcpCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

const configKey = "config"

// configFrom returns the configuration loaded before the command ran.
func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("host") {
		cfg.Target.Host = c.String("host")
	}
	if c.IsSet("port") {
		cfg.Target.Port = c.Int("port")
	}
	if c.IsSet("token") {
		cfg.Target.Token = c.String("token")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	cfg.ResolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initLogging(c *cli.Context, cfg *config.Config) error {
	return logger.Init(logger.Options{
		Path:    cfg.LogFile,
		Console: c.Bool("verbose"),
		Verbose: c.Bool("verbose"),
	})
}

// newDevice builds the device client. It is a variable so tests can swap in
// a fake.
var newDevice = func(cfg *config.Config) (core.Device, error) {
	if err := cfg.ValidateTarget(); err != nil {
		return nil, err
	}
	return droidrun.NewClient(cfg.ClientConfig()), nil
}

// deviceFromContext connects using the loaded configuration.
func deviceFromContext(c *cli.Context) (core.Device, *config.Config, error) {
	cfg := configFrom(c)
	dev, err := newDevice(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("cli").Str("target", cfg.BaseURL()).Msg("device configured")
	return dev, cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func out(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}
