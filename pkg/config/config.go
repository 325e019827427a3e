// Package config handles configuration for droidreplay.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/droidreplay/pkg/core"
	"github.com/devicelab-dev/droidreplay/pkg/droidrun"
)

// Defaults for fields left out of config.yaml.
const (
	DefaultRateLimit = 10.0
	DefaultActionLog = "action_wifi_log.txt"
)

// Config represents the workspace configuration (config.yaml).
type Config struct {
	Target   Target   `yaml:"target"`
	Timeouts Timeouts `yaml:"timeouts"`

	// RateLimit caps device requests per second; 0 disables throttling.
	RateLimit *float64 `yaml:"rateLimit"`

	ActionLog string `yaml:"actionLog"` // Recording output
	LogFile   string `yaml:"logFile"`   // Diagnostic log; "-" for none
}

// Target is the device control service.
type Target struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Token string `yaml:"token"`
}

// Timeouts bound each device call.
type Timeouts struct {
	Action time.Duration `yaml:"action"`
	Fetch  time.Duration `yaml:"fetch"`
	State  time.Duration `yaml:"state"`
	Ping   time.Duration `yaml:"ping"`
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("%s: %v", path, err))
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, use defaults
	return Default(), nil
}

func (c *Config) applyDefaults() {
	if c.Target.Port == 0 {
		c.Target.Port = droidrun.DefaultPort
	}
	if c.Timeouts.Action == 0 {
		c.Timeouts.Action = droidrun.DefaultActionTimeout
	}
	if c.Timeouts.Fetch == 0 {
		c.Timeouts.Fetch = droidrun.DefaultFetchTimeout
	}
	if c.Timeouts.State == 0 {
		c.Timeouts.State = droidrun.DefaultStateTimeout
	}
	if c.Timeouts.Ping == 0 {
		c.Timeouts.Ping = droidrun.DefaultPingTimeout
	}
	if c.RateLimit == nil {
		r := DefaultRateLimit
		c.RateLimit = &r
	}
	if c.ActionLog == "" {
		c.ActionLog = DefaultActionLog
	}
}

// Validate checks field ranges. It does not require a host; commands that
// talk to the device call ValidateTarget.
func (c *Config) Validate() error {
	if c.Target.Port < 1 || c.Target.Port > 65535 {
		return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("target.port %d out of range", c.Target.Port))
	}
	for name, d := range map[string]time.Duration{
		"action": c.Timeouts.Action,
		"fetch":  c.Timeouts.Fetch,
		"state":  c.Timeouts.State,
		"ping":   c.Timeouts.Ping,
	} {
		if d < 0 {
			return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("timeouts.%s must not be negative", name))
		}
	}
	if c.RateLimit != nil && *c.RateLimit < 0 {
		return core.ErrInvalidConfig.WithMessage("rateLimit must not be negative")
	}
	return nil
}

// ValidateTarget is Validate plus a required host.
func (c *Config) ValidateTarget() error {
	if c.Target.Host == "" {
		return core.ErrInvalidConfig.WithMessage("device host is required (--host, DROIDRUN_HOST or target.host)")
	}
	return c.Validate()
}

// BaseURL returns the control service root.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Target.Host, c.Target.Port)
}

// ClientConfig builds the device client configuration.
func (c *Config) ClientConfig() droidrun.Config {
	rate := 0.0
	if c.RateLimit != nil {
		rate = *c.RateLimit
	}
	return droidrun.Config{
		Host:          c.Target.Host,
		Port:          c.Target.Port,
		Token:         c.Target.Token,
		ActionTimeout: c.Timeouts.Action,
		FetchTimeout:  c.Timeouts.Fetch,
		StateTimeout:  c.Timeouts.State,
		PingTimeout:   c.Timeouts.Ping,
		RateLimit:     rate,
	}
}
