package config

import (
	"os"
	"path/filepath"
	"sync"
)

const (
	envHome = "DROIDREPLAY_HOME"

	// LogFileDisabled as logFile turns the diagnostic log off.
	LogFileDisabled = "-"
)

var (
	homeOnce sync.Once
	homeDir  string
)

// GetHome returns the droidreplay home directory: $DROIDREPLAY_HOME, else the
// parent of a <home>/bin install, else the working directory.
func GetHome() string {
	homeOnce.Do(func() {
		homeDir = resolveHome()
	})
	return homeDir
}

// GetLogDir returns <home>/logs, where the diagnostic log goes by default.
func GetLogDir() string {
	return filepath.Join(GetHome(), "logs")
}

// GetRoutinesDir returns <home>/routines. Relative actionLog paths from
// config.yaml land here, and compiled routines sit next to their log.
func GetRoutinesDir() string {
	return filepath.Join(GetHome(), "routines")
}

// DefaultLogFile is the diagnostic log used when logFile is unset.
func DefaultLogFile() string {
	return filepath.Join(GetLogDir(), "droidreplay.log")
}

// ResolvePaths anchors file settings to the home directory. An empty LogFile
// becomes DefaultLogFile and LogFileDisabled becomes empty. A relative
// ActionLog moves under GetRoutinesDir. Absolute paths are kept.
func (c *Config) ResolvePaths() {
	switch c.LogFile {
	case "":
		c.LogFile = DefaultLogFile()
	case LogFileDisabled:
		c.LogFile = ""
	}
	if c.ActionLog != "" && !filepath.IsAbs(c.ActionLog) {
		c.ActionLog = filepath.Join(GetRoutinesDir(), c.ActionLog)
	}
}

func resolveHome() string {
	if env := os.Getenv(envHome); env != "" {
		return env
	}

	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		if dir := filepath.Dir(exe); filepath.Base(dir) == "bin" {
			return filepath.Dir(dir)
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// ResetHome clears the cached home directory. Tests use it after changing
// DROIDREPLAY_HOME.
func ResetHome() {
	homeOnce = sync.Once{}
	homeDir = ""
}
