// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings. Debug wins over
// quiet. While the terminal display is active only warnings and errors are
// logged so that messages do not scroll the rendered frame.
func CreateLogger(opts options.Program) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case opts.Debug:
		cfg.Level = log.DebugLevel
	case opts.Quiet:
		cfg.Level = log.ErrorLevel
	case Interactive(opts):
		cfg.Level = log.WarnLevel
	}
	return log.NewWithConfig(cfg)
}

// Interactive returns whether the options run a program on the terminal
// display.
func Interactive(opts options.Program) bool {
	return opts.Input != "" && !opts.Headless && !opts.Disasm
}
