// Package config handles application configuration and setup
package config

import (
	"fmt"
	"strings"

	"github.com/retroenv/kdlmap/internal/options"
	"github.com/retroenv/kdlmap/internal/profile"
	"github.com/retroenv/retrogolib/log"
)

// Limits of the numeric options.
const (
	DefaultScale = 1
	MaxScale     = 8
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// Normalize validates the program options and fills in defaults.
func Normalize(opts *options.Program) error {
	opts.Game = strings.ToLower(strings.TrimSpace(opts.Game))
	if opts.Game != "" {
		if _, err := profile.FromString(opts.Game); err != nil {
			return fmt.Errorf("%w. Valid options: %s", err, strings.Join(profile.Names(), ", "))
		}
	}

	if opts.Scale == 0 {
		opts.Scale = DefaultScale
	}
	if opts.Scale < 1 || opts.Scale > MaxScale {
		return fmt.Errorf("scale %d out of range 1..%d", opts.Scale, MaxScale)
	}

	if opts.Level < 0 {
		return fmt.Errorf("invalid level index %d", opts.Level)
	}
	if opts.Workers < 0 {
		return fmt.Errorf("invalid worker count %d", opts.Workers)
	}
	if opts.All && opts.List {
		return fmt.Errorf("options -all and -list are exclusive")
	}
	return nil
}
