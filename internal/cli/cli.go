// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/kdlmap/internal/config"
	"github.com/retroenv/kdlmap/internal/options"
	"github.com/retroenv/kdlmap/internal/profile"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if err := config.Normalize(&opts); err != nil {
		return opts, err
	}

	opts.Input = args[0]
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: kdlmap [options] <rom file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after rom file, please pass the rom file as last argument", arg),
			}
		}
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	games := strings.Join(profile.Names(), "/")
	flags.StringVar(&opts.Output, "o", "", "name of the output .png file, defaults to the rom name with the level index")
	flags.StringVar(&opts.Game, "g", "", "game profile ("+games+"), detected from the cartridge title if not given")
	flags.IntVar(&opts.Level, "l", 0, "index of the level to render")
	flags.BoolVar(&opts.All, "all", false, "render all levels into numbered .png files")
	flags.BoolVar(&opts.List, "list", false, "list all levels of the cartridge")
	flags.IntVar(&opts.Scale, "scale", config.DefaultScale, "integer scale factor of the rendered image")
	flags.IntVar(&opts.Workers, "workers", 0, "parallel workers for level parsing, defaults to the number of CPUs")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
