// Package main implements a raw stream decompressor for Kirby's Dream Land cartridges
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/retroenv/kdlmap/internal/bank"
	"github.com/retroenv/kdlmap/internal/codec"
	"github.com/retroenv/kdlmap/internal/loader"
	"github.com/retroenv/kdlmap/internal/vram"
	"github.com/retroenv/retrogolib/buildinfo"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type optionFlags struct {
	input  string
	output string
	bank   string
	offset string

	vram  bool
	trace bool
	quiet bool
}

func main() {
	options := readArguments()

	if !options.quiet {
		printBanner(options)
	}

	if err := decompressFile(options, os.Stdout); err != nil {
		fmt.Println(fmt.Errorf("decompressing failed: %w", err))
		os.Exit(1)
	}
}

func readArguments() optionFlags {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	options := optionFlags{}

	flags.StringVar(&options.bank, "bank", "0", "ROM bank of the compressed stream")
	flags.StringVar(&options.offset, "offset", "", "banked address of the compressed stream, for example 0x4000")
	flags.BoolVar(&options.vram, "vram", false, "treat the stream as tile data with a leading VRAM control byte")
	flags.BoolVar(&options.trace, "trace", false, "print every decoded command")
	flags.StringVar(&options.output, "o", "", "name of the output file for the raw bytes, hex dump printed on console if no name given")
	flags.BoolVar(&options.quiet, "q", false, "perform operations quietly")

	err := flags.Parse(os.Args[1:])
	args := flags.Args()

	if err != nil || len(args) == 0 || options.offset == "" {
		printBanner(options)
		fmt.Printf("usage: kdldecomp [options] -offset <address> <rom file>\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}
	options.input = args[0]

	return options
}

func printBanner(options optionFlags) {
	if !options.quiet {
		fmt.Println("[--------------------------------------------]")
		fmt.Println("[ kdldecomp - Kirby's Dream Land decompressor ]")
		fmt.Printf("[--------------------------------------------]\n\n")
		fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
	}
}

// parseAddress parses the bank and offset options into an address.
func parseAddress(bankValue, offsetValue string) (bank.Address, error) {
	b, err := strconv.ParseUint(bankValue, 0, 8)
	if err != nil {
		return bank.Address{}, fmt.Errorf("invalid bank '%s': %w", bankValue, err)
	}
	o, err := strconv.ParseUint(offsetValue, 0, 16)
	if err != nil {
		return bank.Address{}, fmt.Errorf("invalid offset '%s': %w", offsetValue, err)
	}
	return bank.Address{Bank: uint8(b), Offset: uint16(o)}, nil
}

func decompressFile(options optionFlags, stdout io.Writer) error {
	addr, err := parseAddress(options.bank, options.offset)
	if err != nil {
		return err
	}

	img, err := loader.New().Load(options.input)
	if err != nil {
		return err
	}

	data, err := decompress(img.Data(), addr, options, stdout)
	if err != nil {
		return fmt.Errorf("stream at %s: %w", addr, err)
	}

	if options.output == "" {
		_, err = io.WriteString(stdout, hex.Dump(data))
		return err
	}
	if err = os.WriteFile(options.output, data, 0o644); err != nil {
		return fmt.Errorf("writing file '%s': %w", options.output, err)
	}
	return nil
}

func decompress(src []byte, addr bank.Address, options optionFlags, stdout io.Writer) ([]byte, error) {
	if options.vram {
		window, err := vram.Compose(src, addr.Linear())
		if err != nil {
			return nil, err
		}
		if !options.quiet {
			fmt.Fprintf(stdout, "loaded %d bytes at $%04X, mode %s, clipped %d\n",
				window.Loaded, window.Start, window.Mode, window.Clipped)
		}
		return window.Bytes(), nil
	}

	var fn func(cmd codec.Command)
	if options.trace {
		fn = func(cmd codec.Command) {
			fmt.Fprintf(stdout, "%s  %s\n", bank.FromLinear(cmd.Position), cmd)
		}
	}

	result, err := codec.Trace(src, addr.Linear(), fn)
	if err != nil {
		return nil, err
	}
	if !options.quiet {
		fmt.Fprintf(stdout, "decompressed %d bytes, stream ends at %s\n",
			len(result.Data), bank.FromLinear(result.End))
	}
	return result.Data, nil
}
