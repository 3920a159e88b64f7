// Package fileprocessor handles output file naming and writing
package fileprocessor

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/retroenv/kdlmap/internal/options"
	"github.com/retroenv/kdlmap/internal/render"
	"github.com/retroenv/retrogolib/log"
)

const imageExtension = ".png"

// GenerateOutputFilename generates the output filename for a level of the given input file
func GenerateOutputFilename(inputFile string, index int) string {
	ext := filepath.Ext(inputFile)
	return fmt.Sprintf("%s_%03d%s", inputFile[:len(inputFile)-len(ext)], index, imageExtension)
}

// OutputFilename returns the file to write the level with the given index to.
// An explicit output name is only used when a single level is rendered.
func OutputFilename(opts options.Program, index int) string {
	if opts.Output == "" || opts.All {
		return GenerateOutputFilename(opts.Input, index)
	}
	return opts.Output
}

// WriteImage scales the image and writes it as PNG file.
func WriteImage(name string, img image.Image, scale int) error {
	if err := render.SavePNG(name, render.Scale(img, scale)); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	return nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("kdlmap", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
