// Package pipeline orchestrates the level rendering workflow stages.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"runtime"

	"github.com/retroenv/kdlmap/internal/catalog"
	"github.com/retroenv/kdlmap/internal/detector"
	"github.com/retroenv/kdlmap/internal/fileprocessor"
	"github.com/retroenv/kdlmap/internal/loader"
	"github.com/retroenv/kdlmap/internal/mapasm"
	"github.com/retroenv/kdlmap/internal/options"
	"github.com/retroenv/kdlmap/internal/profile"
	"github.com/retroenv/kdlmap/internal/render"
	"github.com/retroenv/kdlmap/internal/rom"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

// Pipeline orchestrates the complete rendering workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// New creates a new rendering pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute runs the complete pipeline for the input file of the options.
// Listings are written to writer.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, writer io.Writer) error {
	img, err := p.loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading cartridge: %w", err)
	}
	return p.ExecuteWithImage(ctx, img, opts, writer)
}

// ExecuteWithImage runs the pipeline with a pre-loaded cartridge image.
func (p *Pipeline) ExecuteWithImage(ctx context.Context, img *rom.Image, opts options.Program, writer io.Writer) error {
	prof, err := p.detector.Detect(opts, img)
	if err != nil {
		return fmt.Errorf("detecting game: %w", err)
	}
	return p.ExecuteWithProfile(ctx, img, prof, opts, writer)
}

// ExecuteWithProfile runs the pipeline for an image of a known game profile.
func (p *Pipeline) ExecuteWithProfile(ctx context.Context, img *rom.Image, prof *profile.Profile,
	opts options.Program, writer io.Writer) error {

	if !opts.Quiet {
		p.logger.Info("Processing Game Boy ROM",
			log.String("file", opts.Input),
			log.String("game", prof.Title),
			log.Int("banks", img.Banks()),
		)
	}

	cat, err := catalog.New(p.logger, opts.Workers).Parse(ctx, img, prof)
	if err != nil {
		return fmt.Errorf("parsing catalog: %w", err)
	}

	switch {
	case opts.List:
		return List(writer, cat)
	case opts.All:
		return p.renderAll(ctx, cat, opts)
	default:
		return p.renderLevel(cat, opts, opts.Level)
	}
}

// Render assembles and draws the catalog entry with the given index.
func Render(cat *catalog.Catalog, index int) (*image.Paletted, error) {
	entry, err := cat.Entry(index)
	if err != nil {
		return nil, err
	}

	layout, err := mapasm.Assemble(entry)
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", entry, err)
	}

	img, err := render.Layout(layout)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", entry, err)
	}
	return img, nil
}

func (p *Pipeline) renderLevel(cat *catalog.Catalog, opts options.Program, index int) error {
	img, err := Render(cat, index)
	if err != nil {
		return err
	}

	name := fileprocessor.OutputFilename(opts, index)
	if err := fileprocessor.WriteImage(name, img, opts.Scale); err != nil {
		return fmt.Errorf("level %d: %w", index, err)
	}

	p.logger.Debug("Wrote level image",
		log.Int("level", index),
		log.String("file", name),
		log.Int("width", img.Bounds().Dx()),
		log.Int("height", img.Bounds().Dy()))
	return nil
}

func (p *Pipeline) renderAll(ctx context.Context, cat *catalog.Catalog, opts options.Program) error {
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range cat.Len() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return p.renderLevel(cat, opts, i)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("rendering levels: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("rendering levels: %w", err)
	}

	if !opts.Quiet {
		p.logger.Info("Rendered levels", log.Int("count", cat.Len()))
	}
	return nil
}
