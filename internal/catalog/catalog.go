// Package catalog parses the level descriptors of a cartridge image.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/retroenv/kdlmap/internal/bank"
	"github.com/retroenv/kdlmap/internal/profile"
	"github.com/retroenv/kdlmap/internal/rom"
	"github.com/retroenv/kdlmap/internal/vram"
	"github.com/retroenv/retrogolib/log"
)

// ErrUnknownLevel is returned when a requested level index does not exist.
var ErrUnknownLevel = errors.New("unknown level index")

// Entry is a renderable map of the catalog, either a *Level or a *Screen.
type Entry interface {
	fmt.Stringer

	// Address returns the address of the entry header.
	Address() bank.Address

	entry()
}

// Catalog holds all parsed level descriptors of a cartridge image.
// It is immutable after parsing.
type Catalog struct {
	Profile *profile.Profile

	entries []Entry
	stats   Stats
}

// Stats summarizes a parsed catalog.
type Stats struct {
	Entries           int
	TileSets          int // distinct simulated VRAM windows
	DecompressedBytes int
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entry returns the entry with the given index.
func (c *Catalog) Entry(index int) (Entry, error) {
	if index < 0 || index >= len(c.entries) {
		return nil, fmt.Errorf("level %d of %d: %w", index, len(c.entries), ErrUnknownLevel)
	}
	return c.entries[index], nil
}

// Entries returns all entries in table order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Stats returns a summary of the catalog.
func (c *Catalog) Stats() Stats {
	return c.stats
}

// layoutParser is the parsing strategy of a profile layout.
type layoutParser interface {
	parse(ctx context.Context, img *rom.Image) ([]Entry, Stats, error)
}

// Parser parses catalogs.
type Parser struct {
	logger  *log.Logger
	workers int
}

// New returns a catalog parser that decodes independent assets using up to
// workers goroutines. A value below 1 uses one worker per CPU.
func New(logger *log.Logger, workers int) *Parser {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Parser{
		logger:  logger,
		workers: workers,
	}
}

// Parse parses all level descriptors of the image as described by the profile.
func (p *Parser) Parse(ctx context.Context, img *rom.Image, prof *profile.Profile) (*Catalog, error) {
	if img == nil || img.Len() == 0 {
		return nil, rom.ErrEmptyInput
	}

	var lp layoutParser
	switch prof.Layout {
	case profile.LayoutSliced:
		lp = &slicedParser{Parser: p, prof: prof}
	case profile.LayoutStage:
		lp = &stageParser{Parser: p, prof: prof}
	default:
		return nil, fmt.Errorf("unsupported layout '%s'", prof.Layout)
	}

	entries, stats, err := lp.parse(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("parsing %s levels: %w", prof.Name, err)
	}
	stats.Entries = len(entries)

	p.logger.Debug("Parsed level catalog",
		log.String("game", prof.Title),
		log.Int("entries", stats.Entries),
		log.Int("tile_sets", stats.TileSets),
		log.Int("decompressed_bytes", stats.DecompressedBytes))

	return &Catalog{
		Profile: prof,
		entries: entries,
		stats:   stats,
	}, nil
}

// Parse parses the catalog of img using a default parser.
func Parse(ctx context.Context, logger *log.Logger, img *rom.Image, prof *profile.Profile) (*Catalog, error) {
	return New(logger, 0).Parse(ctx, img, prof)
}

func (p *Parser) composeTiles(img *rom.Image, addr bank.Address) (*vram.Window, error) {
	window, err := vram.Compose(img.Data(), addr.Linear())
	if err != nil {
		return nil, fmt.Errorf("composing tiles at %s: %w", addr, err)
	}
	if window.Clipped > 0 {
		p.logger.Warn("Tile data exceeds VRAM window",
			log.Stringer("address", addr),
			log.Int("clipped_bytes", window.Clipped))
	}
	return window, nil
}
