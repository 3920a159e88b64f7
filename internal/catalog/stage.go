package catalog

import (
	"context"
	"fmt"

	"github.com/retroenv/kdlmap/internal/bank"
	"github.com/retroenv/kdlmap/internal/codec"
	"github.com/retroenv/kdlmap/internal/profile"
	"github.com/retroenv/kdlmap/internal/rom"
	"github.com/retroenv/kdlmap/internal/vram"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

const screenHeaderSize = 2

// Metatile is a 4 byte metatile group in quadrant order.
type Metatile [Quadrants]byte

// StageSet is the tile set and metatile definition of a stage.
type StageSet struct {
	Stage     int
	Name      string
	TileData  bank.Address
	Tiles     *vram.Window
	Metatiles []Metatile
}

// Metatile returns the 4 raw quadrant tile indices of a metatile id.
func (s *StageSet) Metatile(id byte) ([Quadrants]byte, error) {
	if int(id) >= len(s.Metatiles) {
		return [Quadrants]byte{}, fmt.Errorf("metatile %#02x of %d: %w", id, len(s.Metatiles), rom.ErrOutOfRange)
	}
	return s.Metatiles[id], nil
}

// Screen is a flat map screen of a stage layout game.
type Screen struct {
	Index  int // catalog index
	Number int // screen number inside the stage
	Header bank.Address
	Set    *StageSet
	Width  int // in metatiles
	Height int // in metatiles
	Blocks []byte
}

func (s *Screen) entry() {}

// Address returns the address of the screen header.
func (s *Screen) Address() bank.Address {
	return s.Header
}

func (s *Screen) String() string {
	return fmt.Sprintf("%s screen %d", s.Set.Name, s.Number)
}

type stageParser struct {
	*Parser
	prof *profile.Profile
}

func (s *stageParser) parse(ctx context.Context, img *rom.Image) ([]Entry, Stats, error) {
	stages := make([][]*Screen, len(s.prof.Stages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, stage := range s.prof.Stages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			screens, err := s.parseStage(img, i, stage)
			if err != nil {
				return fmt.Errorf("parsing stage %d '%s': %w", i, stage.Name, err)
			}
			stages[i] = screens
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{TileSets: len(stages)}
	var entries []Entry
	for _, screens := range stages {
		if len(screens) > 0 {
			set := screens[0].Set
			stats.DecompressedBytes += set.Tiles.Loaded + Quadrants*len(set.Metatiles)
		}
		for _, screen := range screens {
			screen.Index = len(entries)
			stats.DecompressedBytes += len(screen.Blocks)
			entries = append(entries, screen)

			s.logger.Debug("Parsed screen",
				log.Int("index", screen.Index),
				log.String("stage", screen.Set.Name),
				log.Stringer("header", screen.Header),
				log.Int("width", screen.Width),
				log.Int("height", screen.Height))
		}
	}
	return entries, stats, nil
}

func (s *stageParser) tablePointer(img *rom.Image, table bank.Address, stage int) (bank.Address, error) {
	ptr, err := img.Pointer(table.Linear() + stage*pointerSize)
	if err != nil {
		return bank.Address{}, fmt.Errorf("reading table %s entry %d: %w", table, stage, err)
	}
	return ptr, nil
}

func (s *stageParser) parseStage(img *rom.Image, index int, stage profile.Stage) ([]*Screen, error) {
	tilePtr, err := s.tablePointer(img, s.prof.TileTable, index)
	if err != nil {
		return nil, err
	}
	metatilePtr, err := s.tablePointer(img, s.prof.MetatileTable, index)
	if err != nil {
		return nil, err
	}
	mapPtr, err := s.tablePointer(img, s.prof.MapTable, index)
	if err != nil {
		return nil, err
	}

	tiles, err := s.composeTiles(img, tilePtr)
	if err != nil {
		return nil, err
	}

	definitions, err := codec.Decompress(img.Data(), metatilePtr.Linear())
	if err != nil {
		return nil, fmt.Errorf("decompressing metatiles at %s: %w", metatilePtr, err)
	}

	set := &StageSet{
		Stage:     index,
		Name:      stage.Name,
		TileData:  tilePtr,
		Tiles:     tiles,
		Metatiles: groupMetatiles(definitions.Data),
	}

	screens := make([]*Screen, stage.Screens)
	for i := range screens {
		ptr, err := img.Pointer(mapPtr.Linear() + i*pointerSize)
		if err != nil {
			return nil, fmt.Errorf("reading screen %d pointer: %w", i, err)
		}
		screen, err := readScreen(img, set, i, ptr)
		if err != nil {
			return nil, err
		}
		screens[i] = screen
	}
	return screens, nil
}

// groupMetatiles splits metatile definitions into 4 byte groups. Trailing
// bytes that do not form a complete group are not part of any metatile.
func groupMetatiles(data []byte) []Metatile {
	metatiles := make([]Metatile, len(data)/Quadrants)
	for i := range metatiles {
		copy(metatiles[i][:], data[i*Quadrants:])
	}
	return metatiles
}

func readScreen(img *rom.Image, set *StageSet, number int, addr bank.Address) (*Screen, error) {
	pos := addr.Linear()
	b, err := img.Bytes(pos, screenHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("reading screen %d header at %s: %w", number, addr, err)
	}
	width, height := int(b[0]), int(b[1])

	result, err := codec.Decompress(img.Data(), pos+screenHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("decompressing screen %d at %s: %w", number, addr, err)
	}
	if len(result.Data) < width*height {
		return nil, fmt.Errorf("screen %d at %s has %d of %dx%d blocks: %w",
			number, addr, len(result.Data), width, height, rom.ErrOutOfRange)
	}

	return &Screen{
		Number: number,
		Header: addr,
		Set:    set,
		Width:  width,
		Height: height,
		Blocks: result.Data[:width*height],
	}, nil
}
