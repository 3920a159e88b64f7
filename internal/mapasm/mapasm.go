// Package mapasm reconstructs level maps as positioned tile placements.
package mapasm

import (
	"fmt"

	"github.com/retroenv/kdlmap/internal/catalog"
	"github.com/retroenv/kdlmap/internal/vram"
)

const (
	// TilePixels is the width and height of a tile.
	TilePixels = 8

	chunkTiles       = 32 // tiles per chunk side, 16 metatiles
	chunkPixels      = chunkTiles * TilePixels
	metatileTiles    = 2
	metatilePixels   = metatileTiles * TilePixels
	signedTileOffset = 0x80
)

// Placement is a tile positioned on the map grid.
type Placement struct {
	Tile   []byte // 16 byte 2bpp tile data
	Slot   int    // VRAM window tile slot
	Column int
	Row    int
}

// Layout is the reconstructed map of a catalog entry.
type Layout struct {
	Width      int // in pixels
	Height     int // in pixels
	Placements []Placement
}

// Columns returns the width in tiles.
func (l *Layout) Columns() int {
	return l.Width / TilePixels
}

// Rows returns the height in tiles.
func (l *Layout) Rows() int {
	return l.Height / TilePixels
}

// TileSlot maps a raw tile index of a level to its slot in the VRAM window.
// Indices up to 0x7F address the upper half of the window, higher indices
// wrap around to its start.
func TileSlot(t byte) int {
	if t > 0x7F {
		return int(t) % signedTileOffset
	}
	return int(t) + signedTileOffset
}

// quadrantSource returns the quadrant tile indices of a metatile id.
type quadrantSource interface {
	Metatile(id byte) ([catalog.Quadrants]byte, error)
}

// Assemble returns the tile placements of a catalog entry.
func Assemble(entry catalog.Entry) (*Layout, error) {
	switch e := entry.(type) {
	case *catalog.Level:
		return assembleSliced(e)
	case *catalog.Screen:
		return assembleFlat(e)
	default:
		return nil, fmt.Errorf("unsupported entry type %T", entry)
	}
}

type assembler struct {
	tiles      *vram.Window
	metatiles  quadrantSource
	placements []Placement
	maxRow     int
}

func newAssembler(tiles *vram.Window, metatiles quadrantSource, blocks int) *assembler {
	return &assembler{
		tiles:      tiles,
		metatiles:  metatiles,
		placements: make([]Placement, 0, blocks*catalog.Quadrants),
	}
}

// place puts the 2x2 quadrant tiles of a metatile with its top left corner at column, row.
func (a *assembler) place(index int, id byte, column, row int) error {
	quadrants, err := a.metatiles.Metatile(id)
	if err != nil {
		return fmt.Errorf("block %d: %w", index, err)
	}

	for i, raw := range quadrants {
		slot := TileSlot(raw)
		tile, err := a.tiles.Tile(slot)
		if err != nil {
			return fmt.Errorf("block %d quadrant %d: %w", index, i, err)
		}

		p := Placement{
			Tile:   tile,
			Slot:   slot,
			Column: column + i%metatileTiles,
			Row:    row + i/metatileTiles,
		}
		a.placements = append(a.placements, p)
		a.maxRow = max(a.maxRow, p.Row)
	}
	return nil
}

// assembleSliced walks the block stream in 16x16 metatile chunks. Chunks
// are placed left to right until the level's vertical slice count is reached,
// then continue with the next row of chunks.
func assembleSliced(level *catalog.Level) (*Layout, error) {
	if level.Assets == nil {
		return nil, fmt.Errorf("%s has no assets", level)
	}

	a := newAssembler(level.Assets.Tiles, level.Assets, len(level.Blocks))

	var x, y int
	var chunkX, chunkY int
	var slice int

	for i, id := range level.Blocks {
		if err := a.place(i, id, x, y); err != nil {
			return nil, fmt.Errorf("%s: %w", level, err)
		}
		x += metatileTiles

		if x%chunkTiles == 0 {
			// next metatile row inside the chunk
			y += metatileTiles
			x = chunkX
		}
		if x%chunkTiles == 0 && y%chunkTiles == 0 {
			// chunk complete, continue with the chunk to the right
			y = chunkY
			x += chunkTiles
			chunkX = x
			slice++
		}
		if slice >= level.VerticalSlices {
			// row of chunks complete
			y += chunkTiles
			chunkY = y
			x = 0
			chunkX = 0
			slice = 0
		}
	}

	height := level.HorizontalSlices * chunkPixels
	if len(a.placements) > 0 {
		height = max(height, (a.maxRow+1)*TilePixels)
	}

	return &Layout{
		Width:      level.VerticalSlices * chunkPixels,
		Height:     height,
		Placements: a.placements,
	}, nil
}

// assembleFlat lays out the screen blocks row by row.
func assembleFlat(screen *catalog.Screen) (*Layout, error) {
	a := newAssembler(screen.Set.Tiles, screen.Set, len(screen.Blocks))

	for i, id := range screen.Blocks {
		column := (i % screen.Width) * metatileTiles
		row := (i / screen.Width) * metatileTiles
		if err := a.place(i, id, column, row); err != nil {
			return nil, fmt.Errorf("%s: %w", screen, err)
		}
	}

	return &Layout{
		Width:      screen.Width * metatilePixels,
		Height:     screen.Height * metatilePixels,
		Placements: a.placements,
	}, nil
}
