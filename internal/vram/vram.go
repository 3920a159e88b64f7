// Package vram simulates the Game Boy tile memory a level's tile set is loaded into.
package vram

import (
	"fmt"
	"slices"

	"github.com/retroenv/kdlmap/internal/codec"
	"github.com/retroenv/kdlmap/internal/rom"
)

const (
	// Size is the size of the simulated tile memory window.
	Size = 0x1800
	// TileSize is the size of a 2bpp 8x8 tile.
	TileSize = 16
	// Tiles is the number of tiles the window holds.
	Tiles = Size / TileSize

	loadAnchor = 0x9630
)

// Mode is the tile addressing mode the window is based on.
type Mode uint8

// Tile addressing modes, named after the memory window tile indices are relative to.
const (
	Mode8000 Mode = iota
	Mode8800
)

// Base returns the VRAM address the window starts at.
func (m Mode) Base() uint16 {
	if m == Mode8800 {
		return 0x8800
	}
	return 0x8000
}

func (m Mode) String() string {
	return fmt.Sprintf("$%04X", m.Base())
}

// ModeForStart returns the addressing mode the game uses for tile data
// loaded at the given VRAM address.
func ModeForStart(start uint16) Mode {
	if start < 0x8800 {
		return Mode8000
	}
	return Mode8800
}

// fixedTiles are always shown in the last three slots of the signed tile
// range, independent of the cartridge data.
var fixedTiles = []struct {
	slot int
	data [TileSize]byte
}{
	{0x7D + 0x80, [TileSize]byte{0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00}},
	{0x7E + 0x80, [TileSize]byte{0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF}},
	{0x7F + 0x80, [TileSize]byte{}},
}

// Window is a composed tile memory window.
type Window struct {
	Mode    Mode
	Start   uint16 // VRAM address the decompressed tiles were loaded to
	Loaded  int    // number of decompressed tile bytes
	Clipped int    // decompressed bytes that did not fit into the window

	data []byte
}

// Compose reads the load control byte at pos, decompresses the tile data
// following it and places it into a window the way the game loads it into VRAM.
func Compose(src []byte, pos int) (*Window, error) {
	if pos < 0 || pos >= len(src) {
		return nil, fmt.Errorf("reading vram control byte at %#x: %w", pos, rom.ErrOutOfRange)
	}
	control := src[pos]
	start := uint16(loadAnchor - int(control)<<4)
	mode := ModeForStart(start)

	result, err := codec.Decompress(src, pos+1)
	if err != nil {
		return nil, fmt.Errorf("decompressing tiles: %w", err)
	}

	padded, clipped := place(result.Data, int(start-mode.Base()))
	return &Window{
		Mode:    mode,
		Start:   start,
		Loaded:  len(result.Data),
		Clipped: clipped,
		data:    overlayFixedTiles(padded),
	}, nil
}

// place returns a zero filled window with data copied to offset.
func place(data []byte, offset int) ([]byte, int) {
	window := make([]byte, Size)
	n := copy(window[offset:], data)
	return window, len(data) - n
}

func overlayFixedTiles(window []byte) []byte {
	out := slices.Clone(window)
	for _, tile := range fixedTiles {
		copy(out[tile.slot*TileSize:], tile.data[:])
	}
	return out
}

// Bytes returns the window content. The returned slice must be treated as read-only.
func (w *Window) Bytes() []byte {
	return w.data
}

// Tile returns the 16 bytes of the tile in the given slot.
func (w *Window) Tile(slot int) ([]byte, error) {
	if slot < 0 || slot >= Tiles {
		return nil, fmt.Errorf("tile slot %#x: %w", slot, rom.ErrOutOfRange)
	}
	offset := slot * TileSize
	return w.data[offset : offset+TileSize : offset+TileSize], nil
}
