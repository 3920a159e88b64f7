package vram

import (
	"bytes"
	"errors"
	"testing"

	"github.com/retroenv/kdlmap/internal/codec"
	"github.com/retroenv/kdlmap/internal/rom"
	"github.com/retroenv/retrogolib/assert"
)

// repeatStream returns a compressed stream of n repetitions of b, n being a multiple of 256.
func repeatStream(b byte, n int) []byte {
	var stream []byte
	for range n / 256 {
		stream = append(stream, 0xE4, 0xFF, b)
	}
	return append(stream, 0xFF)
}

func TestComposePlacement(t *testing.T) {
	tests := []struct {
		name    string
		control byte
		mode    Mode
		start   uint16
		offset  int
	}{
		{"no control offset", 0x00, Mode8800, 0x9630, 0xE30},
		{"signed area", 0x80, Mode8800, 0x8E30, 0x630},
		{"lowest 8800 start", 0xE3, Mode8800, 0x8800, 0x000},
		{"switch to 8000 mode", 0xE4, Mode8000, 0x87F0, 0x7F0},
		{"largest control byte", 0xFF, Mode8000, 0x8640, 0x640},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := []byte{0x55, tt.control, 0x01, 0xAA, 0xBB, 0xFF}

			w, err := Compose(src, 1)
			assert.NoError(t, err)
			assert.Equal(t, tt.mode, w.Mode)
			assert.Equal(t, tt.start, w.Start)
			assert.Equal(t, 2, w.Loaded)
			assert.Equal(t, 0, w.Clipped)

			data := w.Bytes()
			assert.Equal(t, Size, len(data))
			assert.Equal(t, byte(0xAA), data[tt.offset])
			assert.Equal(t, byte(0xBB), data[tt.offset+1])
			if tt.offset > 0 {
				assert.Equal(t, byte(0x00), data[tt.offset-1])
			}
			assert.Equal(t, byte(0x00), data[tt.offset+2])
		})
	}
}

func TestComposeFixedTiles(t *testing.T) {
	src := append([]byte{0xE3}, repeatStream(0x11, 0x1000)...)

	w, err := Compose(src, 0)
	assert.NoError(t, err)
	data := w.Bytes()

	assert.Equal(t, byte(0x11), data[0xFCF])
	assert.Equal(t, bytes.Repeat([]byte{0xFF, 0x00}, 8), data[0xFD0:0xFE0])
	assert.Equal(t, bytes.Repeat([]byte{0x00, 0xFF}, 8), data[0xFE0:0xFF0])
	assert.Equal(t, make([]byte, TileSize), data[0xFF0:0x1000])
	assert.Equal(t, byte(0x00), data[0x1000])

	tile, err := w.Tile(0xFD)
	assert.NoError(t, err)
	assert.Equal(t, data[0xFD0:0xFE0], tile)
}

func TestComposeClipsOverflow(t *testing.T) {
	src := append([]byte{0x00}, repeatStream(0x22, 0x1000)...)

	w, err := Compose(src, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0x1000, w.Loaded)
	assert.Equal(t, 0x1000-(Size-0xE30), w.Clipped)
	assert.Equal(t, Size, len(w.Bytes()))
	assert.Equal(t, byte(0x22), w.Bytes()[Size-1])
}

func TestComposeDoesNotModifySource(t *testing.T) {
	src := []byte{0xE3, 0x01, 0xAA, 0xBB, 0xFF}
	orig := bytes.Clone(src)

	_, err := Compose(src, 0)
	assert.NoError(t, err)
	assert.Equal(t, orig, src)
}

func TestComposeErrors(t *testing.T) {
	_, err := Compose([]byte{0x00, 0xFF}, 2)
	assert.True(t, errors.Is(err, rom.ErrOutOfRange))

	_, err = Compose([]byte{0x00, 0x01, 0xAA}, 0)
	assert.True(t, errors.Is(err, codec.ErrTruncatedStream))
}

func TestTile(t *testing.T) {
	w, err := Compose([]byte{0xE3, 0xFF}, 0)
	assert.NoError(t, err)

	tile, err := w.Tile(0)
	assert.NoError(t, err)
	assert.Equal(t, TileSize, len(tile))

	_, err = w.Tile(Tiles)
	assert.True(t, errors.Is(err, rom.ErrOutOfRange))

	_, err = w.Tile(-1)
	assert.True(t, errors.Is(err, rom.ErrOutOfRange))
}

func TestModeBase(t *testing.T) {
	assert.Equal(t, uint16(0x8000), Mode8000.Base())
	assert.Equal(t, uint16(0x8800), Mode8800.Base())
	assert.Equal(t, "$8800", Mode8800.String())
}
