package render

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/kdlmap/internal/mapasm"
	"github.com/retroenv/retrogolib/assert"
)

func solidTile(high, low byte) []byte {
	tile := make([]byte, tileBytes)
	for i := 0; i < tileBytes; i += 2 {
		tile[i] = high
		tile[i+1] = low
	}
	return tile
}

func TestTile(t *testing.T) {
	tests := []struct {
		name  string
		tile  []byte
		index uint8
	}{
		{"blank", solidTile(0x00, 0x00), 0},
		{"low plane", solidTile(0x00, 0xFF), 1},
		{"high plane", solidTile(0xFF, 0x00), 2},
		{"both planes", solidTile(0xFF, 0xFF), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewPaletted(image.Rect(0, 0, 16, 8), Palette)
			assert.NoError(t, Tile(img, tt.tile, 1, 0))
			assert.Equal(t, uint8(0), img.ColorIndexAt(7, 7))
			assert.Equal(t, tt.index, img.ColorIndexAt(8, 0))
			assert.Equal(t, tt.index, img.ColorIndexAt(15, 7))
		})
	}
}

func TestTileBitOrder(t *testing.T) {
	tile := make([]byte, tileBytes)
	tile[0] = 0x80 // leftmost pixel of row 0, high bit
	tile[3] = 0x01 // rightmost pixel of row 1, low bit

	img := image.NewPaletted(image.Rect(0, 0, 8, 8), Palette)
	assert.NoError(t, Tile(img, tile, 0, 0))
	assert.Equal(t, uint8(2), img.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(0), img.ColorIndexAt(1, 0))
	assert.Equal(t, uint8(1), img.ColorIndexAt(7, 1))
}

func TestTileErrors(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 8, 8), Palette)
	assert.ErrorContains(t, Tile(img, make([]byte, 15), 0, 0), "tile has 15 bytes")

	// outside the bounds is dropped
	assert.NoError(t, Tile(img, solidTile(0xFF, 0xFF), 4, 4))
}

func TestLayout(t *testing.T) {
	layout := &mapasm.Layout{
		Width:  16,
		Height: 16,
		Placements: []mapasm.Placement{
			{Tile: solidTile(0xFF, 0xFF), Column: 0, Row: 0},
			{Tile: solidTile(0x00, 0xFF), Column: 1, Row: 1},
		},
	}

	img, err := Layout(layout)
	assert.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())
	assert.Equal(t, uint8(3), img.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(0), img.ColorIndexAt(8, 0))
	assert.Equal(t, uint8(1), img.ColorIndexAt(15, 15))

	layout.Placements[1].Tile = nil
	_, err = Layout(layout)
	assert.ErrorContains(t, err, "drawing placement 1")
}

func TestScale(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 2, 1), Palette)
	img.SetColorIndex(1, 0, 3)

	assert.Equal(t, image.Image(img), Scale(img, 1))

	scaled := Scale(img, 3)
	assert.Equal(t, image.Rect(0, 0, 6, 3), scaled.Bounds())
	assert.Equal(t, Palette[0], scaled.At(2, 2))
	assert.Equal(t, Palette[3], scaled.At(3, 0))
	assert.Equal(t, Palette[3], scaled.At(5, 2))
}

func TestPNG(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 8, 8), Palette)
	assert.NoError(t, Tile(img, solidTile(0xFF, 0x00), 0, 0))

	var buf bytes.Buffer
	assert.NoError(t, WritePNG(&buf, img))
	decoded, err := png.Decode(&buf)
	assert.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	name := filepath.Join(t.TempDir(), "level.png")
	assert.NoError(t, SavePNG(name, img))
	data, err := os.ReadFile(name)
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	err = SavePNG(filepath.Join(t.TempDir(), "missing", "level.png"), img)
	assert.ErrorContains(t, err, "creating file")
}
