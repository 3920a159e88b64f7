// Package render turns assembled map layouts into images.
package render

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/retroenv/kdlmap/internal/mapasm"
	"golang.org/x/image/draw"
)

const (
	tilePixels = mapasm.TilePixels
	tileBytes  = 16

	bufferSize = 1024 * 1024
)

// Palette holds the four grey shades, lightest first.
var Palette = color.Palette{
	color.Gray{Y: 0xFF},
	color.Gray{Y: 0xC0},
	color.Gray{Y: 0x80},
	color.Gray{Y: 0x40},
}

// Layout draws all placements of a layout into a new paletted image.
func Layout(layout *mapasm.Layout) (*image.Paletted, error) {
	img := image.NewPaletted(image.Rect(0, 0, layout.Width, layout.Height), Palette)
	for i, p := range layout.Placements {
		if err := Tile(img, p.Tile, p.Column, p.Row); err != nil {
			return nil, fmt.Errorf("drawing placement %d: %w", i, err)
		}
	}
	return img, nil
}

// Tile draws a 2bpp tile at the given tile column and row. The first byte
// of each row pair carries the high bit of the colour index. Pixels outside
// the image bounds are dropped.
func Tile(img *image.Paletted, tile []byte, column, row int) error {
	if len(tile) != tileBytes {
		return fmt.Errorf("tile has %d bytes, expected %d", len(tile), tileBytes)
	}

	x0 := column * tilePixels
	y0 := row * tilePixels
	for y := range tilePixels {
		high := tile[y*2]
		low := tile[y*2+1]
		for x := range tilePixels {
			bit := 7 - x
			index := (high>>bit)&1<<1 | (low>>bit)&1
			img.SetColorIndex(x0+x, y0+y, index)
		}
	}
	return nil
}

// Scale enlarges the image by an integer factor using nearest neighbour
// sampling. A factor of 1 or less returns the image unchanged.
func Scale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}

	bounds := img.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, bounds.Dx()*factor, bounds.Dy()*factor), Palette)
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// WritePNG encodes the image as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	bo := bufio.NewWriterSize(w, bufferSize)
	if err := png.Encode(bo, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	if err := bo.Flush(); err != nil {
		return fmt.Errorf("flushing png: %w", err)
	}
	return nil
}

// SavePNG writes the image as PNG file.
func SavePNG(name string, img image.Image) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing file %s: %w", name, cerr)
		}
	}()

	return WritePNG(f, img)
}
