// Package loader handles cartridge file loading operations.
package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/retroenv/kdlmap/internal/rom"
)

// Loader handles loading cartridge files from disk.
type Loader struct{}

// New creates a new cartridge loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the cartridge file at the given path into an image.
func (l *Loader) Load(path string) (*rom.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	img, err := l.LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("loading file %s: %w", path, err)
	}
	return img, nil
}

// LoadFromReader reads a complete cartridge image from the reader.
func (l *Loader) LoadFromReader(reader io.Reader) (*rom.Image, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading cartridge: %w", err)
	}
	return rom.New(data)
}
