// Package rom provides read-only access to a loaded cartridge image.
package rom

import (
	"errors"
	"fmt"

	"github.com/retroenv/kdlmap/internal/bank"
)

var (
	// ErrEmptyInput is returned when no cartridge data was supplied.
	ErrEmptyInput = errors.New("empty cartridge image")
	// ErrOutOfRange is returned when a read lands outside of the available buffer.
	ErrOutOfRange = errors.New("position out of range")
)

// Image is an immutable cartridge image indexed by linear position.
type Image struct {
	data []byte
}

// New returns an image for the given cartridge data. The caller must not
// modify data afterwards.
func New(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	return &Image{data: data}, nil
}

// Len returns the size of the image in bytes.
func (img *Image) Len() int {
	return len(img.data)
}

// Banks returns the number of started ROM banks of the image.
func (img *Image) Banks() int {
	return (len(img.data) + bank.Size - 1) / bank.Size
}

// Data returns the underlying buffer. It is shared and must be treated as read-only.
func (img *Image) Data() []byte {
	return img.data
}

// Byte returns the byte at the linear position pos.
func (img *Image) Byte(pos int) (byte, error) {
	if pos < 0 || pos >= len(img.data) {
		return 0, fmt.Errorf("reading byte at %#x of %#x: %w", pos, len(img.data), ErrOutOfRange)
	}
	return img.data[pos], nil
}

// Bytes returns n bytes starting at the linear position pos.
func (img *Image) Bytes(pos, n int) ([]byte, error) {
	if pos < 0 || n < 0 || pos+n > len(img.data) {
		return nil, fmt.Errorf("reading %d bytes at %#x of %#x: %w", n, pos, len(img.data), ErrOutOfRange)
	}
	return img.data[pos : pos+n], nil
}

// Pointer reads a 3 byte little endian far pointer (low, high, bank) at pos.
func (img *Image) Pointer(pos int) (bank.Address, error) {
	b, err := img.Bytes(pos, 3)
	if err != nil {
		return bank.Address{}, fmt.Errorf("reading pointer: %w", err)
	}
	return bank.Address{
		Bank:   b[2],
		Offset: uint16(b[1])<<8 | uint16(b[0]),
	}, nil
}
