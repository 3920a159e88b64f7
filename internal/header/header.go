// Package header parses the Game Boy cartridge header.
package header

import (
	"errors"
	"fmt"
	"strings"
)

// Header field offsets.
const (
	titleStart     = 0x0134
	titleEnd       = 0x0144
	cgbFlag        = 0x0143
	cartridgeType  = 0x0147
	romSize        = 0x0148
	ramSize        = 0x0149
	destination    = 0x014A
	version        = 0x014C
	headerChecksum = 0x014D

	// End is the first byte after the header.
	End = 0x0150
)

const maxROMSize = 0x08

var (
	// ErrTooSmall indicates the image cannot hold a cartridge header.
	ErrTooSmall = errors.New("image too small for a cartridge header")
	// ErrChecksum indicates a header checksum mismatch.
	ErrChecksum = errors.New("invalid header checksum")
)

// CartridgeType is the memory bank controller byte at 0x0147.
type CartridgeType byte

var cartridgeTypeNames = map[CartridgeType]string{
	0x00: "ROM ONLY",
	0x01: "MBC1",
	0x02: "MBC1+RAM",
	0x03: "MBC1+RAM+BATTERY",
	0x05: "MBC2",
	0x06: "MBC2+BATTERY",
	0x0F: "MBC3+TIMER+BATTERY",
	0x10: "MBC3+TIMER+RAM+BATTERY",
	0x11: "MBC3",
	0x12: "MBC3+RAM",
	0x13: "MBC3+RAM+BATTERY",
	0x19: "MBC5",
	0x1A: "MBC5+RAM",
	0x1B: "MBC5+RAM+BATTERY",
}

func (t CartridgeType) String() string {
	if name, ok := cartridgeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown (%#02x)", byte(t))
}

// Header is the parsed cartridge header.
type Header struct {
	Title         string
	CGB           byte
	CartridgeType CartridgeType
	ROMSize       byte
	RAMSize       byte
	Japanese      bool
	Version       byte
	Checksum      byte
	ChecksumValid bool
}

// Parse parses the header of a cartridge image. A checksum mismatch is
// reported in ChecksumValid and does not fail parsing, use Verify to
// enforce it.
func Parse(data []byte) (*Header, error) {
	if len(data) < End {
		return nil, fmt.Errorf("%w: got %d bytes", ErrTooSmall, len(data))
	}

	h := &Header{
		Title:         parseTitle(data[titleStart:titleEnd]),
		CGB:           data[cgbFlag],
		CartridgeType: CartridgeType(data[cartridgeType]),
		ROMSize:       data[romSize],
		RAMSize:       data[ramSize],
		Japanese:      data[destination] == 0,
		Version:       data[version],
		Checksum:      data[headerChecksum],
	}
	h.ChecksumValid = Checksum(data) == h.Checksum
	return h, nil
}

// Verify returns ErrChecksum if the stored header checksum does not match.
func (h *Header) Verify() error {
	if !h.ChecksumValid {
		return fmt.Errorf("%w: stored %#02x", ErrChecksum, h.Checksum)
	}
	return nil
}

// Checksum computes the header checksum over 0x0134..0x014C.
// The image must hold at least End bytes.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data[titleStart:headerChecksum] {
		sum = sum - b - 1
	}
	return sum
}

// ROMBanks returns the number of 16 KiB banks declared by the header,
// or 0 for an unknown size code.
func (h *Header) ROMBanks() int {
	if h.ROMSize > maxROMSize {
		return 0
	}
	return 2 << h.ROMSize
}

// parseTitle cuts the title at the first zero byte. Color titles share
// their last byte with the CGB flag, which is dropped when set.
func parseTitle(b []byte) string {
	if b[len(b)-1]&0x80 != 0 {
		b = b[:len(b)-1]
	}
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimRight(string(b), " ")
}
