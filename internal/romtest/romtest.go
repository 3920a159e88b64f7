// Package romtest builds small synthetic cartridge images for tests.
package romtest

import (
	"github.com/retroenv/kdlmap/internal/bank"
	"github.com/retroenv/kdlmap/internal/profile"
)

const (
	titleStart     = 0x0134
	titleEnd       = 0x0144
	headerChecksum = 0x014D
)

// Builder assembles a cartridge image.
type Builder struct {
	data []byte
}

// NewBuilder returns a builder for an image of the given number of banks.
func NewBuilder(banks int) *Builder {
	return &Builder{
		data: make([]byte, banks*bank.Size),
	}
}

// Put writes data at the linear position of addr.
func (b *Builder) Put(addr bank.Address, data ...byte) *Builder {
	copy(b.data[addr.Linear():], data)
	return b
}

// Title writes a cartridge header title and a matching header checksum.
func (b *Builder) Title(title string) *Builder {
	for i := titleStart; i < titleEnd; i++ {
		b.data[i] = 0
	}
	copy(b.data[titleStart:titleEnd], title)

	var sum byte
	for i := titleStart; i < headerChecksum; i++ {
		sum = sum - b.data[i] - 1
	}
	b.data[headerChecksum] = sum
	return b
}

// Bytes returns the image.
func (b *Builder) Bytes() []byte {
	return b.data
}

// Pointer returns the 3 byte far pointer encoding of addr.
func Pointer(addr bank.Address) []byte {
	return []byte{byte(addr.Offset), byte(addr.Offset >> 8), addr.Bank}
}

// Join concatenates byte slices.
func Join(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Addresses of the sliced fixture.
var (
	LevelTable  = bank.Address{Bank: 1, Offset: 0x4000}
	Level0      = bank.Address{Bank: 1, Offset: 0x4100}
	Level1      = bank.Address{Bank: 1, Offset: 0x4200}
	Assets      = bank.Address{Bank: 2, Offset: 0x4000}
	TileData    = bank.Address{Bank: 3, Offset: 0x4000}
	ObjectTable = bank.Address{Bank: 2, Offset: 0x4800}
	DoorTable   = bank.Address{Bank: 2, Offset: 0x4900}
)

// TileFill is the byte every pixel row of fixture tile slot 0x80 is filled with.
const TileFill = 0x77

// Layers are the fixture quadrant tables of the two metatiles: top-left,
// top-right, bottom-left, bottom-right.
var Layers = [4][]byte{
	{0x00, 0x01},
	{0x02, 0x03},
	{0x80, 0x81},
	{0xFD, 0xFE},
}

// SlicedTitle is the header title of the sliced fixture.
const SlicedTitle = "KIRBY2"

// SlicedProfile returns the profile of the sliced fixture.
func SlicedProfile() *profile.Profile {
	return &profile.Profile{
		Name:       "test-sliced",
		Title:      "sliced fixture",
		Layout:     profile.LayoutSliced,
		LevelTable: LevelTable,
		LevelCount: 2,
	}
}

// tileStream loads 16 bytes of TileFill at $9000, which is tile slot 0x80
// of the $8800 based window. Raw tile index 0x00 maps to it.
func tileStream() []byte {
	return []byte{0x63, 0x2F, TileFill, 0xFF}
}

// SlicedROM returns an image with two levels sharing one asset bundle.
// Level 0 has 1x1 slices and the block stream [0 1], level 1 has
// 2x1 slices and the block stream [1].
func SlicedROM() []byte {
	b := NewBuilder(4).Title(SlicedTitle)

	b.Put(LevelTable, Join([]byte{0x00}, Pointer(Level0), Pointer(Level1))...)

	b.Put(Level0, Join(
		[]byte{1, 1, 0x00, 0x00, 0x10, 0x10},
		Pointer(Assets), Pointer(ObjectTable), Pointer(DoorTable),
		[]byte{0x5A},
		[]byte{0x01, 0x00, 0x01, 0xFF},
	)...)

	b.Put(Level1, Join(
		[]byte{2, 1, 0x01, 0x02, 0x03, 0x04},
		Pointer(Assets), Pointer(ObjectTable), Pointer(DoorTable),
		[]byte{0x00},
		[]byte{0x00, 0x01, 0xFF},
	)...)

	b.Put(Assets, Join(
		Pointer(TileData),
		[]byte{2},
		[]byte{0x07}, Layers[0], Layers[1], Layers[2], Layers[3], []byte{0xFF},
	)...)

	b.Put(TileData, tileStream()...)
	return b.Bytes()
}

// Addresses of the stage fixture.
var (
	StageTileTable     = bank.Address{Bank: 1, Offset: 0x4000}
	StageMetatileTable = bank.Address{Bank: 1, Offset: 0x4003}
	StageMapTable      = bank.Address{Bank: 1, Offset: 0x4006}
	StageMetatiles     = bank.Address{Bank: 2, Offset: 0x4100}
	StageScreens       = bank.Address{Bank: 2, Offset: 0x4200}
	Screen0            = bank.Address{Bank: 2, Offset: 0x4300}
	Screen1            = bank.Address{Bank: 2, Offset: 0x4310}
)

// StageTitle is the header title of the stage fixture.
const StageTitle = "KIRBY DREAM LAND"

// StageProfile returns the profile of the stage fixture.
func StageProfile() *profile.Profile {
	return &profile.Profile{
		Name:   "test-stage",
		Title:  "stage fixture",
		Layout: profile.LayoutStage,
		Stages: []profile.Stage{
			{Name: "Fixture Fields", Screens: 2},
		},
		TileTable:     StageTileTable,
		MetatileTable: StageMetatileTable,
		MapTable:      StageMapTable,
	}
}

// StageROM returns an image with one stage of two screens. Screen 0 is 2x1
// metatiles [0 1], screen 1 is 1x2 metatiles [1 0]. The metatiles use the
// same quadrant tiles as the sliced fixture.
func StageROM() []byte {
	b := NewBuilder(4).Title(StageTitle)

	b.Put(StageTileTable, Pointer(TileData)...)
	b.Put(StageMetatileTable, Pointer(StageMetatiles)...)
	b.Put(StageMapTable, Pointer(StageScreens)...)

	b.Put(StageMetatiles,
		0x08,
		Layers[0][0], Layers[1][0], Layers[2][0], Layers[3][0],
		Layers[0][1], Layers[1][1], Layers[2][1], Layers[3][1],
		0x99,
		0xFF)

	b.Put(StageScreens, Join(Pointer(Screen0), Pointer(Screen1))...)
	b.Put(Screen0, 2, 1, 0x01, 0x00, 0x01, 0xFF)
	b.Put(Screen1, 1, 2, 0x01, 0x01, 0x00, 0xFF)

	b.Put(TileData, tileStream()...)
	return b.Bytes()
}
