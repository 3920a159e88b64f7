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
	"github.com/retroenv/retrogolib/set"
	"golang.org/x/sync/errgroup"
)

// Quadrants is the number of tiles a metatile is made of.
const Quadrants = 4

// Metatile quadrant order.
const (
	TopLeft = iota
	TopRight
	BottomLeft
	BottomRight
)

const (
	levelTablePadding = 1 // unused byte in front of the level pointer table
	pointerSize       = 3
)

// Geometry is the scroll boundary of a level.
type Geometry struct {
	Left   uint8
	Top    uint8
	Right  uint8
	Bottom uint8
}

// LayerTable holds one quadrant tile index for every metatile id.
type LayerTable []byte

// AssetBundle is the tile set and metatile definition shared by levels.
type AssetBundle struct {
	Address   bank.Address // asset header
	TileData  bank.Address // compressed tile data
	Tiles     *vram.Window
	ChunkSize int
	Layers    [Quadrants]LayerTable
}

// Metatile returns the 4 raw quadrant tile indices of a metatile id.
func (a *AssetBundle) Metatile(id byte) ([Quadrants]byte, error) {
	var tiles [Quadrants]byte
	if int(id) >= a.ChunkSize {
		return tiles, fmt.Errorf("metatile %#02x of %d: %w", id, a.ChunkSize, rom.ErrOutOfRange)
	}
	for i, layer := range a.Layers {
		tiles[i] = layer[id]
	}
	return tiles, nil
}

// Level is a level descriptor of a sliced layout game.
type Level struct {
	Index            int
	Header           bank.Address
	VerticalSlices   int
	HorizontalSlices int
	Geometry         Geometry
	AssetAddress     bank.Address
	Assets           *AssetBundle
	Objects          bank.Address // object table, not decoded
	Doors            bank.Address // door table, not decoded
	Unknown          byte
	Blocks           []byte // metatile ids
}

func (l *Level) entry() {}

// Address returns the address of the level header.
func (l *Level) Address() bank.Address {
	return l.Header
}

func (l *Level) String() string {
	return fmt.Sprintf("level %d", l.Index)
}

type slicedParser struct {
	*Parser
	prof *profile.Profile
}

// levelHeader is a level header and the position of its block stream.
type levelHeader struct {
	level     *Level
	blocksPos int
}

func (s *slicedParser) parse(ctx context.Context, img *rom.Image) ([]Entry, Stats, error) {
	headers := make([]levelHeader, s.prof.LevelCount)
	seen := set.New[int]()
	var assetAddresses []bank.Address

	tablePos := s.prof.LevelTable.Linear() + levelTablePadding
	for i := range headers {
		ptr, err := img.Pointer(tablePos + i*pointerSize)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("reading level %d pointer: %w", i, err)
		}

		header, err := readLevelHeader(img, i, ptr)
		if err != nil {
			return nil, Stats{}, err
		}
		headers[i] = header

		linear := header.level.AssetAddress.Linear()
		if !seen.Contains(linear) {
			seen.Add(linear)
			assetAddresses = append(assetAddresses, header.level.AssetAddress)
		}
	}

	bundles := make([]*AssetBundle, len(assetAddresses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, addr := range assetAddresses {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			bundle, err := s.parseAssets(img, addr)
			if err != nil {
				return fmt.Errorf("parsing assets at %s: %w", addr, err)
			}
			bundles[i] = bundle
			return nil
		})
	}

	for _, header := range headers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := codec.Decompress(img.Data(), header.blocksPos)
			if err != nil {
				return fmt.Errorf("decompressing level %d blocks at %s: %w",
					header.level.Index, header.level.Header, err)
			}
			header.level.Blocks = result.Data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	byAddress := make(map[int]*AssetBundle, len(bundles))
	stats := Stats{TileSets: len(bundles)}
	for _, bundle := range bundles {
		byAddress[bundle.Address.Linear()] = bundle
		stats.DecompressedBytes += bundle.Tiles.Loaded + Quadrants*bundle.ChunkSize
	}

	entries := make([]Entry, len(headers))
	for i, header := range headers {
		level := header.level
		level.Assets = byAddress[level.AssetAddress.Linear()]
		stats.DecompressedBytes += len(level.Blocks)
		entries[i] = level

		s.logger.Debug("Parsed level",
			log.Int("index", level.Index),
			log.Stringer("header", level.Header),
			log.Stringer("assets", level.AssetAddress),
			log.Int("vertical_slices", level.VerticalSlices),
			log.Int("horizontal_slices", level.HorizontalSlices),
			log.Int("blocks", len(level.Blocks)))
	}

	return entries, stats, nil
}

// readLevelHeader reads the fixed size part of a level header.
func readLevelHeader(img *rom.Image, index int, addr bank.Address) (levelHeader, error) {
	pos := addr.Linear()
	b, err := img.Bytes(pos, 16)
	if err != nil {
		return levelHeader{}, fmt.Errorf("reading level %d header at %s: %w", index, addr, err)
	}

	level := &Level{
		Index:            index,
		Header:           addr,
		VerticalSlices:   int(b[0]),
		HorizontalSlices: int(b[1]),
		Geometry: Geometry{
			Left:   b[2],
			Top:    b[3],
			Right:  b[4],
			Bottom: b[5],
		},
		AssetAddress: pointerAt(b[6:]),
		Objects:      pointerAt(b[9:]),
		Doors:        pointerAt(b[12:]),
		Unknown:      b[15],
	}

	return levelHeader{
		level:     level,
		blocksPos: pos + len(b),
	}, nil
}

func pointerAt(b []byte) bank.Address {
	return bank.Address{
		Bank:   b[2],
		Offset: uint16(b[1])<<8 | uint16(b[0]),
	}
}

// parseAssets reads an asset bundle: a tile data pointer, the metatile count
// and a compressed stream holding the 4 quadrant layer tables back to back.
func (s *slicedParser) parseAssets(img *rom.Image, addr bank.Address) (*AssetBundle, error) {
	pos := addr.Linear()
	tilePtr, err := img.Pointer(pos)
	if err != nil {
		return nil, fmt.Errorf("reading tile pointer: %w", err)
	}
	pos += pointerSize

	tiles, err := s.composeTiles(img, tilePtr)
	if err != nil {
		return nil, err
	}

	chunkSize, err := img.Byte(pos)
	if err != nil {
		return nil, fmt.Errorf("reading chunk size: %w", err)
	}
	pos++

	translation, err := codec.Decompress(img.Data(), pos)
	if err != nil {
		return nil, fmt.Errorf("decompressing translation table: %w", err)
	}

	layers, err := splitLayers(translation.Data, int(chunkSize))
	if err != nil {
		return nil, err
	}

	return &AssetBundle{
		Address:   addr,
		TileData:  tilePtr,
		Tiles:     tiles,
		ChunkSize: int(chunkSize),
		Layers:    layers,
	}, nil
}

// splitLayers splits the translation table into the 4 consecutive quadrant tables.
func splitLayers(data []byte, chunkSize int) ([Quadrants]LayerTable, error) {
	var layers [Quadrants]LayerTable
	if len(data) < Quadrants*chunkSize {
		return layers, fmt.Errorf("translation table of %d bytes for %d metatiles: %w",
			len(data), chunkSize, rom.ErrOutOfRange)
	}
	for i := range layers {
		layers[i] = LayerTable(data[i*chunkSize : (i+1)*chunkSize : (i+1)*chunkSize])
	}
	return layers, nil
}
