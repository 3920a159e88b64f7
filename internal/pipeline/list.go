package pipeline

import (
	"fmt"
	"io"

	"github.com/retroenv/kdlmap/internal/catalog"
)

// List writes a summary line for every catalog entry followed by the
// catalog statistics.
func List(writer io.Writer, cat *catalog.Catalog) error {
	for i, entry := range cat.Entries() {
		if _, err := fmt.Fprintf(writer, "%3d  %s  %s\n", i, entry.Address(), describe(entry)); err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}
	}

	stats := cat.Stats()
	_, err := fmt.Fprintf(writer, "%s: %d levels, %d tile sets, %d decompressed bytes\n",
		cat.Profile.Title, stats.Entries, stats.TileSets, stats.DecompressedBytes)
	if err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return nil
}

func describe(entry catalog.Entry) string {
	switch e := entry.(type) {
	case *catalog.Level:
		return fmt.Sprintf("%s  slices %dx%d  tiles %s (%s)  %d blocks",
			e, e.VerticalSlices, e.HorizontalSlices,
			e.Assets.TileData, e.Assets.Tiles.Mode, len(e.Blocks))
	case *catalog.Screen:
		return fmt.Sprintf("%s  size %dx%d  tiles %s (%s)",
			e, e.Width, e.Height, e.Set.TileData, e.Set.Tiles.Mode)
	default:
		return entry.String()
	}
}
