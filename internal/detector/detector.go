// Package detector handles game profile detection.
package detector

import (
	"errors"
	"fmt"

	"github.com/retroenv/kdlmap/internal/header"
	"github.com/retroenv/kdlmap/internal/options"
	"github.com/retroenv/kdlmap/internal/profile"
	"github.com/retroenv/kdlmap/internal/rom"
	"github.com/retroenv/retrogolib/log"
)

// ErrUnknownGame is returned when the cartridge title matches no profile.
var ErrUnknownGame = errors.New("unknown game")

// Detector handles game profile detection from options or the cartridge header.
type Detector struct {
	logger *log.Logger
}

// New creates a new game detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the game profile of the image. An explicitly set game
// option takes precedence, otherwise the cartridge header title is matched
// against the known profiles.
func (d *Detector) Detect(opts options.Program, img *rom.Image) (*profile.Profile, error) {
	if opts.Game != "" {
		prof, err := profile.FromString(opts.Game)
		if err != nil {
			return nil, fmt.Errorf("selecting game: %w", err)
		}
		return prof, nil
	}

	hdr, err := header.Parse(img.Data())
	if err != nil {
		return nil, fmt.Errorf("parsing cartridge header: %w", err)
	}
	if err := hdr.Verify(); err != nil {
		d.logger.Warn("Cartridge header checksum mismatch", log.Err(err))
	}

	prof, ok := profile.MatchTitle(hdr.Title)
	if !ok {
		return nil, fmt.Errorf("%w: cartridge title '%s', use -g to select a game", ErrUnknownGame, hdr.Title)
	}

	d.logger.Debug("Auto-detected game",
		log.Stringer("game", prof),
		log.String("title", hdr.Title),
		log.Stringer("cartridge", hdr.CartridgeType),
		log.Int("banks", hdr.ROMBanks()))
	return prof, nil
}
