// Package profile contains the per game constants the level catalog needs to
// find its data inside a cartridge image.
package profile

import (
	"fmt"
	"strings"

	"github.com/retroenv/kdlmap/internal/bank"
)

// Layout selects how a game stores and arranges its levels.
type Layout int

const (
	// LayoutSliced levels are pointer table entries with per level asset
	// bundles, laid out in 16x16 metatile chunks.
	LayoutSliced Layout = iota
	// LayoutStage games have a fixed set of stages made of flat screens using
	// 4 byte metatile groups.
	LayoutStage
)

func (l Layout) String() string {
	switch l {
	case LayoutSliced:
		return "sliced"
	case LayoutStage:
		return "stage"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// Stage describes one stage of a stage layout game.
type Stage struct {
	Name    string
	Screens int
}

// Profile describes where a game keeps its level data.
type Profile struct {
	Name   string   // short name used for selection, e.g. kdl2
	Title  string   // full game name
	Titles []string // cartridge header titles identifying the game
	Layout Layout

	// sliced layout
	LevelTable bank.Address // level pointer table, preceded by one unused byte
	LevelCount int

	// stage layout
	Stages        []Stage
	TileTable     bank.Address // tile set pointer per stage
	MetatileTable bank.Address // metatile definition pointer per stage
	MapTable      bank.Address // screen pointer list per stage
}

// Known game profiles.
var (
	KDL2 = &Profile{
		Name:   "kdl2",
		Title:  "Kirby's Dream Land 2",
		Titles: []string{"KIRBY2", "KIRBY'S DREAM LAND 2", "KIRBYS DREAMLAND2"},
		Layout: LayoutSliced,

		LevelTable: bank.Address{Bank: 0x08, Offset: 0x511F},
		LevelCount: 177,
	}

	KDL1 = &Profile{
		Name:   "kdl1",
		Title:  "Kirby's Dream Land",
		Titles: []string{"KIRBY DREAM LAND", "HOSHINOKA-BI"},
		Layout: LayoutStage,

		Stages: []Stage{
			{Name: "Green Greens", Screens: 6},
			{Name: "Castle Lololo", Screens: 8},
			{Name: "Float Islands", Screens: 7},
			{Name: "Bubbly Clouds", Screens: 8},
			{Name: "Mt. Dedede", Screens: 4},
		},
		// TODO: verify the stage table addresses against a dumped cartridge
		TileTable:     bank.Address{Bank: 0x06, Offset: 0x4000},
		MetatileTable: bank.Address{Bank: 0x06, Offset: 0x400F},
		MapTable:      bank.Address{Bank: 0x06, Offset: 0x401E},
	}
)

var profiles = []*Profile{KDL2, KDL1}

// minTruncatedTitle is the shortest header title that is matched against the
// start of a longer known title, header titles are cut to 11 or 16 bytes.
const minTruncatedTitle = 11

// All returns all known profiles.
func All() []*Profile {
	return profiles
}

// FromString returns the profile matching the given short name.
func FromString(name string) (*Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unsupported game '%s'", name)
}

// Names returns the short names of all known profiles.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	return names
}

// MatchTitle returns the profile whose cartridge header title matches title.
func MatchTitle(title string) (*Profile, bool) {
	title = strings.ToUpper(strings.TrimSpace(title))
	if title == "" {
		return nil, false
	}
	for _, p := range profiles {
		for _, t := range p.Titles {
			if strings.HasPrefix(title, t) || (len(title) >= minTruncatedTitle && strings.HasPrefix(t, title)) {
				return p, true
			}
		}
	}
	return nil, false
}

// Entries returns the number of catalog entries the profile produces.
func (p *Profile) Entries() int {
	if p.Layout == LayoutSliced {
		return p.LevelCount
	}
	var n int
	for _, s := range p.Stages {
		n += s.Screens
	}
	return n
}

func (p *Profile) String() string {
	return p.Name
}
