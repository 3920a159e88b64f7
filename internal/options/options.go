// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input  string // cartridge image to read
	Output string // output .png file or directory prefix for -all
}

// Flags contains behavior options.
type Flags struct {
	Game    string // game profile name, auto-detected from the header title if empty
	Level   int    // level or screen index to render
	All     bool   // render all levels
	List    bool   // list the catalog instead of rendering
	Scale   int    // integer scale factor of the rendered image
	Workers int    // parallel catalog parsing workers, 0 uses all CPUs
	Debug   bool
	Quiet   bool
}

// Program options of the level renderer.
type Program struct {
	Parameters
	Flags
}
