// Package options contains the program options.
package options

import "time"

// Frontend names.
const (
	FrontendWindow   = "window"
	FrontendTerminal = "terminal"
	FrontendNone     = "none"
)

// Frontends lists all supported frontend names.
var Frontends = []string{FrontendWindow, FrontendTerminal, FrontendNone}

// Defaults and limits of the numeric options.
const (
	DefaultScale = 10
	MaxScale     = 64
	DefaultHz    = 60
	MaxHz        = 10000
)

// Parameters contains file path options.
type Parameters struct {
	Input string `flag:"i" usage:"input ROM file"`
}

// Flags contains behavior options.
type Flags struct {
	System   string `flag:"s" usage:"target system: chip8 (default: auto-detect)"`
	Frontend string `flag:"frontend" usage:"frontend: window, terminal, none" default:"window"`
	Trace    bool   `flag:"trace" usage:"log every executed instruction"`
	Debug    bool   `flag:"debug" usage:"enable debug logging"`
	Quiet    bool   `flag:"q" usage:"quiet mode"`
}

// Machine contains the emulation options.
type Machine struct {
	Scale  int    `flag:"scale" usage:"window scale factor" default:"10"`
	Hz     int    `flag:"hz" usage:"execution cycles per second" default:"60"`
	Seed   uint64 `flag:"seed" usage:"random generator seed (default: time based)"`
	Cycles uint64 `flag:"cycles" usage:"stop after the given number of cycles (default: unlimited)"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	Machine
}

// CycleInterval returns the duration of one execution cycle.
func (m Machine) CycleInterval() time.Duration {
	if m.Hz <= 0 {
		return time.Second / DefaultHz
	}
	return time.Second / time.Duration(m.Hz)
}
