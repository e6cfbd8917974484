// Package detector handles system architecture detection.
package detector

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/log"
)

// ErrUnsupportedSystem is returned for systems that can not be emulated.
var ErrUnsupportedSystem = errors.New("unsupported system")

// Detector handles system detection from file extensions and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new system detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the system of the ROM file. An explicitly passed system
// option takes precedence over the file extension.
func (d *Detector) Detect(opts options.Program) arch.System {
	system, _ := arch.SystemFromString(strings.ToLower(opts.System))
	if system == "" {
		system = d.detectFromFile(opts.Input)
		d.logger.Debug("Auto-detected system",
			log.Stringer("system", system),
			log.String("file", opts.Input))
	}
	return system
}

// Validate returns an error if the system can not be emulated.
func (d *Detector) Validate(system arch.System) error {
	if system != arch.CHIP8System {
		return fmt.Errorf("%w: %s", ErrUnsupportedSystem, system)
	}
	return nil
}

// detectFromFile determines the system type based on file extension.
// CHIP-8 ROMs are commonly distributed without a header or a fixed extension,
// therefore all files that are not recognizable as another system are
// treated as CHIP-8 programs.
func (d *Detector) detectFromFile(filename string) arch.System {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".nes":
		return arch.NES
	default:
		return arch.CHIP8System
	}
}
