// Package frontend presents a running machine to the user and feeds the
// keyboard state back into its keypad.
package frontend

import (
	"context"
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

// Emulator is the view of a running machine that frontends present.
type Emulator interface {
	Frame(dst *runner.Frame)
	SetKey(key uint8, down bool)
	SoundActive() bool
}

// Frontend presents an emulator until the user quits or the context is done.
// Run returns nil in both cases.
type Frontend interface {
	Run(ctx context.Context) error
}

// New creates the frontend selected by the options.
func New(logger *log.Logger, emu Emulator, opts options.Program) (Frontend, error) {
	switch opts.Frontend {
	case options.FrontendWindow:
		return newWindow(logger, emu, opts.Scale)
	case options.FrontendTerminal:
		return NewTerminal(logger, emu, os.Stdin, os.Stdout, int(os.Stdin.Fd())), nil
	case options.FrontendNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("unsupported frontend '%s'", opts.Frontend)
	}
}

// None is a frontend without any output, it returns when the context is done.
type None struct{}

// Run blocks until the context is done.
func (None) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}
