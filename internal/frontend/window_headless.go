//go:build headless

package frontend

import (
	"errors"

	"github.com/retroenv/retrogolib/log"
)

// ErrNoWindow is returned when the window frontend is selected in a build
// without window support.
var ErrNoWindow = errors.New("window frontend is not available in headless builds")

func newWindow(_ *log.Logger, _ Emulator, _ int) (Frontend, error) {
	return nil, ErrNoWindow
}
