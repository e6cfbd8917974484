//go:build !headless

package frontend

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

const (
	windowTitle = "retrochip8"
	windowTPS   = 60
)

// windowKeys holds the ebiten key of every keypad key, following keyLayout.
var windowKeys = [chip8.KeyCount]ebiten.Key{
	0x0: ebiten.KeyX, 0x1: ebiten.Key1, 0x2: ebiten.Key2, 0x3: ebiten.Key3,
	0x4: ebiten.KeyQ, 0x5: ebiten.KeyW, 0x6: ebiten.KeyE, 0x7: ebiten.KeyA,
	0x8: ebiten.KeyS, 0x9: ebiten.KeyD, 0xA: ebiten.KeyZ, 0xB: ebiten.KeyC,
	0xC: ebiten.Key4, 0xD: ebiten.KeyR, 0xE: ebiten.KeyF, 0xF: ebiten.KeyV,
}

// Window renders the machine video into a scaled desktop window.
// It implements ebiten.Game and has to be run on the main goroutine.
type Window struct {
	logger *log.Logger
	emu    Emulator
	scale  int

	ctx    context.Context
	frame  runner.Frame
	pixels []byte
	image  *ebiten.Image
	sound  bool
}

func newWindow(logger *log.Logger, emu Emulator, scale int) (Frontend, error) {
	return &Window{
		logger: logger,
		emu:    emu,
		scale:  scale,
		pixels: make([]byte, chip8.VideoSize*4),
	}, nil
}

// Run opens the window and blocks until it is closed, Escape is pressed or
// the context is done.
func (w *Window) Run(ctx context.Context) error {
	w.ctx = ctx

	ebiten.SetWindowSize(chip8.VideoWidth*w.scale, chip8.VideoHeight*w.scale)
	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetTPS(windowTPS)
	ebiten.SetRunnableOnUnfocused(true)

	if err := ebiten.RunGame(w); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}

// Update applies the keyboard state to the keypad.
func (w *Window) Update() error {
	if w.ctx.Err() != nil || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		w.logger.Debug("Escape pressed, closing window")
		return ebiten.Termination
	}

	for key, ebitenKey := range windowKeys {
		w.emu.SetKey(uint8(key), ebiten.IsKeyPressed(ebitenKey))
	}

	if sound := w.emu.SoundActive(); sound != w.sound {
		w.sound = sound
		title := windowTitle
		if sound {
			title += " [beep]"
		}
		ebiten.SetWindowTitle(title)
	}
	return nil
}

// Draw renders the last frame of the machine.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.image == nil {
		w.image = ebiten.NewImage(chip8.VideoWidth, chip8.VideoHeight)
	}

	w.emu.Frame(&w.frame)
	for i, pixel := range w.frame {
		var value byte
		if pixel == chip8.PixelOn {
			value = 0xFF
		}
		offset := i * 4
		w.pixels[offset] = value
		w.pixels[offset+1] = value
		w.pixels[offset+2] = value
		w.pixels[offset+3] = 0xFF
	}
	w.image.WritePixels(w.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w.scale), float64(w.scale))
	screen.DrawImage(w.image, op)
}

// Layout returns the fixed size of the scaled screen.
func (w *Window) Layout(_, _ int) (int, int) {
	return chip8.VideoWidth * w.scale, chip8.VideoHeight * w.scale
}
