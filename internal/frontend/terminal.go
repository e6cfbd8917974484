package frontend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

const (
	// terminals do not report key releases, a pressed key is held down
	// for this duration after the last received key press.
	keyHoldTime     = 150 * time.Millisecond
	terminalRefresh = time.Second / 60

	keyEscape = 0x1B
	keyCtrlC  = 0x03

	cursorHome  = "\x1b[H"
	clearScreen = "\x1b[2J"
	clearLine   = "\x1b[K"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// Terminal renders the machine video as text using half block characters,
// every text line shows two pixel rows.
type Terminal struct {
	logger *log.Logger
	emu    Emulator
	in     io.Reader
	out    io.Writer
	fd     int

	holdTime time.Duration
	release  [chip8.KeyCount]time.Time

	frame    runner.Frame
	last     runner.Frame
	sound    bool
	rendered bool
	buf      bytes.Buffer
}

// NewTerminal returns a terminal frontend that reads keys from in and writes
// the screen to out. If fd refers to a terminal it is switched to raw mode
// while the frontend runs.
func NewTerminal(logger *log.Logger, emu Emulator, in io.Reader, out io.Writer, fd int) *Terminal {
	return &Terminal{
		logger:   logger,
		emu:      emu,
		in:       in,
		out:      out,
		fd:       fd,
		holdTime: keyHoldTime,
	}
}

// Run renders the screen until Escape or Ctrl+C is pressed or the context
// is done.
func (t *Terminal) Run(ctx context.Context) error {
	if term.IsTerminal(t.fd) {
		t.checkSize()

		state, err := term.MakeRaw(t.fd)
		if err != nil {
			return fmt.Errorf("setting terminal raw mode: %w", err)
		}
		defer func() { _ = term.Restore(t.fd, state) }()
	}

	if _, err := io.WriteString(t.out, clearScreen+hideCursor); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	defer func() { _, _ = io.WriteString(t.out, showCursor+"\r\n") }()

	done := make(chan struct{})
	defer close(done)
	input := make(chan byte, 16)
	go t.readInput(input, done)

	ticker := time.NewTicker(terminalRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case b, ok := <-input:
			if !ok {
				input = nil
				continue
			}
			if t.handleInput(b, time.Now()) {
				t.logger.Debug("Quit key pressed")
				return nil
			}

		case now := <-ticker.C:
			t.releaseKeys(now)
			if err := t.render(); err != nil {
				return err
			}
		}
	}
}

// readInput forwards all read bytes to the channel until the reader fails
// or done is closed.
func (t *Terminal) readInput(input chan<- byte, done <-chan struct{}) {
	defer close(input)

	buf := make([]byte, 64)
	for {
		n, err := t.in.Read(buf)
		for _, b := range buf[:n] {
			select {
			case input <- b:
			case <-done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// handleInput presses the keypad key mapped to the input byte and returns
// whether a quit key was pressed.
func (t *Terminal) handleInput(b byte, now time.Time) bool {
	if b == keyEscape || b == keyCtrlC {
		return true
	}

	key, ok := KeyForRune(rune(b))
	if !ok {
		return false
	}
	t.emu.SetKey(key, true)
	t.release[key] = now.Add(t.holdTime)
	return false
}

// releaseKeys releases all keys whose hold time expired.
func (t *Terminal) releaseKeys(now time.Time) {
	for key, deadline := range t.release {
		if deadline.IsZero() || now.Before(deadline) {
			continue
		}
		t.emu.SetKey(uint8(key), false)
		t.release[key] = time.Time{}
	}
}

// render draws the current frame, unchanged frames are skipped.
func (t *Terminal) render() error {
	t.emu.Frame(&t.frame)
	sound := t.emu.SoundActive()
	if t.rendered && t.frame == t.last && sound == t.sound {
		return nil
	}
	t.last = t.frame
	t.sound = sound
	t.rendered = true

	t.buf.Reset()
	t.buf.WriteString(cursorHome)
	for y := 0; y < chip8.VideoHeight; y += 2 {
		for x := range chip8.VideoWidth {
			top := t.frame[y*chip8.VideoWidth+x] == chip8.PixelOn
			bottom := t.frame[(y+1)*chip8.VideoWidth+x] == chip8.PixelOn
			t.buf.WriteString(halfBlock(top, bottom))
		}
		t.buf.WriteString("\r\n")
	}
	if sound {
		t.buf.WriteString("BEEP")
	}
	t.buf.WriteString(clearLine)

	if _, err := t.out.Write(t.buf.Bytes()); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	return nil
}

func halfBlock(top, bottom bool) string {
	switch {
	case top && bottom:
		return "█"
	case top:
		return "▀"
	case bottom:
		return "▄"
	default:
		return " "
	}
}

func (t *Terminal) checkSize() {
	width, height, err := term.GetSize(t.fd)
	if err != nil {
		t.logger.Warn("Reading terminal size failed", log.Err(err))
		return
	}
	if width < chip8.VideoWidth || height < chip8.VideoHeight/2+1 {
		t.logger.Warn("Terminal is smaller than the screen",
			log.Int("width", width),
			log.Int("height", height))
	}
}
