package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func newTestRunner(t *testing.T, rom []byte, cycles uint64, trace bool) (*Runner, *chip8.Machine) {
	t.Helper()

	m := chip8.New(1)
	assert.NoError(t, m.LoadROM(rom))

	opts := options.Program{
		Flags:   options.Flags{Trace: trace},
		Machine: options.Machine{Hz: options.MaxHz, Cycles: cycles},
	}
	return New(log.NewTestLogger(t), m, opts), m
}

func TestRun_CycleLimit(t *testing.T) {
	// draw the glyph of digit 0 at the top left corner and loop forever
	rom := []byte{
		0x60, 0x00, // LD V0, $00
		0xF0, 0x29, // LD F, V0
		0xD0, 0x05, // DRW V0, V0, $5
		0x12, 0x06, // JP $206
	}
	r, _ := newTestRunner(t, rom, 4, true)

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, uint64(4), r.Cycles())

	var frame Frame
	r.Frame(&frame)
	for x := range 4 {
		assert.Equal(t, chip8.PixelOn, frame[x])
	}
	assert.Equal(t, chip8.PixelOff, frame[4])
	assert.Equal(t, chip8.PixelOn, frame[chip8.VideoWidth])
	assert.Equal(t, chip8.PixelOff, frame[chip8.VideoWidth+1])
}

func TestRun_Fault(t *testing.T) {
	rom := []byte{0x00, 0xEE} // RET with an empty stack
	r, m := newTestRunner(t, rom, 0, false)

	err := r.Run(context.Background())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, chip8.ErrStackUnderflow))
	assert.ErrorContains(t, err, "executing cycle 1")
	assert.True(t, m.Halted())
	assert.Equal(t, uint64(0), r.Cycles())
}

func TestRun_Canceled(t *testing.T) {
	r, _ := newTestRunner(t, []byte{0x12, 0x00}, 0, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, r.Run(ctx))
	assert.Equal(t, uint64(0), r.Cycles())
}

func TestSetKey(t *testing.T) {
	rom := []byte{
		0xF3, 0x0A, // LD V3, K
		0x12, 0x02, // JP $202
	}
	r, m := newTestRunner(t, rom, 2, false)

	r.SetKey(0x5, true)
	r.SetKey(0x10, true) // outside of the keypad

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, uint8(0x5), m.Registers[3])
	assert.True(t, m.Keypad[0x5])
	assert.Equal(t, uint16(0x202), m.PC)

	r.SetKey(0x5, false)
	assert.False(t, r.keys[0x5])
}

func TestSoundActive(t *testing.T) {
	rom := []byte{
		0x60, 0x0A, // LD V0, $0A
		0xF0, 0x18, // LD ST, V0
		0x12, 0x04, // JP $204
	}
	r, m := newTestRunner(t, rom, 1, false)

	assert.NoError(t, r.Run(context.Background()))
	assert.False(t, r.SoundActive())

	r.opts.Cycles = 2
	assert.NoError(t, r.Run(context.Background()))
	assert.True(t, r.SoundActive())
	assert.Equal(t, uint8(0x09), m.SoundTimer)
}
