// Package runner drives a CHIP-8 machine at a fixed cycle rate and shares its
// video and key state with the frontends.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/trace"
	"github.com/retroenv/retrogolib/log"
)

// Frame is a copy of the machine video buffer.
type Frame = [chip8.VideoSize]uint32

// Runner owns a machine and executes one cycle per tick.
// Step, frame reads and key updates are serialized by a single mutex.
type Runner struct {
	logger  *log.Logger
	machine *chip8.Machine
	opts    options.Program

	mu     sync.Mutex
	frame  Frame
	keys   [chip8.KeyCount]bool
	sound  bool
	cycles uint64
}

// New creates a runner for the given machine.
func New(logger *log.Logger, machine *chip8.Machine, opts options.Program) *Runner {
	r := &Runner{
		logger:  logger,
		machine: machine,
		opts:    opts,
	}
	r.frame = machine.Video
	return r
}

// Run executes machine cycles until the context is done, the cycle limit is
// reached or the machine faults. A done context is not treated as error.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.CycleInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Runner stopped", log.Int("cycles", int(r.Cycles())))
			return nil
		case <-ticker.C:
		}

		done, err := r.step()
		if err != nil {
			return err
		}
		if done {
			r.logger.Info("Cycle limit reached", log.Int("cycles", int(r.opts.Cycles)))
			return nil
		}
	}
}

// step executes a single cycle and returns whether the cycle limit is reached.
func (r *Runner) step() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.machine
	m.Keypad = r.keys
	pc := m.PC

	if err := m.Step(); err != nil {
		r.logger.Error("Machine halted",
			log.Hex("pc", pc),
			log.Hex("opcode", m.Opcode),
			log.Err(err))
		return true, fmt.Errorf("executing cycle %d: %w", r.cycles+1, err)
	}
	r.cycles++

	if r.opts.Trace {
		r.logger.Debug(trace.Format(m.Opcode),
			log.Hex("pc", pc),
			log.Hex("opcode", m.Opcode),
			log.Hex("i", m.Index),
			log.Uint8("sp", m.SP))
	}

	r.frame = m.Video
	r.sound = m.SoundActive()

	return r.opts.Cycles > 0 && r.cycles >= r.opts.Cycles, nil
}

// Frame copies the video buffer of the last executed cycle into dst.
func (r *Runner) Frame(dst *Frame) {
	r.mu.Lock()
	*dst = r.frame
	r.mu.Unlock()
}

// SetKey sets the state of a keypad key, it is applied to the machine at
// the start of the next cycle. Keys outside the keypad are ignored.
func (r *Runner) SetKey(key uint8, down bool) {
	if int(key) >= chip8.KeyCount {
		return
	}
	r.mu.Lock()
	r.keys[key] = down
	r.mu.Unlock()
}

// SoundActive returns whether the sound timer was running after the last cycle.
func (r *Runner) SoundActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sound
}

// Cycles returns the number of executed cycles.
func (r *Runner) Cycles() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cycles
}
