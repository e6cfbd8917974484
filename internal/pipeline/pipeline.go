// Package pipeline orchestrates the emulation workflow stages.
package pipeline

import (
	"context"
	"fmt"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

// FrontendConstructor creates the frontend that presents the running machine.
type FrontendConstructor func(logger *log.Logger, emu frontend.Emulator, opts options.Program) (frontend.Frontend, error)

// Pipeline orchestrates the complete emulation workflow.
type Pipeline struct {
	logger      *log.Logger
	detector    *detector.Detector
	loader      *loader.Loader
	newFrontend FrontendConstructor
}

// New creates a new emulation pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:      logger,
		detector:    detector.New(logger),
		loader:      loader.New(),
		newFrontend: frontend.New,
	}
}

// Execute loads the ROM file and runs it until the frontend quits, the cycle
// limit is reached, the machine faults or the context is canceled. The
// frontend runs on the calling goroutine since window frontends require the
// main goroutine.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program) (*runner.Runner, error) {
	system := p.detector.Detect(opts)
	if err := p.detector.Validate(system); err != nil {
		return nil, fmt.Errorf("detecting system: %w", err)
	}

	rom, err := p.loader.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("loading ROM: %w", err)
	}

	machine := chip8.New(opts.Seed)
	if err := machine.LoadROM(rom); err != nil {
		return nil, fmt.Errorf("loading ROM into memory: %w", err)
	}

	return p.ExecuteWithMachine(ctx, machine, opts, system, len(rom))
}

// ExecuteWithMachine runs an already initialized machine.
// This is useful for testing and programmatic usage where the ROM is already in memory.
func (p *Pipeline) ExecuteWithMachine(ctx context.Context, machine *chip8.Machine, opts options.Program,
	system arch.System, romSize int) (*runner.Runner, error) {

	run := runner.New(p.logger, machine, opts)
	fe, err := p.newFrontend(p.logger, run, opts)
	if err != nil {
		return nil, fmt.Errorf("creating frontend: %w", err)
	}

	p.printInfo(opts, system, romSize)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		// the frontend is stopped when the machine stops
		defer cancel()
		return run.Run(groupCtx)
	})

	feErr := fe.Run(groupCtx)
	cancel()

	if err := group.Wait(); err != nil {
		return run, fmt.Errorf("running machine: %w", err)
	}
	if feErr != nil {
		return run, fmt.Errorf("running frontend: %w", feErr)
	}
	if err := ctx.Err(); err != nil {
		return run, fmt.Errorf("emulation interrupted: %w", err)
	}
	return run, nil
}

// printInfo prints information about the ROM being run.
func (p *Pipeline) printInfo(opts options.Program, system arch.System, romSize int) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Running ROM",
		log.String("file", opts.Input),
		log.Stringer("system", system),
		log.Int("size", romSize),
		log.String("frontend", opts.Frontend),
		log.Int("hz", opts.Hz),
	)
	p.logger.Debug("Random generator seeded", log.Hex("seed", opts.Seed))
}
