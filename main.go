// Package main implements the main entry point for a CHIP-8 interpreter
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/audio"
	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			printBanner(logger, opts)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts)
	printBanner(logger, opts)

	if err := run(ctx, logger, opts); err != nil {
		if reportError(logger, err) {
			os.Exit(1)
		}
	}
}

// reportError logs a run error and returns whether the process should exit
// with a failure code.
func reportError(logger *log.Logger, err error) bool {
	// Handle context cancellation (Ctrl+C) gracefully
	if errors.Is(err, context.Canceled) {
		logger.Info("Operation cancelled")
		return false
	}

	// execution errors are logged by the runner when it halts
	var execErr *machine.ExecutionError
	if !errors.As(err, &execErr) {
		logger.Error("Running program failed", log.Err(err))
	}
	return true
}

func printBanner(logger *log.Logger, opts options.Program) {
	if opts.Quiet {
		return
	}
	logger.Info("retrochip8",
		log.String("version", buildinfo.Version(version, commit, date)),
		log.String("system", string(arch.CHIP8System)))
}

func run(ctx context.Context, logger *log.Logger, opts options.Program) error {
	m := machine.New(machineOptions(logger, opts)...)

	program, err := loader.New(logger).LoadInto(opts.Input, m)
	if err != nil {
		return err
	}
	logger.Debug("Program loaded",
		log.String("file", opts.Input),
		log.Int("size", len(program)))

	if opts.Disasm {
		return printListing(logger, opts, program)
	}

	var runnerOptions []runner.Option

	if opts.Wav != "" {
		recorder, err := audio.Create(opts.Wav, opts.TimerRate)
		if err != nil {
			return fmt.Errorf("creating sound recording: %w", err)
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				logger.Error("Closing sound recording failed", log.Err(err))
			}
		}()
		runnerOptions = append(runnerOptions, runner.WithRecorder(recorder))
	}

	if !opts.Headless {
		frontEnd, err := openTerminal(ctx, logger, opts)
		if err != nil {
			return err
		}
		defer frontEnd.close(logger)
		runnerOptions = append(runnerOptions, frontEnd.options()...)
	}

	r := runner.New(logger, m, opts, runnerOptions...)
	runErr := r.Run(ctx)

	if opts.Headless {
		if err := r.WriteState(os.Stdout); err != nil {
			return err
		}
	}
	return runErr
}

func machineOptions(logger *log.Logger, opts options.Program) []machine.Option {
	machineOpts := []machine.Option{machine.WithLogger(logger)}
	if opts.Seed != 0 {
		machineOpts = append(machineOpts, machine.WithSeed(opts.Seed))
	}
	return machineOpts
}

func printListing(logger *log.Logger, opts options.Program, program []byte) error {
	dis := disasm.New(logger, disasm.Options{
		HexComments:    !opts.NoHexComments,
		OffsetComments: !opts.NoOffsets,
		ZeroBytes:      opts.ZeroBytes,
	})

	lines, err := dis.Process(program)
	if err != nil {
		return fmt.Errorf("disassembling program: %w", err)
	}
	if err := dis.Write(os.Stdout, lines); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return nil
}

type terminalFrontEnd struct {
	input    *terminal.Input
	renderer *terminal.Renderer
}

func openTerminal(ctx context.Context, logger *log.Logger, opts options.Program) (*terminalFrontEnd, error) {
	if err := terminal.CheckSize(os.Stdout); err != nil {
		return nil, fmt.Errorf("checking terminal: %w", err)
	}

	input, err := terminal.OpenInput(logger, os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("opening terminal input: %w", err)
	}
	input.Start(ctx)

	logger.Debug("Terminal front end opened", log.String("key_hold", opts.KeyHold.String()))
	return &terminalFrontEnd{
		input:    input,
		renderer: terminal.NewRenderer(os.Stdout),
	}, nil
}

func (t *terminalFrontEnd) options() []runner.Option {
	return []runner.Option{
		runner.WithRenderer(t.renderer),
		runner.WithInput(t.input.Chars()),
	}
}

func (t *terminalFrontEnd) close(logger *log.Logger) {
	if err := t.renderer.Close(); err != nil {
		logger.Error("Closing renderer failed", log.Err(err))
	}
	if err := t.input.Close(); err != nil {
		logger.Error("Closing terminal input failed", log.Err(err))
	}
}
