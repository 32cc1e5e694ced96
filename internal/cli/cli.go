// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/retroenv/retrochip8/internal/options"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts := options.NewProgram()
	keyHold := readOptionFlags(flags, &opts)
	readOutputFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if opts.Input == "" {
		opts.Input = args[0]
	}
	opts.KeyHold = time.Duration(*keyHold) * time.Millisecond

	if err := validateOptions(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <program to run>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after program file, please pass the program file as last argument", arg),
			}
		}
	}
	return nil
}

// validateOptions checks the value ranges of the speed options
func validateOptions(opts options.Program) error {
	switch {
	case opts.CyclesPerFrame <= 0:
		return fmt.Errorf("invalid instructions per frame %d: must be positive", opts.CyclesPerFrame)
	case opts.TimerRate <= 0:
		return fmt.Errorf("invalid timer rate %d: must be positive", opts.TimerRate)
	case opts.Frames < 0:
		return fmt.Errorf("invalid frame limit %d: must not be negative", opts.Frames)
	case opts.KeyHold <= 0:
		return fmt.Errorf("invalid key hold time %s: must be positive", opts.KeyHold)
	case opts.Disasm && opts.Wav != "":
		return fmt.Errorf("audio recording is not supported when printing a listing")
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) *int {
	flags.StringVar(&opts.Input, "i", "", "name of the input program file")
	flags.StringVar(&opts.Wav, "wav", "", "name of a .wav file to record the sound output to")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.Disasm, "disasm", false, "print a disassembly listing of the program and exit")
	flags.BoolVar(&opts.Headless, "headless", false, "run without terminal display and keyboard input")
	flags.IntVar(&opts.CyclesPerFrame, "cpf", options.DefaultCyclesPerFrame, "instructions executed per frame")
	flags.IntVar(&opts.TimerRate, "hz", options.DefaultTimerRate, "timer and display refresh rate in frames per second")
	flags.IntVar(&opts.Frames, "frames", 0, "number of frames to run, 0 runs until interrupted")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed of the random number generator, 0 uses a random seed")
	return flags.Int("keyhold", int(options.DefaultKeyHold/time.Millisecond), "milliseconds a pressed terminal key counts as held down")
}

func readOutputFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.BoolVar(&opts.NoHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in listing comments")
	flags.BoolVar(&opts.NoOffsets, "nooffsets", false, "do not output offsets in listing comments")
	flags.BoolVar(&opts.ZeroBytes, "z", false, "output the trailing zero bytes of the program in the listing")
}
