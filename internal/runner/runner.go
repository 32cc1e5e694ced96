// Package runner drives a machine in real time: it executes a fixed number of
// instructions per frame, ticks the timers at the frame rate and connects the
// display, keypad and sound output to the front end.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrogolib/log"
)

// Renderer draws the display.
type Renderer interface {
	Render(display *machine.Display) error
}

// SoundRecorder receives the buzzer state once per frame.
type SoundRecorder interface {
	Frame(active bool) error
}

// Runner executes a program frame by frame.
type Runner struct {
	logger  *log.Logger
	machine *machine.Machine
	opts    options.Program

	renderer Renderer
	recorder SoundRecorder
	chars    <-chan byte
	keyboard *terminal.Keyboard

	frames       int
	instructions int
}

// Option configures a Runner.
type Option func(*Runner)

// WithRenderer sets the renderer that dirty frames are drawn with.
func WithRenderer(renderer Renderer) Option {
	return func(r *Runner) {
		r.renderer = renderer
	}
}

// WithRecorder sets the recorder of the sound output.
func WithRecorder(recorder SoundRecorder) Option {
	return func(r *Runner) {
		r.recorder = recorder
	}
}

// WithInput sets the channel of terminal characters that are translated to
// keypad presses.
func WithInput(chars <-chan byte) Option {
	return func(r *Runner) {
		r.chars = chars
	}
}

// New returns a runner for the machine.
func New(logger *log.Logger, m *machine.Machine, opts options.Program, runnerOptions ...Option) *Runner {
	r := &Runner{
		logger:   logger,
		machine:  m,
		opts:     opts,
		keyboard: terminal.NewKeyboard(opts.KeyHold),
	}
	for _, option := range runnerOptions {
		option(r)
	}
	return r
}

// Run executes frames until the frame limit is reached, the context is done
// or the machine halts on an error. Headless runs with a frame limit are not
// throttled to the frame rate.
func (r *Runner) Run(ctx context.Context) error {
	if r.opts.Headless && r.opts.Frames > 0 {
		return r.runUnthrottled(ctx)
	}

	ticker := time.NewTicker(r.opts.FrameDuration())
	defer ticker.Stop()

	for !r.done() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("running program: %w", ctx.Err())
		case now := <-ticker.C:
			if err := r.Frame(now); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) runUnthrottled(ctx context.Context) error {
	now := time.Now()
	for !r.done() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("running program: %w", err)
		}
		if err := r.Frame(now); err != nil {
			return err
		}
		now = now.Add(r.opts.FrameDuration())
	}
	return nil
}

func (r *Runner) done() bool {
	return r.opts.Frames > 0 && r.frames >= r.opts.Frames
}

// Frame processes pending input, executes the instructions of one frame,
// ticks the timers once and outputs display and sound. Execution errors halt
// the program, the error is logged and returned.
func (r *Runner) Frame(now time.Time) error {
	if err := r.processInput(now); err != nil {
		return err
	}

	for range r.opts.CyclesPerFrame {
		outcome, err := r.machine.Step()
		if err != nil {
			r.halt(err)
			return fmt.Errorf("frame %d: %w", r.frames, err)
		}
		if outcome.Waiting {
			break
		}
		r.instructions++
	}

	r.machine.TickTimers()

	if r.recorder != nil {
		if err := r.recorder.Frame(r.machine.SoundTimer() > 0); err != nil {
			return fmt.Errorf("recording sound: %w", err)
		}
	}

	display := r.machine.Display()
	if r.renderer != nil && display.Dirty() {
		if err := r.renderer.Render(display); err != nil {
			return fmt.Errorf("rendering display: %w", err)
		}
		display.ClearDirty()
	}

	r.frames++
	return nil
}

// Frames returns the number of frames run.
func (r *Runner) Frames() int {
	return r.frames
}

// Instructions returns the number of instructions executed.
func (r *Runner) Instructions() int {
	return r.instructions
}

func (r *Runner) processInput(now time.Time) error {
	if r.chars != nil {
	read:
		for {
			select {
			case c := <-r.chars:
				key, ok := terminal.KeyFor(c)
				if !ok || !r.keyboard.Press(key, now) {
					continue
				}
				if err := r.machine.KeyDown(key); err != nil {
					return fmt.Errorf("pressing key %X: %w", key, err)
				}
			default:
				break read
			}
		}
	}

	for _, key := range r.keyboard.Expired(now) {
		if err := r.machine.KeyUp(key); err != nil {
			return fmt.Errorf("releasing key %X: %w", key, err)
		}
	}
	return nil
}

func (r *Runner) halt(err error) {
	var execErr *machine.ExecutionError
	if errors.As(err, &execErr) {
		r.logger.Error("Execution halted",
			log.Hex("address", execErr.Address),
			log.Hex("opcode", execErr.Word),
			log.Err(execErr.Err))
		return
	}
	r.logger.Error("Execution halted", log.Err(err))
}

// WriteState writes a dump of the registers and timers.
func (r *Runner) WriteState(w io.Writer) error {
	regs := r.machine.Registers()
	if _, err := fmt.Fprintf(w, "PC=$%03X I=$%03X SP=%d DT=%d ST=%d frames=%d instructions=%d\n",
		regs.PC, regs.I, regs.SP, r.machine.DelayTimer(), r.machine.SoundTimer(), r.frames, r.instructions); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	for x := range uint8(machine.RegisterCount) {
		value, err := regs.V(x)
		if err != nil {
			return fmt.Errorf("reading register V%X: %w", x, err)
		}
		sep := " "
		if x%8 == 7 {
			sep = "\n"
		}
		if _, err := fmt.Fprintf(w, "V%X=$%02X%s", x, value, sep); err != nil {
			return fmt.Errorf("writing state: %w", err)
		}
	}
	return nil
}
