package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when the input or output is not a terminal.
var ErrNotTerminal = errors.New("not a terminal")

// Input reads single characters from a terminal switched to cbreak mode.
type Input struct {
	logger   *log.Logger
	file     *os.File
	original unix.Termios
	chars    chan byte
}

// OpenInput switches the terminal of the file to cbreak mode. Echo and line
// buffering are disabled, signal generation stays enabled so that Ctrl+C
// still interrupts the process.
func OpenInput(logger *log.Logger, file *os.File) (*Input, error) {
	if !term.IsTerminal(int(file.Fd())) {
		return nil, fmt.Errorf("input %s: %w", file.Name(), ErrNotTerminal)
	}

	in := &Input{
		logger: logger,
		file:   file,
		chars:  make(chan byte, 16),
	}
	if err := termios.Tcgetattr(file.Fd(), &in.original); err != nil {
		return nil, fmt.Errorf("getting terminal attributes: %w", err)
	}

	attr := in.original
	termios.Cfmakecbreak(&attr)
	attr.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(file.Fd(), termios.TCSANOW, &attr); err != nil {
		return nil, fmt.Errorf("setting cbreak mode: %w", err)
	}

	logger.Debug("Terminal switched to cbreak mode")
	return in, nil
}

// Start reads characters in the background until the input returns an error
// or the context is done. A done context is only noticed once the blocking
// read of the next character returns.
func (in *Input) Start(ctx context.Context) {
	go in.read(ctx)
}

// Chars returns the channel of characters read.
func (in *Input) Chars() <-chan byte {
	return in.chars
}

// Close restores the original terminal mode.
func (in *Input) Close() error {
	if err := termios.Tcsetattr(in.file.Fd(), termios.TCSANOW, &in.original); err != nil {
		return fmt.Errorf("restoring terminal mode: %w", err)
	}
	in.logger.Debug("Terminal mode restored")
	return nil
}

func (in *Input) read(ctx context.Context) {
	buf := make([]byte, 8)
	for {
		n, err := in.file.Read(buf)
		if err != nil {
			in.logger.Debug("Terminal input closed", log.Err(err))
			return
		}

		for _, c := range buf[:n] {
			select {
			case in.chars <- c:
			case <-ctx.Done():
				return
			default:
				// drop input while the consumer is behind, keys auto repeat
			}
		}
	}
}

// CheckSize returns an error if the terminal of the file is too small to show
// the display.
func CheckSize(file *os.File) error {
	fd := int(file.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("output %s: %w", file.Name(), ErrNotTerminal)
	}

	width, height, err := term.GetSize(fd)
	if err != nil {
		return fmt.Errorf("getting terminal size: %w", err)
	}
	if width < DisplayColumns || height < Rows {
		return fmt.Errorf("terminal size %dx%d too small, need at least %dx%d", width, height, DisplayColumns, Rows)
	}
	return nil
}
