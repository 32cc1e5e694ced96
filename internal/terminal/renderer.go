package terminal

import (
	"bytes"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/machine"
)

const (
	escClearScreen = "\x1b[2J"
	escCursorHome  = "\x1b[H"
	escHideCursor  = "\x1b[?25l"
	escShowCursor  = "\x1b[?25h"
)

// Terminal cells the display occupies, every row shows two pixel lines.
const (
	DisplayColumns = machine.DisplayWidth
	Rows           = machine.DisplayHeight / 2
)

// Renderer draws the display to a terminal using half block characters.
type Renderer struct {
	w       io.Writer
	buf     bytes.Buffer
	started bool
}

// NewRenderer returns a renderer writing to the given writer.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Render redraws the full display. The output is assembled in a buffer and
// written with a single call to avoid flicker.
func (r *Renderer) Render(display *machine.Display) error {
	r.buf.Reset()
	if !r.started {
		r.buf.WriteString(escClearScreen)
		r.buf.WriteString(escHideCursor)
		r.started = true
	}
	r.buf.WriteString(escCursorHome)

	for y := 0; y < machine.DisplayHeight; y += 2 {
		for x := range machine.DisplayWidth {
			r.buf.WriteString(cell(display.Pixel(x, y), display.Pixel(x, y+1)))
		}
		r.buf.WriteString("\r\n")
	}

	if _, err := r.w.Write(r.buf.Bytes()); err != nil {
		return fmt.Errorf("writing display: %w", err)
	}
	return nil
}

// Close restores the cursor if anything was rendered.
func (r *Renderer) Close() error {
	if !r.started {
		return nil
	}
	if _, err := io.WriteString(r.w, escShowCursor); err != nil {
		return fmt.Errorf("restoring cursor: %w", err)
	}
	return nil
}

func cell(top, bottom bool) string {
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
