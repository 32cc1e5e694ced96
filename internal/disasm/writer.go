package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
)

// Write writes the listing as assembly source.
func (d *Disasm) Write(w io.Writer, lines []Line) error {
	if _, err := fmt.Fprintf(w, "; CHIP-8 program disassembly\n"); err != nil {
		return fmt.Errorf("writing header comment: %w", err)
	}
	if _, err := fmt.Fprintf(w, ".org $%03X\n\n", machine.ProgramStart); err != nil {
		return fmt.Errorf("writing org directive: %w", err)
	}

	end := d.endIndex(lines)
	for _, line := range lines[:end] {
		if line.Label != "" {
			if _, err := fmt.Fprintf(w, "%s:\n", line.Label); err != nil {
				return fmt.Errorf("writing label %s: %w", line.Label, err)
			}
		}

		if err := d.writeLine(w, line); err != nil {
			return fmt.Errorf("writing line at $%03X: %w", line.Address, err)
		}
	}
	return nil
}

func (d *Disasm) writeLine(w io.Writer, line Line) error {
	text := "    " + line.Code
	if line.IsData() {
		var buf strings.Builder
		buf.WriteString(fmt.Sprintf("    .byte $%02X", line.Data[0]))
		for _, b := range line.Data[1:] {
			buf.WriteString(fmt.Sprintf(", $%02X", b))
		}
		text = buf.String()
	}

	comment := d.comment(line)
	if comment == "" {
		_, err := fmt.Fprintf(w, "%s\n", text)
		return err
	}
	_, err := fmt.Fprintf(w, "%-32s ; %s\n", text, comment)
	return err
}

func (d *Disasm) comment(line Line) string {
	var parts []string
	if d.options.OffsetComments {
		parts = append(parts, fmt.Sprintf("$%03X", line.Address))
	}
	if d.options.HexComments {
		hex := make([]string, len(line.Data))
		for i, b := range line.Data {
			hex[i] = fmt.Sprintf("%02X", b)
		}
		parts = append(parts, strings.Join(hex, " "))
	}
	return strings.Join(parts, " ")
}

// endIndex returns the index after the last line that is not trailing zero
// data.
func (d *Disasm) endIndex(lines []Line) int {
	if d.options.ZeroBytes {
		return len(lines)
	}

	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if line.Label != "" || !line.IsData() && line.Instruction.Word != 0 {
			return i + 1
		}
		for _, b := range line.Data {
			if b != 0 {
				return i + 1
			}
		}
	}
	return 0
}
