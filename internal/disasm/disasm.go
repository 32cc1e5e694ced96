// Package disasm produces assembly listings of CHIP-8 program images.
//
// The listing is a linear sweep starting at the program start address.
// Every word is decoded with the interpreter's decoder and cross-checked
// against the retrogolib CHIP-8 opcode table, words that neither knows are
// emitted as data. Jump, call and address register targets inside the
// program get labels.
package disasm

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

const (
	funcNaming  = "_func_%04x"
	labelNaming = "_label_%04x"
	dataNaming  = "_data_%04x"
)

// Options controls the listing output.
type Options struct {
	HexComments    bool // output opcode bytes as hex values in comments
	OffsetComments bool // output addresses in comments
	ZeroBytes      bool // output trailing zero bytes
}

// Line is one line of a listing, either an instruction or data.
type Line struct {
	Address     uint16
	Data        []byte
	Instruction opcode.Instruction
	Code        string // formatted instruction, empty for data
	Label       string
}

// IsData returns whether the line contains data instead of an instruction.
func (l Line) IsData() bool {
	return l.Code == ""
}

// Disasm disassembles program images.
type Disasm struct {
	logger  *log.Logger
	options Options

	jumpTargets set.Set[uint16]
	callTargets set.Set[uint16]
	dataTargets set.Set[uint16]
}

// New returns a new disassembler.
func New(logger *log.Logger, options Options) *Disasm {
	return &Disasm{
		logger:  logger,
		options: options,
	}
}

// Process disassembles a program image that is loaded at the program start
// address.
func (d *Disasm) Process(program []byte) ([]Line, error) {
	if len(program) > machine.MaxProgramSize {
		return nil, fmt.Errorf("program too large: %d bytes (max: %d)", len(program), machine.MaxProgramSize)
	}

	d.jumpTargets = set.New[uint16]()
	d.callTargets = set.New[uint16]()
	d.dataTargets = set.New[uint16]()

	lines := make([]Line, 0, len(program)/opcode.Size+1)
	for offset := 0; offset < len(program); offset += opcode.Size {
		address := uint16(machine.ProgramStart + offset)

		if offset+opcode.Size > len(program) {
			lines = append(lines, Line{Address: address, Data: program[offset:]})
			break
		}

		data := program[offset : offset+opcode.Size]
		line := Line{Address: address, Data: data}
		if ins, ok := d.decode(address, data); ok {
			line.Instruction = ins
			line.Code = formatInstruction(ins)
			d.collectTarget(ins)
		}
		lines = append(lines, line)
	}

	d.assignLabels(lines)
	return lines, nil
}

// decode decodes the instruction word and checks it against the opcode
// table of the reference library.
func (d *Disasm) decode(address uint16, data []byte) (opcode.Instruction, bool) {
	ins, err := opcode.DecodeBytes(data)
	if err != nil {
		return ins, false
	}

	if _, ok := lookup(ins.Word); !ok {
		d.logger.Debug("Instruction missing in reference opcode table",
			log.Hex("address", address),
			log.Hex("opcode", ins.Word))
	}
	return ins, true
}

// lookup finds the opcode table entry matching the instruction word.
func lookup(word uint16) (chip8.Opcode, bool) {
	opcodes := chip8.Opcodes[int(word>>12)]
	for _, op := range opcodes {
		if op.Info.Mask&word == op.Info.Value && op.Instruction != nil {
			return op, true
		}
	}
	return chip8.Opcode{}, false
}

// formatInstruction formats an instruction, preferring the mnemonic of the
// reference opcode table.
func formatInstruction(ins opcode.Instruction) string {
	name := ins.Kind.Name()
	if op, ok := lookup(ins.Word); ok {
		name = op.Instruction.Name
	}
	if params := ins.Params(); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}
	return name
}

func (d *Disasm) collectTarget(ins opcode.Instruction) {
	if ins.NNN < machine.ProgramStart {
		return
	}

	switch {
	case ins.Kind == opcode.Jp:
		d.jumpTargets.Add(ins.NNN)
	case ins.Kind.IsCall():
		d.callTargets.Add(ins.NNN)
	case ins.Kind == opcode.LdI:
		d.dataTargets.Add(ins.NNN)
	}
}

func (d *Disasm) assignLabels(lines []Line) {
	for i := range lines {
		line := &lines[i]
		switch {
		case line.Address == machine.ProgramStart:
			line.Label = "Start"
		case d.callTargets.Contains(line.Address):
			line.Label = fmt.Sprintf(funcNaming, line.Address)
		case d.jumpTargets.Contains(line.Address):
			line.Label = fmt.Sprintf(labelNaming, line.Address)
		case d.dataTargets.Contains(line.Address):
			line.Label = fmt.Sprintf(dataNaming, line.Address)
		}
	}
}
