package machine

import (
	"fmt"
	"math/rand/v2"

	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/log"
)

// Machine is a CHIP-8 virtual machine instance.
type Machine struct {
	logger *log.Logger
	rng    *rand.Rand

	memory  Memory
	regs    Registers
	display Display
	timers  Timers
	keypad  Keypad

	program  []byte             // loaded program image, restored on Reset
	blocking opcode.Instruction // pending wait for key instruction
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger that executed instructions are traced to at
// debug level.
func WithLogger(logger *log.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithSeed makes the random number instruction deterministic.
func WithSeed(seed uint64) Option {
	return func(m *Machine) {
		m.rng = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	}
}

// WithRandomSource sets the source of the random number instruction.
func WithRandomSource(src rand.Source) Option {
	return func(m *Machine) {
		m.rng = rand.New(src)
	}
}

// Outcome describes the result of a successful Step.
type Outcome struct {
	Address     uint16             // address of the instruction
	Instruction opcode.Instruction // executed or pending instruction

	Waiting bool // no instruction ran, the machine waits for a key press
	Resumed bool // a resolved wait for key instruction was completed
}

// Redraw returns whether the step changed the display.
func (o Outcome) Redraw() bool {
	if o.Waiting || o.Resumed {
		return false
	}
	return o.Instruction.Kind == opcode.Cls || o.Instruction.Kind == opcode.Drw
}

// Sound returns whether the step set the sound timer.
func (o Outcome) Sound() bool {
	return !o.Waiting && !o.Resumed && o.Instruction.Kind == opcode.LdSTVx
}

// New returns a new machine with the font table installed and the program
// counter at the program start address.
func New(options ...Option) *Machine {
	m := &Machine{
		memory: newMemory(),
		regs:   newRegisters(),
	}
	for _, option := range options {
		option(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return m
}

// LoadProgram copies a program image into memory at the program start
// address. The program content is not validated.
func (m *Machine) LoadProgram(data []byte) error {
	if len(data) > MaxProgramSize {
		return fmt.Errorf("program too large: %d bytes (max: %d)", len(data), MaxProgramSize)
	}
	if err := m.memory.WriteBlock(ProgramStart, data); err != nil {
		return fmt.Errorf("writing program: %w", err)
	}
	m.program = append(m.program[:0], data...)
	return nil
}

// Reset restores the state after construction and reloads the program
// image that was loaded last.
func (m *Machine) Reset() {
	m.memory = newMemory()
	copy(m.memory.data[ProgramStart:], m.program)
	m.regs = newRegisters()
	m.display = Display{dirty: true}
	m.timers = Timers{}
	m.keypad = Keypad{}
	m.blocking = opcode.Instruction{}
}

// Step executes one instruction. While the machine waits for a key press it
// returns immediately without fetching. On error the machine state is left
// unmodified and the error is an *ExecutionError.
func (m *Machine) Step() (Outcome, error) {
	if m.keypad.waiting {
		return Outcome{Address: m.regs.PC, Instruction: m.blocking, Waiting: true}, nil
	}

	if m.keypad.resolved {
		m.keypad.resolved = false
		outcome := Outcome{Address: m.regs.PC, Instruction: m.blocking, Resumed: true}
		m.regs.PC += opcode.Size
		return outcome, nil
	}

	pc := m.regs.PC
	word, err := m.memory.ReadWord(pc)
	if err != nil {
		return Outcome{Address: pc}, &ExecutionError{Address: pc, Err: fmt.Errorf("fetching instruction: %w", err)}
	}

	ins, err := opcode.Decode(word)
	if err != nil {
		return Outcome{Address: pc, Instruction: ins}, &ExecutionError{Address: pc, Word: word, Err: err}
	}

	if m.logger != nil {
		m.logger.Debug("Executing instruction",
			log.Hex("address", pc),
			log.String("instruction", ins.String()))
	}

	if err := m.execute(ins); err != nil {
		return Outcome{Address: pc, Instruction: ins}, &ExecutionError{Address: pc, Word: word, Err: err}
	}
	return Outcome{Address: pc, Instruction: ins}, nil
}

// TickTimers decrements the delay and sound timers, stopping at zero. It is
// called by the driver at a fixed rate, usually 60 times per second.
func (m *Machine) TickTimers() {
	m.timers.tick()
}

// KeyDown marks a key as pressed. If the machine waits for a key press, the
// key is written to the target register and the wait is resolved.
func (m *Machine) KeyDown(key uint8) error {
	if err := m.keypad.set(key, true); err != nil {
		return err
	}
	if !m.keypad.waiting {
		return nil
	}

	target := m.keypad.resolve()
	m.regs.set(target, key)
	if m.logger != nil {
		m.logger.Debug("Key wait resolved",
			log.Uint8("key", key),
			log.Uint8("register", target))
	}
	return nil
}

// KeyUp marks a key as released.
func (m *Machine) KeyUp(key uint8) error {
	return m.keypad.set(key, false)
}

// Display returns the framebuffer.
func (m *Machine) Display() *Display {
	return &m.display
}

// Keypad returns the keypad state.
func (m *Machine) Keypad() *Keypad {
	return &m.keypad
}

// SoundTimer returns the current sound timer value.
func (m *Machine) SoundTimer() byte {
	return m.timers.Sound()
}

// DelayTimer returns the current delay timer value.
func (m *Machine) DelayTimer() byte {
	return m.timers.Delay()
}

// Registers returns a copy of the register file. Changes to the copy do not
// affect the machine.
func (m *Machine) Registers() Registers {
	return m.regs
}

// PC returns the program counter.
func (m *Machine) PC() uint16 {
	return m.regs.PC
}

// Memory returns the main memory. Callers outside of the machine must only
// read from it while a program runs.
func (m *Machine) Memory() *Memory {
	return &m.memory
}
