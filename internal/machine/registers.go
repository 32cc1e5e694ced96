package machine

import "fmt"

const (
	// RegisterCount is the number of general purpose registers.
	RegisterCount = 16

	// FlagRegister is the index of VF, the register that instructions use
	// to report carry, borrow, shifted out bits and sprite collisions.
	FlagRegister = 0xF

	// StackDepth is the maximum number of nested subroutine calls.
	StackDepth = 16
)

// Registers contains the register file of the machine.
type Registers struct {
	v [RegisterCount]byte

	I  uint16 // address register
	PC uint16 // program counter
	SP uint8  // number of active stack entries

	Stack [StackDepth]uint16 // return addresses
}

func newRegisters() Registers {
	return Registers{PC: ProgramStart}
}

// V returns the value of general purpose register x.
func (r *Registers) V(x uint8) (byte, error) {
	if x >= RegisterCount {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRegister, x)
	}
	return r.v[x], nil
}

// get returns a register addressed by an instruction nibble.
func (r *Registers) get(x uint8) byte {
	return r.v[x&0x0F]
}

// set sets a register addressed by an instruction nibble.
func (r *Registers) set(x uint8, value byte) {
	r.v[x&0x0F] = value
}

// setFlag sets VF to 1 if the condition holds, otherwise to 0.
func (r *Registers) setFlag(condition bool) {
	var flag byte
	if condition {
		flag = 1
	}
	r.v[FlagRegister] = flag
}

func (r *Registers) push(address uint16) error {
	if int(r.SP) >= StackDepth {
		return fmt.Errorf("%w: depth %d", ErrStackOverflow, StackDepth)
	}
	r.Stack[r.SP] = address
	r.SP++
	return nil
}

func (r *Registers) pop() (uint16, error) {
	if r.SP == 0 {
		return 0, ErrStackUnderflow
	}
	r.SP--
	return r.Stack[r.SP], nil
}
