package machine

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/opcode"
)

// execute applies a decoded instruction to the machine state. Instructions
// that are not control flow advance the program counter afterwards. All
// checks that can fail happen before any state is modified.
func (m *Machine) execute(ins opcode.Instruction) error {
	r := &m.regs
	next := r.PC + opcode.Size
	vx := r.get(ins.X)
	vy := r.get(ins.Y)

	switch ins.Kind {
	case opcode.Sys, opcode.Jp:
		r.PC = ins.NNN
		return nil

	case opcode.JpV0:
		r.PC = ins.NNN + uint16(r.get(0))
		return nil

	case opcode.Call:
		if err := r.push(next); err != nil {
			return err
		}
		r.PC = ins.NNN
		return nil

	case opcode.Ret:
		address, err := r.pop()
		if err != nil {
			return err
		}
		r.PC = address
		return nil

	case opcode.SeImm:
		m.skipIf(vx == ins.KK)
		return nil
	case opcode.SneImm:
		m.skipIf(vx != ins.KK)
		return nil
	case opcode.SeReg:
		m.skipIf(vx == vy)
		return nil
	case opcode.SneReg:
		m.skipIf(vx != vy)
		return nil
	case opcode.Skp:
		m.skipIf(m.keypad.Pressed(vx))
		return nil
	case opcode.Sknp:
		m.skipIf(!m.keypad.Pressed(vx))
		return nil

	case opcode.LdVxK:
		// the program counter stays on this instruction until the wait is
		// resolved and the following step completes it
		m.keypad.wait(ins.X)
		m.blocking = ins
		return nil

	case opcode.Cls:
		m.display.clear()

	case opcode.Drw:
		sprite, err := m.memory.ReadBlock(r.I, int(ins.N))
		if err != nil {
			return fmt.Errorf("reading sprite: %w", err)
		}
		collision := m.display.draw(vx, vy, sprite)
		r.setFlag(collision)

	default:
		if err := m.executeData(ins, vx, vy); err != nil {
			return err
		}
	}

	r.PC = next
	return nil
}

// executeData executes the register, timer and memory instructions, none
// of which modify the program counter.
func (m *Machine) executeData(ins opcode.Instruction, vx, vy byte) error {
	r := &m.regs

	switch ins.Kind {
	case opcode.LdImm:
		r.set(ins.X, ins.KK)
	case opcode.AddImm:
		r.set(ins.X, vx+ins.KK)
	case opcode.LdReg:
		r.set(ins.X, vy)
	case opcode.Or:
		r.set(ins.X, vx|vy)
	case opcode.And:
		r.set(ins.X, vx&vy)
	case opcode.Xor:
		r.set(ins.X, vx^vy)

	case opcode.AddReg:
		r.set(ins.X, vx+vy)
		r.setFlag(uint16(vx)+uint16(vy) > 0xFF)
	case opcode.Sub:
		r.set(ins.X, vx-vy)
		r.setFlag(vx >= vy)
	case opcode.Subn:
		r.set(ins.X, vy-vx)
		r.setFlag(vy >= vx)
	case opcode.Shr:
		r.set(ins.X, vx>>1)
		r.setFlag(vx&0x01 != 0)
	case opcode.Shl:
		r.set(ins.X, vx<<1)
		r.setFlag(vx&0x80 != 0)

	case opcode.LdI:
		r.I = ins.NNN
	case opcode.AddI:
		r.I = (r.I + uint16(vx)) & MaxAddress
	case opcode.LdF:
		r.I = FontAddress + uint16(vx&0x0F)*FontGlyphSize

	case opcode.Rnd:
		r.set(ins.X, byte(m.rng.Uint32())&ins.KK)

	case opcode.LdVxDT:
		r.set(ins.X, m.timers.delay)
	case opcode.LdDTVx:
		m.timers.delay = vx
	case opcode.LdSTVx:
		m.timers.sound = vx

	case opcode.LdB:
		digits := []byte{vx / 100, vx / 10 % 10, vx % 10}
		if err := m.memory.WriteBlock(r.I, digits); err != nil {
			return fmt.Errorf("storing BCD: %w", err)
		}

	case opcode.LdIVx:
		if err := m.memory.WriteBlock(r.I, r.v[:ins.X+1]); err != nil {
			return fmt.Errorf("storing registers: %w", err)
		}

	case opcode.LdVxI:
		data, err := m.memory.ReadBlock(r.I, int(ins.X)+1)
		if err != nil {
			return fmt.Errorf("loading registers: %w", err)
		}
		copy(r.v[:], data)

	default:
		return fmt.Errorf("%w: %04X", opcode.ErrUnrecognized, ins.Word)
	}
	return nil
}

// skipIf advances the program counter by one instruction, or by two if the
// condition holds.
func (m *Machine) skipIf(condition bool) {
	m.regs.PC += opcode.Size
	if condition {
		m.regs.PC += opcode.Size
	}
}
