// Package opcode decodes CHIP-8 instruction words into tagged instructions.
//
// Decoding is a pure function of the four nibbles of a 16-bit instruction
// word and never touches machine state. Every word of the base instruction
// set maps to exactly one Kind, any other nibble pattern is rejected with
// ErrUnrecognized.
package opcode

import (
	"errors"
	"fmt"
)

// Size is the size of a CHIP-8 instruction in bytes.
const Size = 2

// ErrUnrecognized is returned for instruction words outside of the base
// instruction set.
var ErrUnrecognized = errors.New("unrecognized opcode")

// Kind identifies the operation of a decoded instruction.
type Kind uint8

// Instruction kinds of the base CHIP-8 instruction set, named after the
// classic mnemonics with the operand form as suffix where a mnemonic is
// shared by several encodings.
const (
	Unknown Kind = iota
	Sys          // 0NNN
	Cls          // 00E0
	Ret          // 00EE
	Jp           // 1NNN
	Call         // 2NNN
	SeImm        // 3XKK
	SneImm       // 4XKK
	SeReg        // 5XY0
	LdImm        // 6XKK
	AddImm       // 7XKK
	LdReg        // 8XY0
	Or           // 8XY1
	And          // 8XY2
	Xor          // 8XY3
	AddReg       // 8XY4
	Sub          // 8XY5
	Shr          // 8XY6
	Subn         // 8XY7
	Shl          // 8XYE
	SneReg       // 9XY0
	LdI          // ANNN
	JpV0         // BNNN
	Rnd          // CXKK
	Drw          // DXYN
	Skp          // EX9E
	Sknp         // EXA1
	LdVxDT       // FX07
	LdVxK        // FX0A
	LdDTVx       // FX15
	LdSTVx       // FX18
	AddI         // FX1E
	LdF          // FX29
	LdB          // FX33
	LdIVx        // FX55
	LdVxI        // FX65

	kindCount
)

// Instruction is a decoded instruction word with its operands extracted.
// Operands that the kind does not use are still filled from the word.
type Instruction struct {
	Kind Kind
	Word uint16

	X   uint8  // second nibble, register index
	Y   uint8  // third nibble, register index
	N   uint8  // fourth nibble, sprite height
	KK  uint8  // low byte, immediate value
	NNN uint16 // low 12 bits, address
}

// Decode decodes a big-endian instruction word.
func Decode(word uint16) (Instruction, error) {
	ins := Instruction{
		Word: word,
		X:    uint8(word>>8) & 0x0F,
		Y:    uint8(word>>4) & 0x0F,
		N:    uint8(word) & 0x0F,
		KK:   uint8(word),
		NNN:  word & 0x0FFF,
	}

	ins.Kind = decodeKind(word, ins.N, ins.KK)
	if ins.Kind == Unknown {
		return ins, fmt.Errorf("%w: %04X", ErrUnrecognized, word)
	}
	return ins, nil
}

// DecodeBytes decodes the instruction stored in two consecutive bytes,
// high byte first.
func DecodeBytes(data []byte) (Instruction, error) {
	if len(data) < Size {
		return Instruction{}, fmt.Errorf("%w: %d bytes given", ErrUnrecognized, len(data))
	}
	return Decode(uint16(data[0])<<8 | uint16(data[1]))
}

func decodeKind(word uint16, n, kk uint8) Kind {
	switch word >> 12 {
	case 0x0:
		switch word {
		case 0x00E0:
			return Cls
		case 0x00EE:
			return Ret
		}
		return Sys
	case 0x1:
		return Jp
	case 0x2:
		return Call
	case 0x3:
		return SeImm
	case 0x4:
		return SneImm
	case 0x5:
		if n == 0 {
			return SeReg
		}
	case 0x6:
		return LdImm
	case 0x7:
		return AddImm
	case 0x8:
		return decodeALU(n)
	case 0x9:
		if n == 0 {
			return SneReg
		}
	case 0xA:
		return LdI
	case 0xB:
		return JpV0
	case 0xC:
		return Rnd
	case 0xD:
		return Drw
	case 0xE:
		switch kk {
		case 0x9E:
			return Skp
		case 0xA1:
			return Sknp
		}
	case 0xF:
		return decodeMisc(kk)
	}
	return Unknown
}

// decodeALU decodes the 8XYN register arithmetic family.
func decodeALU(n uint8) Kind {
	switch n {
	case 0x0:
		return LdReg
	case 0x1:
		return Or
	case 0x2:
		return And
	case 0x3:
		return Xor
	case 0x4:
		return AddReg
	case 0x5:
		return Sub
	case 0x6:
		return Shr
	case 0x7:
		return Subn
	case 0xE:
		return Shl
	}
	return Unknown
}

// decodeMisc decodes the FXKK timer, keypad and memory family.
func decodeMisc(kk uint8) Kind {
	switch kk {
	case 0x07:
		return LdVxDT
	case 0x0A:
		return LdVxK
	case 0x15:
		return LdDTVx
	case 0x18:
		return LdSTVx
	case 0x1E:
		return AddI
	case 0x29:
		return LdF
	case 0x33:
		return LdB
	case 0x55:
		return LdIVx
	case 0x65:
		return LdVxI
	}
	return Unknown
}
