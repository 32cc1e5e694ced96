package opcode

import "fmt"

// String returns the instruction formatted as assembly source.
func (i Instruction) String() string {
	name := i.Kind.Name()
	if name == "" {
		return fmt.Sprintf(".word $%04X", i.Word)
	}
	if params := i.Params(); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}
	return name
}

// Params returns the formatted operands of the instruction.
func (i Instruction) Params() string {
	switch i.Kind {
	case Cls, Ret, Unknown:
		return ""

	case Sys, Jp, Call:
		return fmt.Sprintf("$%03X", i.NNN)
	case JpV0:
		return fmt.Sprintf("V0, $%03X", i.NNN)
	case LdI:
		return fmt.Sprintf("I, $%03X", i.NNN)

	case SeImm, SneImm, LdImm, AddImm, Rnd:
		return fmt.Sprintf("V%X, $%02X", i.X, i.KK)

	case SeReg, SneReg, LdReg, Or, And, Xor, AddReg, Sub, Subn:
		return fmt.Sprintf("V%X, V%X", i.X, i.Y)

	case Shr, Shl, Skp, Sknp:
		return fmt.Sprintf("V%X", i.X)

	case Drw:
		return fmt.Sprintf("V%X, V%X, $%X", i.X, i.Y, i.N)

	case LdVxDT:
		return fmt.Sprintf("V%X, DT", i.X)
	case LdVxK:
		return fmt.Sprintf("V%X, K", i.X)
	case LdDTVx:
		return fmt.Sprintf("DT, V%X", i.X)
	case LdSTVx:
		return fmt.Sprintf("ST, V%X", i.X)
	case AddI:
		return fmt.Sprintf("I, V%X", i.X)
	case LdF:
		return fmt.Sprintf("F, V%X", i.X)
	case LdB:
		return fmt.Sprintf("B, V%X", i.X)
	case LdIVx:
		return fmt.Sprintf("[I], V%X", i.X)
	case LdVxI:
		return fmt.Sprintf("V%X, [I]", i.X)
	}
	return ""
}
