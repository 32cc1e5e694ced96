package opcode

var kindNames = [kindCount]string{
	Unknown: "",
	Sys:     "sys",
	Cls:     "cls",
	Ret:     "ret",
	Jp:      "jp",
	Call:    "call",
	SeImm:   "se",
	SneImm:  "sne",
	SeReg:   "se",
	LdImm:   "ld",
	AddImm:  "add",
	LdReg:   "ld",
	Or:      "or",
	And:     "and",
	Xor:     "xor",
	AddReg:  "add",
	Sub:     "sub",
	Shr:     "shr",
	Subn:    "subn",
	Shl:     "shl",
	SneReg:  "sne",
	LdI:     "ld",
	JpV0:    "jp",
	Rnd:     "rnd",
	Drw:     "drw",
	Skp:     "skp",
	Sknp:    "sknp",
	LdVxDT:  "ld",
	LdVxK:   "ld",
	LdDTVx:  "ld",
	LdSTVx:  "ld",
	AddI:    "add",
	LdF:     "ld",
	LdB:     "ld",
	LdIVx:   "ld",
	LdVxI:   "ld",
}

// Name returns the assembler mnemonic of the kind.
func (k Kind) Name() string {
	if k >= kindCount {
		return ""
	}
	return kindNames[k]
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if name := k.Name(); name != "" {
		return name
	}
	return "unknown"
}

// IsJump returns true for unconditional jumps.
func (k Kind) IsJump() bool {
	return k == Jp || k == JpV0 || k == Sys
}

// IsCall returns true if the instruction is a subroutine call.
func (k Kind) IsCall() bool {
	return k == Call
}

// IsReturn returns true if the instruction is a subroutine return.
func (k Kind) IsReturn() bool {
	return k == Ret
}

// IsSkip returns true if the instruction is a conditional skip.
func (k Kind) IsSkip() bool {
	switch k {
	case SeImm, SneImm, SeReg, SneReg, Skp, Sknp:
		return true
	default:
		return false
	}
}

// IsControlFlow returns true if the instruction sets the program counter
// itself instead of relying on the automatic advance.
func (k Kind) IsControlFlow() bool {
	return k.IsJump() || k.IsCall() || k.IsReturn() || k.IsSkip()
}

// ReadsMemory returns true if the instruction reads from memory through
// the address register.
func (k Kind) ReadsMemory() bool {
	return k == Drw || k == LdVxI
}

// WritesMemory returns true if the instruction writes to memory through
// the address register.
func (k Kind) WritesMemory() bool {
	return k == LdB || k == LdIVx
}
