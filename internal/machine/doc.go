// Package machine implements the CHIP-8 virtual machine core: memory,
// registers, display, timers, keypad and the instruction executor.
//
// # Memory Layout
//
// The machine owns 4KB of byte addressable memory (0x000-0xFFF):
//
//	0x000-0x04F: unused interpreter area
//	0x050-0x09F: built-in hexadecimal digit glyphs (read only)
//	0x0A0-0x1FF: unused interpreter area
//	0x200-0xFFF: program image and program data
//
// Unlike some historical descriptions of the platform, the display is not
// mapped into memory at 0xF00. The framebuffer is a separate structure owned
// by the machine, so programs can use the whole range up to 0xFFF.
//
// # Flag Register
//
// Register VF is a general purpose register that is also overwritten as a
// side effect by several instructions: carry for register addition, NOT
// borrow for subtraction, the bit shifted out by shifts and the collision
// result of sprite drawing. The flag is always written after the result,
// so an instruction with VF as destination ends with the flag value in VF.
// Programs depend on this convention and it is kept as is.
//
// # Conventions
//
// Where historical interpreters disagree, the machine uses these rules:
//   - shifts (8XY6, 8XYE) shift VX in place and ignore VY
//   - 8XY7 sets VF to 1 if VY >= VX, otherwise 0
//   - FX55 and FX65 leave the address register unchanged
//   - 0NNN jumps to NNN
//   - FX1E does not touch VF and keeps the address register within 12 bits
//   - the program counter is not required to be even, every fetch is only
//     checked against the memory bounds
//
// # Execution Model
//
// The machine is driven from the outside: Step executes at most one
// instruction, TickTimers decrements the timers and KeyDown/KeyUp update the
// keypad. The wait for key instruction does not block, it puts the machine
// in a waiting state in which Step returns immediately until KeyDown
// resolves the wait. A Machine must only be used from a single goroutine.
package machine
