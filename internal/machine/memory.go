package machine

import "fmt"

// CHIP-8 memory layout constants.
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000

	// MaxAddress is the highest valid memory address.
	MaxAddress = MemorySize - 1

	// ProgramStart is the address that programs are loaded to and
	// execution starts at.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program image that fits into memory.
	MaxProgramSize = MemorySize - ProgramStart

	// FontAddress is the address of the built-in hexadecimal digit glyphs.
	FontAddress = 0x050

	// FontGlyphSize is the number of bytes per digit glyph.
	FontGlyphSize = 5
)

// fontEnd is the first address after the font table.
const fontEnd = FontAddress + 16*FontGlyphSize

// font contains the 4x5 glyphs for the hexadecimal digits 0-F.
var font = [16 * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the bounds checked 4KB main memory of the machine.
type Memory struct {
	data [MemorySize]byte
}

// newMemory returns a zeroed memory with the font table installed.
func newMemory() Memory {
	var mem Memory
	copy(mem.data[FontAddress:], font[:])
	return mem
}

// Read returns the byte at the given address.
func (m *Memory) Read(address uint16) (byte, error) {
	if err := checkRange(address, 1); err != nil {
		return 0, err
	}
	return m.data[address], nil
}

// ReadWord returns the big-endian 16-bit word at the given address.
func (m *Memory) ReadWord(address uint16) (uint16, error) {
	if err := checkRange(address, 2); err != nil {
		return 0, err
	}
	return uint16(m.data[address])<<8 | uint16(m.data[address+1]), nil
}

// ReadBlock returns a copy of count bytes starting at the given address.
func (m *Memory) ReadBlock(address uint16, count int) ([]byte, error) {
	if err := checkRange(address, count); err != nil {
		return nil, err
	}
	buf := make([]byte, count)
	copy(buf, m.data[address:])
	return buf, nil
}

// Write sets the byte at the given address.
func (m *Memory) Write(address uint16, value byte) error {
	return m.WriteBlock(address, []byte{value})
}

// WriteBlock copies data to memory starting at the given address. The whole
// range is validated before any byte is written.
func (m *Memory) WriteBlock(address uint16, data []byte) error {
	if err := checkRange(address, len(data)); err != nil {
		return err
	}
	if len(data) > 0 && overlapsFont(int(address), len(data)) {
		return fmt.Errorf("%w: $%03X-$%03X", ErrProtectedWrite, address, int(address)+len(data)-1)
	}
	copy(m.data[address:], data)
	return nil
}

func checkRange(address uint16, count int) error {
	if count < 0 || int(address)+count > MemorySize {
		return fmt.Errorf("%w: $%04X+%d", ErrMemoryOutOfBounds, address, count)
	}
	return nil
}

func overlapsFont(address, count int) bool {
	return address < fontEnd && address+count > FontAddress
}
