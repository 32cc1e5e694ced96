package machine

import (
	"errors"
	"testing"

	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// newTestMachine returns a machine with the given instruction words loaded
// at the program start address.
func newTestMachine(t *testing.T, words ...uint16) *Machine {
	t.Helper()

	program := make([]byte, 0, len(words)*opcode.Size)
	for _, word := range words {
		program = append(program, byte(word>>8), byte(word))
	}

	m := New(WithLogger(log.NewTestLogger(t)), WithSeed(1))
	assert.NoError(t, m.LoadProgram(program))
	return m
}

// run executes count steps and fails the test on any error.
func run(t *testing.T, m *Machine, count int) {
	t.Helper()
	for range count {
		_, err := m.Step()
		assert.NoError(t, err)
	}
}

func TestNew(t *testing.T) {
	m := New()

	assert.Equal(t, ProgramStart, m.PC())
	regs := m.Registers()
	assert.Equal(t, 0, regs.SP)
	assert.Equal(t, 0, regs.I)
	assert.Equal(t, 0, m.SoundTimer())
	assert.Equal(t, 0, m.DelayTimer())
	assert.False(t, m.Display().Dirty())

	b, err := m.Memory().Read(FontAddress + 5)
	assert.NoError(t, err)
	assert.Equal(t, 0x20, b)
}

func TestLoadProgram(t *testing.T) {
	m := New()

	err := m.LoadProgram(make([]byte, MaxProgramSize+1))
	assert.ErrorContains(t, err, "program too large")

	assert.NoError(t, m.LoadProgram(make([]byte, MaxProgramSize)))
	assert.NoError(t, m.LoadProgram([]byte{0x12, 0x00}))

	word, err := m.Memory().ReadWord(ProgramStart)
	assert.NoError(t, err)
	assert.Equal(t, 0x1200, word)
}

func TestScenarioAddRegisters(t *testing.T) {
	m := newTestMachine(t,
		0x6005, // ld V0, 5
		0x6103, // ld V1, 3
		0x8014, // add V0, V1
	)
	run(t, m, 3)

	regs := m.Registers()
	v0, _ := regs.V(0)
	vf, _ := regs.V(FlagRegister)
	assert.Equal(t, 8, v0)
	assert.Equal(t, 0, vf)
	assert.Equal(t, 0x206, m.PC())
}

func TestScenarioStoreRegisters(t *testing.T) {
	m := newTestMachine(t,
		0xA300, // ld I, $300
		0x6001, // ld V0, 1
		0x6102, // ld V1, 2
		0xF155, // ld [I], V1
	)
	run(t, m, 4)

	mem := m.Memory()
	b0, _ := mem.Read(0x300)
	b1, _ := mem.Read(0x301)
	b2, _ := mem.Read(0x302)
	assert.Equal(t, 1, b0)
	assert.Equal(t, 2, b1)
	assert.Equal(t, 0, b2)
	assert.Equal(t, 0x300, m.Registers().I)
}

func TestCallReturn(t *testing.T) {
	m := newTestMachine(t,
		0x2206, // $200 call $206
		0x6101, // $202 ld V1, 1
		0x1204, // $204 jp $204
		0x6005, // $206 ld V0, 5
		0x00EE, // $208 ret
	)

	run(t, m, 1)
	regs := m.Registers()
	assert.Equal(t, 0x206, regs.PC)
	assert.Equal(t, 1, regs.SP)
	assert.Equal(t, 0x202, regs.Stack[0])

	run(t, m, 2)
	regs = m.Registers()
	assert.Equal(t, 0x202, regs.PC)
	assert.Equal(t, 0, regs.SP)

	run(t, m, 2)
	assert.Equal(t, 0x204, m.PC())
}

func TestReturnEmptyStack(t *testing.T) {
	m := newTestMachine(t, 0x00EE)

	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))

	var execErr *ExecutionError
	assert.True(t, errors.As(err, &execErr))
	assert.Equal(t, ProgramStart, execErr.Address)
	assert.Equal(t, 0x00EE, execErr.Word)
	assert.Equal(t, ProgramStart, m.PC())
}

func TestCallStackOverflow(t *testing.T) {
	m := newTestMachine(t, 0x2200) // call $200 recursively

	run(t, m, StackDepth)
	assert.Equal(t, StackDepth, m.Registers().SP)

	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, StackDepth, m.Registers().SP)
	assert.Equal(t, ProgramStart, m.PC())
}

func TestUnrecognizedOpcode(t *testing.T) {
	m := newTestMachine(t, 0x6042, 0xFFFF)
	run(t, m, 1)

	before := m.Registers()
	outcome, err := m.Step()
	assert.True(t, errors.Is(err, opcode.ErrUnrecognized))
	assert.Equal(t, 0x202, outcome.Address)
	assert.Equal(t, before, m.Registers())
}

func TestFetchOutOfBounds(t *testing.T) {
	m := newTestMachine(t, 0x1FFF) // jp $FFF
	run(t, m, 1)
	assert.Equal(t, MaxAddress, m.PC())

	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrMemoryOutOfBounds))
	assert.Equal(t, MaxAddress, m.PC())
}

func TestFetchOddAddress(t *testing.T) {
	m := New(WithLogger(log.NewTestLogger(t)), WithSeed(1))
	assert.NoError(t, m.LoadProgram([]byte{
		0x12, 0x03, // jp $203
		0x00,
		0x60, 0x05, // ld V0, $05 at an odd address
	}))
	run(t, m, 2)

	assert.Equal(t, 0x205, m.PC())
	regs := m.Registers()
	value, err := regs.V(0)
	assert.NoError(t, err)
	assert.Equal(t, 0x05, value)
}

func TestRegistersSnapshotInvalidIndex(t *testing.T) {
	m := newTestMachine(t)
	regs := m.Registers()

	_, err := regs.V(RegisterCount)
	assert.True(t, errors.Is(err, ErrInvalidRegister))
}

func TestJumps(t *testing.T) {
	tests := []struct {
		name  string
		words []uint16
		steps int
		pc    uint16
	}{
		{"jump", []uint16{0x1345}, 1, 0x345},
		{"legacy system call", []uint16{0x0300}, 1, 0x300},
		{"jump with offset", []uint16{0x6004, 0xB300}, 2, 0x304},
		{"jump with offset past end", []uint16{0x60FF, 0xBFFF}, 2, 0x10FE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.words...)
			run(t, m, tt.steps)
			assert.Equal(t, tt.pc, m.PC())
		})
	}
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name  string
		words []uint16
		pc    uint16 // program counter after the final instruction
	}{
		{"equal immediate taken", []uint16{0x6142, 0x3142}, 0x206},
		{"equal immediate not taken", []uint16{0x6142, 0x3143}, 0x204},
		{"not equal immediate taken", []uint16{0x6142, 0x4143}, 0x206},
		{"not equal immediate not taken", []uint16{0x6142, 0x4142}, 0x204},
		{"equal register taken", []uint16{0x6107, 0x6207, 0x5120}, 0x208},
		{"equal register not taken", []uint16{0x6107, 0x6208, 0x5120}, 0x206},
		{"not equal register taken", []uint16{0x6107, 0x6208, 0x9120}, 0x208},
		{"not equal register not taken", []uint16{0x6107, 0x6207, 0x9120}, 0x206},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.words...)
			run(t, m, len(tt.words))
			assert.Equal(t, tt.pc, m.PC())
		})
	}
}

func TestLoadAndBitwise(t *testing.T) {
	tests := []struct {
		name   string
		word   uint16
		x, y   byte
		result byte
	}{
		{"copy", 0x8120, 0x0F, 0xF0, 0xF0},
		{"or", 0x8121, 0x0F, 0xF0, 0xFF},
		{"and", 0x8122, 0x3C, 0x0F, 0x0C},
		{"xor", 0x8123, 0xFF, 0x0F, 0xF0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.word)
			m.regs.set(1, tt.x)
			m.regs.set(2, tt.y)
			m.regs.set(FlagRegister, 0xAA)

			run(t, m, 1)
			assert.Equal(t, tt.result, m.regs.get(1))
			assert.Equal(t, 0xAA, m.regs.get(FlagRegister))
		})
	}
}

func TestAddImmediateWrapsWithoutFlag(t *testing.T) {
	m := newTestMachine(t, 0x61F0, 0x7120)
	m.regs.set(FlagRegister, 0x55)
	run(t, m, 2)

	assert.Equal(t, 0x10, m.regs.get(1))
	assert.Equal(t, 0x55, m.regs.get(FlagRegister))
}

// runPairs executes a two register instruction for all operand pairs and
// verifies result and flag.
func runPairs(t *testing.T, word uint16, check func(a, b byte) (byte, byte)) {
	t.Helper()
	m := newTestMachine(t, word)
	m.logger = nil

	for a := range 256 {
		for b := range 256 {
			m.regs.PC = ProgramStart
			m.regs.set(1, byte(a))
			m.regs.set(2, byte(b))

			_, err := m.Step()
			assert.NoError(t, err)

			result, flag := check(byte(a), byte(b))
			if m.regs.get(1) != result || m.regs.get(FlagRegister) != flag {
				t.Fatalf("%04X with %d, %d: got %d flag %d, want %d flag %d",
					word, a, b, m.regs.get(1), m.regs.get(FlagRegister), result, flag)
			}
		}
	}
}

func TestAddRegisterAllPairs(t *testing.T) {
	runPairs(t, 0x8124, func(a, b byte) (byte, byte) {
		sum := int(a) + int(b)
		if sum > 255 {
			return byte(sum % 256), 1
		}
		return byte(sum), 0
	})
}

func TestSubAllPairs(t *testing.T) {
	runPairs(t, 0x8125, func(a, b byte) (byte, byte) {
		if a >= b {
			return a - b, 1
		}
		return byte(int(a) - int(b) + 256), 0
	})
}

func TestSubReverseAllPairs(t *testing.T) {
	runPairs(t, 0x8127, func(a, b byte) (byte, byte) {
		if b >= a {
			return b - a, 1
		}
		return byte(int(b) - int(a) + 256), 0
	})
}

func TestShifts(t *testing.T) {
	m := newTestMachine(t, 0x8126, 0x812E)
	m.logger = nil

	for v := range 256 {
		m.regs.PC = ProgramStart
		m.regs.set(1, byte(v))
		m.regs.set(2, 0xAA) // ignored source register
		run(t, m, 1)
		assert.Equal(t, byte(v)>>1, m.regs.get(1))
		assert.Equal(t, byte(v)&1, m.regs.get(FlagRegister))

		m.regs.set(1, byte(v))
		run(t, m, 1)
		assert.Equal(t, byte(v)<<1, m.regs.get(1))
		assert.Equal(t, byte(v)>>7, m.regs.get(FlagRegister))
	}
}

func TestFlagRegisterAsDestination(t *testing.T) {
	tests := []struct {
		name string
		word uint16
		vf   byte
		v1   byte
		want byte
	}{
		{"add carry wins", 0x8F14, 200, 100, 1},
		{"add no carry wins", 0x8F14, 1, 2, 0},
		{"sub no borrow wins", 0x8F15, 9, 3, 1},
		{"shift out bit wins", 0x8F06, 0x03, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.word)
			m.regs.set(FlagRegister, tt.vf)
			m.regs.set(1, tt.v1)
			run(t, m, 1)
			assert.Equal(t, tt.want, m.regs.get(FlagRegister))
		})
	}
}

func TestAddressRegister(t *testing.T) {
	m := newTestMachine(t,
		0xA300, // ld I, $300
		0x6110, // ld V1, $10
		0xF11E, // add I, V1
	)
	run(t, m, 3)
	assert.Equal(t, 0x310, m.Registers().I)
	assert.Equal(t, 0, m.regs.get(FlagRegister))
}

func TestAddressRegisterWraps(t *testing.T) {
	m := newTestMachine(t,
		0xAFFF, // ld I, $FFF
		0x6102, // ld V1, $02
		0xF11E, // add I, V1
	)
	run(t, m, 3)
	assert.Equal(t, 0x001, m.Registers().I)
	assert.Equal(t, 0, m.regs.get(FlagRegister))
}

func TestFontAddress(t *testing.T) {
	for digit := range 16 {
		m := newTestMachine(t, 0x6100|uint16(digit), 0xF129)
		run(t, m, 2)
		assert.Equal(t, uint16(FontAddress+digit*FontGlyphSize), m.Registers().I)
	}
}

func TestBCD(t *testing.T) {
	tests := []struct {
		value  byte
		digits [3]byte
	}{
		{0, [3]byte{0, 0, 0}},
		{7, [3]byte{0, 0, 7}},
		{42, [3]byte{0, 4, 2}},
		{234, [3]byte{2, 3, 4}},
		{255, [3]byte{2, 5, 5}},
	}

	for _, tt := range tests {
		m := newTestMachine(t, 0xA300, 0xF333)
		m.regs.set(3, tt.value)
		run(t, m, 2)

		data, err := m.Memory().ReadBlock(0x300, 3)
		assert.NoError(t, err)
		assert.Equal(t, tt.digits, [3]byte(data))
		assert.Equal(t, 0x300, m.Registers().I)
	}
}

func TestBCDOutOfBounds(t *testing.T) {
	m := newTestMachine(t, 0xAFFE, 0xF333)
	m.regs.set(3, 123)
	run(t, m, 1)

	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrMemoryOutOfBounds))
	assert.Equal(t, 0x202, m.PC())

	b, _ := m.Memory().Read(0xFFE)
	assert.Equal(t, 0, b)
}

func TestStoreIntoFontFails(t *testing.T) {
	m := newTestMachine(t, 0xA050, 0xF055)
	run(t, m, 1)

	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrProtectedWrite))

	b, _ := m.Memory().Read(FontAddress)
	assert.Equal(t, 0xF0, b)
}

func TestStoreLoadRoundTrip(t *testing.T) {
	for x := range RegisterCount {
		m := newTestMachine(t,
			0xA400,
			0xF055|uint16(x)<<8, // ld [I], Vx
			0xF065|uint16(x)<<8, // ld Vx, [I]
		)
		want := [RegisterCount]byte{}
		for i := range RegisterCount {
			want[i] = byte(i*17 + 3)
			m.regs.set(uint8(i), want[i])
		}
		run(t, m, 2)

		// clobber the registers between store and load
		for i := range RegisterCount {
			m.regs.set(uint8(i), 0)
		}
		run(t, m, 1)

		for i := 0; i <= x; i++ {
			assert.Equal(t, want[i], m.regs.get(uint8(i)))
		}
		for i := x + 1; i < RegisterCount; i++ {
			assert.Equal(t, 0, m.regs.get(uint8(i)))
		}
		assert.Equal(t, 0x400, m.Registers().I)
	}
}

func TestLoadRegistersOutOfBounds(t *testing.T) {
	m := newTestMachine(t, 0xAFFE, 0xF265)
	m.regs.set(0, 9)
	run(t, m, 1)

	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrMemoryOutOfBounds))
	assert.Equal(t, 9, m.regs.get(0))
}

func TestDrawFontGlyph(t *testing.T) {
	m := newTestMachine(t,
		0x6000, // ld V0, 0
		0xF029, // ld F, V0
		0xD005, // drw V0, V0, 5
		0xD005, // drw V0, V0, 5
	)
	run(t, m, 3)

	d := m.Display()
	assert.True(t, d.Dirty())
	assert.True(t, d.Pixel(0, 0))
	assert.True(t, d.Pixel(3, 4))
	assert.False(t, d.Pixel(1, 1))
	assert.Equal(t, 0, m.regs.get(FlagRegister))

	d.ClearDirty()
	outcome, err := m.Step()
	assert.NoError(t, err)
	assert.True(t, outcome.Redraw())
	assert.True(t, d.Dirty())
	assert.Equal(t, 1, m.regs.get(FlagRegister))
	assert.Equal(t, [DisplayHeight][DisplayWidth]bool{}, d.Pixels())
}

func TestDrawOutOfBoundsLeavesDisplay(t *testing.T) {
	m := newTestMachine(t, 0xAFFD, 0xD005)
	run(t, m, 1)

	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrMemoryOutOfBounds))
	assert.False(t, m.Display().Dirty())
	assert.Equal(t, 0x202, m.PC())
}

func TestClearScreen(t *testing.T) {
	m := newTestMachine(t, 0xF029, 0xD005, 0x00E0)
	run(t, m, 2)
	m.Display().ClearDirty()

	outcome, err := m.Step()
	assert.NoError(t, err)
	assert.True(t, outcome.Redraw())
	assert.True(t, m.Display().Dirty())
	assert.Equal(t, [DisplayHeight][DisplayWidth]bool{}, m.Display().Pixels())
}

type constSource uint64

func (s constSource) Uint64() uint64 {
	return uint64(s)
}

func TestRandomMask(t *testing.T) {
	m := New(WithRandomSource(constSource(^uint64(0))))
	assert.NoError(t, m.LoadProgram([]byte{0xC5, 0x3C}))
	run(t, m, 1)
	assert.Equal(t, 0x3C, m.regs.get(5))

	m = New(WithRandomSource(constSource(0)))
	assert.NoError(t, m.LoadProgram([]byte{0xC5, 0xFF}))
	run(t, m, 1)
	assert.Equal(t, 0, m.regs.get(5))
}

func TestRandomSeeded(t *testing.T) {
	program := []byte{0xC0, 0xFF, 0xC1, 0xFF, 0xC2, 0xFF}

	a := New(WithSeed(42))
	b := New(WithSeed(42))
	assert.NoError(t, a.LoadProgram(program))
	assert.NoError(t, b.LoadProgram(program))
	run(t, a, 3)
	run(t, b, 3)
	assert.Equal(t, a.Registers(), b.Registers())
}

func TestTimers(t *testing.T) {
	m := newTestMachine(t,
		0x6A03, // ld VA, 3
		0xFA15, // ld DT, VA
		0xFA18, // ld ST, VA
		0xFB07, // ld VB, DT
	)
	run(t, m, 2)
	outcome, err := m.Step()
	assert.NoError(t, err)
	assert.True(t, outcome.Sound())
	assert.Equal(t, 3, m.DelayTimer())
	assert.Equal(t, 3, m.SoundTimer())

	m.TickTimers()
	run(t, m, 1)
	assert.Equal(t, 2, m.regs.get(0xB))

	for range 5 {
		m.TickTimers()
	}
	assert.Equal(t, 0, m.DelayTimer())
	assert.Equal(t, 0, m.SoundTimer())
}

func TestSkipKeys(t *testing.T) {
	m := newTestMachine(t, 0xE29E, 0x0000, 0xE2A1)
	m.regs.set(2, 0x15) // only the low nibble selects the key
	assert.NoError(t, m.KeyDown(5))

	run(t, m, 1)
	assert.Equal(t, 0x204, m.PC())
	assert.True(t, m.Keypad().Pressed(5))

	run(t, m, 1)
	assert.Equal(t, 0x206, m.PC())

	assert.NoError(t, m.KeyUp(5))
	m.regs.PC = 0x204
	run(t, m, 1)
	assert.Equal(t, 0x208, m.PC())
}

func TestInvalidKey(t *testing.T) {
	m := New()
	assert.True(t, errors.Is(m.KeyDown(16), ErrInvalidKey))
	assert.True(t, errors.Is(m.KeyUp(0xFF), ErrInvalidKey))
}

func TestWaitForKey(t *testing.T) {
	m := newTestMachine(t,
		0x6A02, // ld VA, 2
		0xFA15, // ld DT, VA
		0xF30A, // ld V3, K
		0x6101, // ld V1, 1
	)
	run(t, m, 3)
	assert.Equal(t, 0x204, m.PC())
	waiting, target := m.Keypad().Waiting()
	assert.True(t, waiting)
	assert.Equal(t, 3, target)

	for range 3 {
		outcome, err := m.Step()
		assert.NoError(t, err)
		assert.True(t, outcome.Waiting)
		assert.Equal(t, opcode.LdVxK, outcome.Instruction.Kind)
		assert.Equal(t, 0x204, m.PC())
	}

	// timers keep running while waiting
	m.TickTimers()
	assert.Equal(t, 1, m.DelayTimer())

	// releasing a key does not resolve the wait
	assert.NoError(t, m.KeyUp(9))
	outcome, err := m.Step()
	assert.NoError(t, err)
	assert.True(t, outcome.Waiting)

	assert.NoError(t, m.KeyDown(0xC))
	assert.Equal(t, 0xC, m.regs.get(3))
	waiting, _ = m.Keypad().Waiting()
	assert.False(t, waiting)

	outcome, err = m.Step()
	assert.NoError(t, err)
	assert.True(t, outcome.Resumed)
	assert.False(t, outcome.Redraw())
	assert.Equal(t, 0x206, m.PC())
	assert.Equal(t, 0, m.regs.get(1))

	run(t, m, 1)
	assert.Equal(t, 1, m.regs.get(1))
	assert.Equal(t, 0x208, m.PC())
}

func TestKeyDownWithoutWait(t *testing.T) {
	m := newTestMachine(t, 0x6101)
	assert.NoError(t, m.KeyDown(4))

	outcome, err := m.Step()
	assert.NoError(t, err)
	assert.False(t, outcome.Resumed)
	assert.Equal(t, 0x202, m.PC())
}

func TestReset(t *testing.T) {
	m := newTestMachine(t, 0xF029, 0xD005, 0xF30A)
	run(t, m, 3)

	m.Reset()
	assert.Equal(t, ProgramStart, m.PC())
	assert.True(t, m.Display().Dirty())
	assert.Equal(t, [DisplayHeight][DisplayWidth]bool{}, m.Display().Pixels())
	waiting, _ := m.Keypad().Waiting()
	assert.False(t, waiting)

	word, err := m.Memory().ReadWord(ProgramStart + 4)
	assert.NoError(t, err)
	assert.Equal(t, 0xF30A, word)
}

func TestDrawZeroRows(t *testing.T) {
	m := newTestMachine(t, 0xD010) // drw V0, V1, 0
	m.regs.set(FlagRegister, 1)
	run(t, m, 1)

	assert.Equal(t, 0, m.regs.get(FlagRegister))
	assert.True(t, m.Display().Dirty())
	assert.Equal(t, ProgramStart+2, m.PC())
}
