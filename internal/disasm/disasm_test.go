package disasm

import (
	"bytes"
	"testing"

	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestProcess(t *testing.T) {
	program := []byte{
		0x00, 0xE0, // $200 cls
		0x22, 0x08, // $202 call $208
		0x12, 0x04, // $204 jp $204
		0xFF, 0xFF, // $206 data
		0xA2, 0x0C, // $208 ld I, $20C
		0x00, 0xEE, // $20A ret
		0xF0, // $20C trailing byte
	}

	dis := New(log.NewTestLogger(t), Options{})
	lines, err := dis.Process(program)
	assert.NoError(t, err)
	assert.Len(t, lines, 7)

	tests := []struct {
		address uint16
		label   string
		code    string
		data    bool
	}{
		{0x200, "Start", "cls", false},
		{0x202, "", "call $208", false},
		{0x204, "_label_0204", "jp $204", false},
		{0x206, "", "", true},
		{0x208, "_func_0208", "", false},
		{0x20A, "", "", false},
		{0x20C, "_data_020c", "", true},
	}

	for i, tt := range tests {
		line := lines[i]
		assert.Equal(t, tt.address, line.Address)
		assert.Equal(t, tt.label, line.Label)
		assert.Equal(t, tt.data, line.IsData())
		if tt.code != "" {
			assert.Equal(t, tt.code, line.Code)
		}
	}

	assert.Equal(t, opcode.LdI, lines[4].Instruction.Kind)
	assert.Equal(t, opcode.Ret, lines[5].Instruction.Kind)
	assert.Len(t, lines[6].Data, 1)
}

func TestProcessTooLarge(t *testing.T) {
	dis := New(log.NewTestLogger(t), Options{})
	_, err := dis.Process(make([]byte, 0x1000))
	assert.ErrorContains(t, err, "program too large")
}

func TestWrite(t *testing.T) {
	program := []byte{
		0x12, 0x02, // $200 jp $202
		0x12, 0x02, // $202 jp $202
		0xFF, 0xFF, // $204 data
		0x00, 0x00, // trailing zeros
		0x00, 0x00,
	}

	dis := New(log.NewTestLogger(t), Options{HexComments: true, OffsetComments: true})
	lines, err := dis.Process(program)
	assert.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, dis.Write(&buf, lines))

	out := buf.String()
	assert.Contains(t, out, ".org $200")
	assert.Contains(t, out, "Start:\n")
	assert.Contains(t, out, "_label_0202:\n")
	assert.Contains(t, out, "jp $202")
	assert.Contains(t, out, "; $200 12 02")
	assert.Contains(t, out, ".byte $FF, $FF")
	assert.False(t, bytes.Contains(buf.Bytes(), []byte("$208")))
}

func TestWriteZeroBytes(t *testing.T) {
	program := []byte{0x00, 0xE0, 0x00, 0x00}

	dis := New(log.NewTestLogger(t), Options{ZeroBytes: true})
	lines, err := dis.Process(program)
	assert.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, dis.Write(&buf, lines))
	assert.Contains(t, buf.String(), "$000")
}
