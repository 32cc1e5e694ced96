package machine

import (
	"errors"
	"fmt"
)

var (
	// ErrStackOverflow is returned when a call is executed with a full stack.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned when a return is executed with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrMemoryOutOfBounds is returned for memory accesses outside of 0x000-0xFFF.
	ErrMemoryOutOfBounds = errors.New("memory access out of bounds")
	// ErrProtectedWrite is returned for writes into the font table.
	ErrProtectedWrite = errors.New("write to protected font memory")
	// ErrInvalidRegister is returned for register indexes above 15.
	ErrInvalidRegister = errors.New("invalid register index")
	// ErrInvalidKey is returned for key values above 15.
	ErrInvalidKey = errors.New("invalid key")
)

// ExecutionError describes a failed Step. The machine state is left as it
// was before the failing instruction.
type ExecutionError struct {
	Address uint16 // program counter of the failing instruction
	Word    uint16 // fetched instruction word, 0 if the fetch failed
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing $%04X at address $%03X: %v", e.Word, e.Address, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}
