// Package loader handles program image loading operations.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/log"
)

// ErrEmptyProgram is returned for program files without content.
var ErrEmptyProgram = errors.New("empty program file")

// Loader handles loading program images from disk.
type Loader struct {
	logger *log.Logger
}

// New creates a new program loader.
func New(logger *log.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load reads a raw program image. CHIP-8 program files have no header, the
// file content is copied to memory at the program start address as is.
func (l *Loader) Load(path string) ([]byte, error) {
	if system := DetectSystem(path); system != arch.CHIP8System {
		l.logger.Warn("File extension does not indicate a CHIP-8 program",
			log.String("file", path),
			log.String("extension", filepath.Ext(path)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyProgram, path)
	}
	if len(data) > machine.MaxProgramSize {
		return nil, fmt.Errorf("program %s too large: %d bytes (max: %d)", path, len(data), machine.MaxProgramSize)
	}
	return data, nil
}

// LoadInto reads a program image and loads it into the machine.
func (l *Loader) LoadInto(path string, m *machine.Machine) ([]byte, error) {
	data, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	if err := m.LoadProgram(data); err != nil {
		return nil, fmt.Errorf("loading program %s: %w", path, err)
	}
	return data, nil
}

// DetectSystem determines the system type based on the file extension. It
// returns an empty system for extensions of other or unknown systems.
func DetectSystem(path string) arch.System {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ch8", ".c8", ".rom":
		return arch.CHIP8System
	case ".nes":
		return arch.NES
	default:
		return ""
	}
}
