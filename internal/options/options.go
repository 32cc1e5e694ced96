// Package options contains the program options.
package options

import "time"

// Defaults of the emulation speed options.
const (
	DefaultCyclesPerFrame = 10
	DefaultTimerRate      = 60
	DefaultKeyHold        = 150 * time.Millisecond
)

// Parameters contains file path options.
type Parameters struct {
	Input string // program image to run
	Wav   string // file to record the sound output to
}

// Flags contains behavior options.
type Flags struct {
	Debug    bool
	Quiet    bool
	Disasm   bool // print a listing of the program and exit
	Headless bool // run without terminal input and output

	CyclesPerFrame int           // instructions executed per timer tick
	TimerRate      int           // timer ticks and frames per second
	Frames         int           // number of frames to run, 0 runs until interrupted
	Seed           uint64        // random source seed, 0 seeds from the system
	KeyHold        time.Duration // time a terminal key counts as held down
}

// OutputFlags contains listing formatting options.
type OutputFlags struct {
	NoHexComments bool
	NoOffsets     bool
	ZeroBytes     bool
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Flags
	OutputFlags
}

// NewProgram returns program options with default values.
func NewProgram() Program {
	return Program{
		Flags: Flags{
			CyclesPerFrame: DefaultCyclesPerFrame,
			TimerRate:      DefaultTimerRate,
			KeyHold:        DefaultKeyHold,
		},
	}
}

// FrameDuration returns the time between two timer ticks.
func (p Program) FrameDuration() time.Duration {
	if p.TimerRate <= 0 {
		return time.Second / DefaultTimerRate
	}
	return time.Second / time.Duration(p.TimerRate)
}
