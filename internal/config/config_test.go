package config

import (
	"testing"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func TestInteractive(t *testing.T) {
	tests := []struct {
		name     string
		flags    options.Flags
		input    string
		expected bool
	}{
		{"usage", options.Flags{}, "", false},
		{"terminal display", options.Flags{}, "game.ch8", true},
		{"terminal display with debug", options.Flags{Debug: true}, "game.ch8", true},
		{"headless", options.Flags{Headless: true}, "game.ch8", false},
		{"listing", options.Flags{Disasm: true}, "game.ch8", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options.Program{
				Parameters: options.Parameters{Input: tt.input},
				Flags:      tt.flags,
			}
			assert.Equal(t, tt.expected, Interactive(opts))
			assert.NotNil(t, CreateLogger(opts))
		})
	}
}
