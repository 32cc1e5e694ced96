package terminal

import (
	"slices"
	"time"
)

// Keyboard turns the key presses read from a terminal into key down and key
// up transitions. Terminals report no key releases, a key counts as held
// until no repeat of it arrived for the hold duration.
type Keyboard struct {
	hold     time.Duration
	deadline map[uint8]time.Time
}

// NewKeyboard returns a keyboard that holds keys for the given duration.
func NewKeyboard(hold time.Duration) *Keyboard {
	return &Keyboard{
		hold:     hold,
		deadline: make(map[uint8]time.Time),
	}
}

// Press registers a press of the key. It returns whether the key was not
// already held.
func (k *Keyboard) Press(key uint8, now time.Time) bool {
	_, held := k.deadline[key]
	k.deadline[key] = now.Add(k.hold)
	return !held
}

// Expired returns the held keys whose hold time ran out by now, in ascending
// order, and releases them.
func (k *Keyboard) Expired(now time.Time) []uint8 {
	var released []uint8
	for key, deadline := range k.deadline {
		if !now.Before(deadline) {
			released = append(released, key)
			delete(k.deadline, key)
		}
	}
	slices.Sort(released)
	return released
}

// Held returns whether the key is currently held.
func (k *Keyboard) Held(key uint8) bool {
	_, ok := k.deadline[key]
	return ok
}
