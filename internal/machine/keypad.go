package machine

import "fmt"

// KeyCount is the number of keys on the hexadecimal keypad.
const KeyCount = 16

// Keypad contains the key states and the wait for key sub state.
type Keypad struct {
	keys [KeyCount]bool

	waiting  bool  // a wait for key instruction is pending
	target   uint8 // register receiving the key of a pending wait
	resolved bool  // the wait was resolved, the next step completes it
}

// Pressed returns whether the key is held down.
func (k *Keypad) Pressed(key uint8) bool {
	return k.keys[key&0x0F]
}

// Waiting returns whether the machine waits for a key press and the
// register that will receive the key.
func (k *Keypad) Waiting() (bool, uint8) {
	return k.waiting, k.target
}

func (k *Keypad) set(key uint8, down bool) error {
	if key >= KeyCount {
		return fmt.Errorf("%w: %d", ErrInvalidKey, key)
	}
	k.keys[key] = down
	return nil
}

func (k *Keypad) wait(target uint8) {
	k.waiting = true
	k.target = target & 0x0F
	k.resolved = false
}

// resolve ends a pending wait and returns the target register.
func (k *Keypad) resolve() uint8 {
	k.waiting = false
	k.resolved = true
	return k.target
}
