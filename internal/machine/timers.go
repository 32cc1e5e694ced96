package machine

// Timers contains the delay and sound counters. Both count down once per
// tick until they reach zero.
type Timers struct {
	delay byte
	sound byte
}

// Delay returns the delay timer value.
func (t *Timers) Delay() byte {
	return t.delay
}

// Sound returns the sound timer value. A tone plays while it is nonzero.
func (t *Timers) Sound() byte {
	return t.sound
}

func (t *Timers) tick() {
	if t.delay > 0 {
		t.delay--
	}
	if t.sound > 0 {
		t.sound--
	}
}
