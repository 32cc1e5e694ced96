package machine

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Display is the monochrome framebuffer of the machine.
type Display struct {
	pixels [DisplayHeight][DisplayWidth]bool
	dirty  bool
}

// Pixel returns whether the pixel at the given position is set. Coordinates
// wrap around the display edges.
func (d *Display) Pixel(x, y int) bool {
	return d.pixels[mod(y, DisplayHeight)][mod(x, DisplayWidth)]
}

// Pixels returns a copy of the framebuffer, indexed by row and column.
func (d *Display) Pixels() [DisplayHeight][DisplayWidth]bool {
	return d.pixels
}

// Dirty returns whether the display changed since the last ClearDirty call.
func (d *Display) Dirty() bool {
	return d.dirty
}

// ClearDirty resets the redraw flag, it is called by the renderer after it
// presented the framebuffer.
func (d *Display) ClearDirty() {
	d.dirty = false
}

func (d *Display) clear() {
	d.pixels = [DisplayHeight][DisplayWidth]bool{}
	d.dirty = true
}

// draw XORs a sprite onto the framebuffer at the given position, one byte
// per row with the most significant bit leftmost. Coordinates wrap. It
// returns whether any set pixel was turned off.
func (d *Display) draw(x, y byte, sprite []byte) bool {
	collision := false

	for row, bits := range sprite {
		py := (int(y) + row) % DisplayHeight
		for bit := range 8 {
			if bits&(0x80>>bit) == 0 {
				continue
			}
			px := (int(x) + bit) % DisplayWidth
			if d.pixels[py][px] {
				collision = true
			}
			d.pixels[py][px] = !d.pixels[py][px]
		}
	}

	d.dirty = true
	return collision
}

func mod(value, n int) int {
	value %= n
	if value < 0 {
		value += n
	}
	return value
}
