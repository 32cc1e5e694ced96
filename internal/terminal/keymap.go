// Package terminal implements the text terminal front end of the interpreter:
// display rendering with block characters and keypad input in cbreak mode.
package terminal

// keyMap maps the left side of a QWERTY keyboard to the hexadecimal keypad
// layout of the COSMAC VIP:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var keyMap = map[byte]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeyFor returns the keypad key for a character read from the terminal.
// Upper case letters map to the same keys as lower case ones.
func KeyFor(c byte) (uint8, bool) {
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	key, ok := keyMap[c]
	return key, ok
}
