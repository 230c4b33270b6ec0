// Package address contains the device address space layout and the split of an
// address into the pin groups that drive it.
package address

// Address is a word address of the ROM device. Only the lower 20 bits are used.
type Address uint32

const (
	// Bits is the width of the walked address space.
	Bits = 20
	// Size is the number of word addresses walked during a dump.
	Size = 1 << Bits
	// WordsPerRow is the number of consecutive addresses read under one chip enable.
	WordsPerRow = 16
	// BytesPerRow is the number of bytes captured for one row, high and low byte per word.
	BytesPerRow = WordsPerRow * 2
	// Rows is the number of rows covering the whole address space.
	Rows = Size / WordsPerRow

	// Mask limits an address to the walked address space.
	Mask Address = Size - 1
)

// Pin group layout of an address. The high field is a nibble, only bits 0-2 of it
// are wired to the A18-A16 lines.
const (
	LowMask  = 0x0000ff
	MidMask  = 0x00ff00
	HighMask = 0x0f0000

	MidShift  = 8
	HighShift = 16

	// HighPins masks the part of the high field that reaches the device pins.
	HighPins = 0x07
)

// Fields contains the values driven on the three address pin groups.
type Fields struct {
	Low  uint8 // A7-A0
	Mid  uint8 // A15-A8
	High uint8 // A19-A16, only A18-A16 are wired
}

// Split decomposes an address into its pin group fields.
func Split(a Address) Fields {
	return Fields{
		Low:  uint8(a & LowMask),
		Mid:  uint8((a & MidMask) >> MidShift),
		High: uint8((a & HighMask) >> HighShift),
	}
}

// Join recombines pin group fields into an address.
func Join(f Fields) Address {
	return Address(f.Low) | Address(f.Mid)<<MidShift | Address(f.High&0x0f)<<HighShift
}

// Row returns the row that contains the address.
func (a Address) Row() uint32 {
	return uint32(a&Mask) / WordsPerRow
}

// RowStart returns the first address of a row.
func RowStart(row uint32) Address {
	return Address(row*WordsPerRow) & Mask
}
