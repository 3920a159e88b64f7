// Package bank translates Game Boy banked ROM addresses into linear image positions.
package bank

import "fmt"

const (
	// Size is the size of a switchable ROM bank.
	Size = 0x4000

	offsetMask = Size - 1
)

// Address is a bank relative ROM address as the game stores it in its pointer tables.
// Only the low 14 bits of the offset select a byte within the bank, the upper bits
// carry the CPU window ($0000 or $4000) the game would map the bank into.
type Address struct {
	Bank   uint8
	Offset uint16
}

// Linear returns the position inside the flat ROM image of the given offset in bank.
func Linear(offset uint16, bank uint8) int {
	return int(bank)*Size + int(offset&offsetMask)
}

// Linear returns the position inside the flat ROM image.
func (a Address) Linear() int {
	return Linear(a.Offset, a.Bank)
}

// String returns the address in the BB:OOOO notation used by debuggers.
func (a Address) String() string {
	return fmt.Sprintf("%02X:%04X", a.Bank, a.Offset)
}

// FromLinear returns the address of a linear image position, using the
// switchable $4000 window for every bank except bank 0.
func FromLinear(pos int) Address {
	b := pos / Size
	offset := uint16(pos % Size)
	if b > 0 {
		offset |= Size
	}
	return Address{
		Bank:   uint8(b),
		Offset: offset,
	}
}
