package codec

// TableSize is the number of entries of the procedural lookup table.
const TableSize = 256

// Table is the lookup table the table indexed copy opcode translates bytes through.
type Table [TableSize]byte

var proceduralTable = GenerateTable()

// ProceduralTable returns the shared procedural lookup table.
func ProceduralTable() Table {
	return proceduralTable
}

// GenerateTable builds the lookup table the same way the game builds it at
// startup: for every value of the L register the accumulator receives the
// bits rotated out of L by eight RRC L / RLA pairs.
func GenerateTable() Table {
	var table Table
	var n int

	a := uint16(0x07)
	var l uint8

	for a != 0 {
		for range 8 {
			// rrc l
			carry := l & 1
			l = carry<<7 | l>>1

			// rla
			a = a<<1 | uint16(carry)
			a &= 0xFF
		}

		table[n] = byte(a)
		n++
		l++
		a = (a + 1) & 0xFF
	}

	return table
}
