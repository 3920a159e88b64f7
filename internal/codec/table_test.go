package codec

import (
	"math/bits"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestGenerateTable(t *testing.T) {
	table := GenerateTable()
	assert.Equal(t, TableSize, len(table))
	assert.Equal(t, table, GenerateTable())
	assert.Equal(t, table, ProceduralTable())

	assert.Equal(t, byte(0x00), table[0x00])
	assert.Equal(t, byte(0x80), table[0x01])
	assert.Equal(t, byte(0x40), table[0x02])
	assert.Equal(t, byte(0xFF), table[0xFF])
}

func TestGenerateTableMirrorsBits(t *testing.T) {
	table := GenerateTable()
	for i := range TableSize {
		assert.Equal(t, bits.Reverse8(uint8(i)), table[i], "entry %d", i)
	}
}
