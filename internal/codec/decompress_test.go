package codec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/retroenv/kdlmap/internal/rom"
	"github.com/retroenv/retrogolib/assert"
)

//nolint:funlen // test functions can be long
func TestDecompress(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
		end      int
	}{
		{
			name:     "terminator only",
			input:    []byte{0xFF},
			expected: nil,
			end:      1,
		},
		{
			name:     "literal copy",
			input:    []byte{0x03, 0x11, 0x22, 0x33, 0x44, 0xFF},
			expected: []byte{0x11, 0x22, 0x33, 0x44},
			end:      6,
		},
		{
			name:     "repeated byte",
			input:    []byte{0x22, 0xAB, 0xFF},
			expected: []byte{0xAB, 0xAB, 0xAB},
			end:      3,
		},
		{
			name:     "repeated pair",
			input:    []byte{0x41, 0x10, 0x20, 0xFF},
			expected: []byte{0x10, 0x20, 0x10, 0x20},
			end:      4,
		},
		{
			name:     "incrementing run",
			input:    []byte{0x62, 0x05, 0xFF},
			expected: []byte{0x05, 0x06, 0x07},
			end:      3,
		},
		{
			name:     "incrementing run wraps",
			input:    []byte{0x61, 0xFF, 0xFF},
			expected: []byte{0xFF, 0x00},
			end:      3,
		},
		{
			name:     "overlapping forward copy",
			input:    []byte{0x00, 0x01, 0x83, 0x00, 0x00, 0xFF},
			expected: []byte{0x01, 0x01, 0x01, 0x01, 0x01},
			end:      6,
		},
		{
			name:     "forward copy of a pattern",
			input:    []byte{0x01, 0x0A, 0x0B, 0x83, 0x00, 0x00, 0xFF},
			expected: []byte{0x0A, 0x0B, 0x0A, 0x0B, 0x0A, 0x0B},
			end:      7,
		},
		{
			name:     "backward copy",
			input:    []byte{0x03, 0x01, 0x02, 0x03, 0x04, 0xC1, 0x00, 0x03, 0xFF},
			expected: []byte{0x01, 0x02, 0x03, 0x04, 0x04, 0x03},
			end:      9,
		},
		{
			name:     "table copy",
			input:    []byte{0x01, 0x01, 0x02, 0xA1, 0x00, 0x00, 0xFF},
			expected: []byte{0x01, 0x02, 0x80, 0x40},
			end:      7,
		},
		{
			name:     "table copy advances past its address",
			input:    []byte{0x00, 0x01, 0xA0, 0x00, 0x00, 0x00, 0x55, 0xFF},
			expected: []byte{0x01, 0x80, 0x55},
			end:      8,
		},
		{
			name:     "extended literal",
			input:    []byte{0xE0, 0x01, 0xAA, 0xBB, 0xFF},
			expected: []byte{0xAA, 0xBB},
			end:      5,
		},
		{
			name:     "extended repeated byte",
			input:    []byte{0xE4, 0x09, 0x7F, 0xFF},
			expected: bytes.Repeat([]byte{0x7F}, 10),
			end:      4,
		},
		{
			name:     "extended count uses all 8 bits",
			input:    []byte{0xE4, 0xFF, 0x33, 0xFF},
			expected: bytes.Repeat([]byte{0x33}, 256),
			end:      4,
		},
		{
			name:     "extended tag 0xE0 falls back to literal",
			input:    []byte{0xFC, 0x00, 0x42, 0xFF},
			expected: []byte{0x42},
			end:      4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decompress(tt.input, 0)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result.Data)
			assert.Equal(t, tt.end, result.End)
		})
	}
}

func TestDecompressAtOffset(t *testing.T) {
	input := []byte{0x99, 0x99, 0x22, 0xAB, 0xFF, 0x99}
	result, err := Decompress(input, 2)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xAB, 0xAB, 0xAB}, result.Data)
	assert.Equal(t, 5, result.End)
}

func TestDecompressIsRepeatable(t *testing.T) {
	input := []byte{
		0x01, 0x01, 0x02, // literal
		0xA1, 0x00, 0x00, // table copy
		0x83, 0x00, 0x01, // forward copy
		0xC2, 0x00, 0x05, // backward copy
		0x41, 0x10, 0x20, // pair
		0xFF,
	}

	first, err := Decompress(input, 0)
	assert.NoError(t, err)
	second, err := Decompress(input, 0)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecompressErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		start int
		want  error
	}{
		{"empty source", nil, 0, ErrTruncatedStream},
		{"missing terminator", []byte{0x00, 0x11}, 0, ErrTruncatedStream},
		{"literal runs past source", []byte{0x03, 0x11, 0x22}, 0, ErrTruncatedStream},
		{"missing extended count", []byte{0xE0}, 0, ErrTruncatedStream},
		{"missing copy address", []byte{0x80, 0x00}, 0, ErrTruncatedStream},
		{"forward copy before output", []byte{0x80, 0x00, 0x00, 0xFF}, 0, rom.ErrOutOfRange},
		{"forward copy past output", []byte{0x00, 0x01, 0x80, 0x00, 0x05, 0xFF}, 0, rom.ErrOutOfRange},
		{"backward copy below zero", []byte{0x00, 0x01, 0xC2, 0x00, 0x00, 0xFF}, 0, rom.ErrOutOfRange},
		{"table copy past output", []byte{0xA0, 0x01, 0x00, 0xFF}, 0, rom.ErrOutOfRange},
		{"start past source", []byte{0xFF}, 2, rom.ErrOutOfRange},
		{"negative start", []byte{0xFF}, -1, rom.ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decompress(tt.input, tt.start)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "unexpected error: %v", err)
		})
	}
}

func TestTrace(t *testing.T) {
	input := []byte{
		0x00, 0x01,
		0x22, 0xAB,
		0x41, 0x10, 0x20,
		0x62, 0x05,
		0x80, 0x00, 0x00,
		0xA0, 0x00, 0x00,
		0xC0, 0x00, 0x00,
		0xFF,
	}

	var kinds []Kind
	var positions []int
	result, err := Trace(input, 0, func(cmd Command) {
		kinds = append(kinds, cmd.Kind)
		positions = append(positions, cmd.Position)
	})
	assert.NoError(t, err)
	assert.Equal(t, []Kind{
		KindLiteral, KindRepeatByte, KindRepeatPair, KindIncrement,
		KindCopyForward, KindCopyTable, KindCopyBackward,
	}, kinds)
	assert.Equal(t, []int{0, 2, 4, 7, 9, 12, 15}, positions)
	assert.Equal(t, len(input), result.End)
	assert.Equal(t, 14, len(result.Data))
}

func TestCommandString(t *testing.T) {
	cmd := Command{Kind: KindCopyForward, Count: 4, Operand: []byte{0x01, 0x20}}
	assert.Equal(t, "copy-forward n=4 start=0x0120", cmd.String())
	assert.Equal(t, 0x120, cmd.Start())
	assert.Equal(t, 4, cmd.OutputSize())

	cmd = Command{Kind: KindRepeatPair, Count: 3, Operand: []byte{0x01, 0x02}}
	assert.Equal(t, "repeat-pair n=3 01 02", cmd.String())
	assert.Equal(t, 6, cmd.OutputSize())

	assert.Equal(t, "kind(9)", Kind(9).String())
}
