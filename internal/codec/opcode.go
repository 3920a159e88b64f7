package codec

import "fmt"

const (
	terminator   = 0xFF
	tagMask      = 0xE0
	countMask    = 0x1F
	extendedMark = 0xE0
)

// Kind is the decoded behavior of a command.
type Kind uint8

// Command kinds, selected by the top 3 bits of the opcode byte. Any tag
// without an explicit behavior, including 0x00 and an extended 0xE0,
// is a literal copy.
const (
	KindLiteral      Kind = iota // copy the next n source bytes
	KindRepeatByte               // 0x20: repeat one source byte n times
	KindRepeatPair               // 0x40: repeat two source bytes n times
	KindIncrement                // 0x60: n bytes counting up from a seed
	KindCopyForward              // 0x80: copy n output bytes walking forward
	KindCopyTable                // 0xA0: copy n output bytes through the procedural table
	KindCopyBackward             // 0xC0: copy n output bytes walking backward
)

var kindNames = map[Kind]string{
	KindLiteral:      "literal",
	KindRepeatByte:   "repeat-byte",
	KindRepeatPair:   "repeat-pair",
	KindIncrement:    "increment",
	KindCopyForward:  "copy-forward",
	KindCopyTable:    "copy-table",
	KindCopyBackward: "copy-backward",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// kindForTag maps the 3 tag bits of an opcode to a command kind.
func kindForTag(tag byte) Kind {
	switch tag {
	case 0x20:
		return KindRepeatByte
	case 0x40:
		return KindRepeatPair
	case 0x60:
		return KindIncrement
	case 0x80:
		return KindCopyForward
	case 0xA0:
		return KindCopyTable
	case 0xC0:
		return KindCopyBackward
	default:
		return KindLiteral
	}
}

// Command is a single decoded instruction of a compressed stream.
type Command struct {
	Kind     Kind
	Opcode   byte
	Count    int    // repeat count, 1..32 or 1..256 for extended opcodes
	Extended bool   // the count was read from an extra byte
	Operand  []byte // source bytes consumed after the opcode and count bytes
	Position int    // source position of the opcode byte
}

// operandSize returns the number of source bytes a command consumes after its header.
func (c Command) operandSize() int {
	switch c.Kind {
	case KindRepeatByte, KindIncrement:
		return 1
	case KindRepeatPair, KindCopyForward, KindCopyTable, KindCopyBackward:
		return 2
	default:
		return c.Count
	}
}

// Start returns the output index a back reference command starts copying from.
// The high byte is stored first.
func (c Command) Start() int {
	if len(c.Operand) < 2 {
		return 0
	}
	return int(c.Operand[0])<<8 | int(c.Operand[1])
}

// OutputSize returns the number of bytes the command appends to the output.
func (c Command) OutputSize() int {
	if c.Kind == KindRepeatPair {
		return 2 * c.Count
	}
	return c.Count
}

func (c Command) String() string {
	switch c.Kind {
	case KindCopyForward, KindCopyTable, KindCopyBackward:
		return fmt.Sprintf("%s n=%d start=%#06x", c.Kind, c.Count, c.Start())
	case KindLiteral:
		return fmt.Sprintf("%s n=%d", c.Kind, c.Count)
	default:
		return fmt.Sprintf("%s n=%d % X", c.Kind, c.Count, c.Operand)
	}
}
