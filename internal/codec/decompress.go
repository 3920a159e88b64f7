// Package codec implements the decompression format used by HAL Laboratory
// Game Boy titles for tiles, tile translation tables and level block streams.
//
// A stream is a sequence of commands terminated by a 0xFF byte. The top 3 bits
// of an opcode select the command kind, the low 5 bits hold the repeat count
// minus one. A tag of 0xE0 extends the opcode: the kind is taken from the next
// 3 bits and the full count minus one from the following byte.
package codec

import (
	"errors"
	"fmt"

	"github.com/retroenv/kdlmap/internal/rom"
)

// ErrTruncatedStream is returned when the source ends before the stream terminator.
var ErrTruncatedStream = errors.New("compressed stream truncated")

// Result is the output of a decompression.
type Result struct {
	Data []byte
	End  int // source position after the terminator
}

type decoder struct {
	src   []byte
	pos   int
	out   []byte
	table *Table
}

// Decompress decodes the stream starting at the position start of src.
func Decompress(src []byte, start int) (Result, error) {
	return Trace(src, start, nil)
}

// Trace decodes the stream starting at the position start of src and calls fn
// for every command before it is executed. fn can be nil.
func Trace(src []byte, start int, fn func(cmd Command)) (Result, error) {
	if start < 0 || start > len(src) {
		return Result{}, fmt.Errorf("stream start %#x of %#x: %w", start, len(src), rom.ErrOutOfRange)
	}

	d := &decoder{
		src:   src,
		pos:   start,
		table: &proceduralTable,
	}

	for {
		cmd, done, err := d.next()
		if err != nil {
			return Result{}, err
		}
		if done {
			return Result{Data: d.out, End: d.pos}, nil
		}

		if fn != nil {
			fn(cmd)
		}
		if err := d.execute(cmd); err != nil {
			return Result{}, err
		}
	}
}

func (d *decoder) read(what string) (byte, error) {
	if d.pos >= len(d.src) {
		return 0, fmt.Errorf("reading %s at %#x: %w", what, d.pos, ErrTruncatedStream)
	}
	b := d.src[d.pos]
	d.pos++
	return b, nil
}

// next decodes the command at the cursor and consumes all of its source bytes.
func (d *decoder) next() (Command, bool, error) {
	position := d.pos
	opcode, err := d.read("opcode")
	if err != nil {
		return Command{}, false, err
	}
	if opcode == terminator {
		return Command{}, true, nil
	}

	cmd := Command{
		Opcode:   opcode,
		Position: position,
	}

	tag := opcode & tagMask
	count := int(opcode & countMask)
	if tag == extendedMark {
		tag = (opcode << 3) & tagMask
		b, err := d.read("extended count")
		if err != nil {
			return Command{}, false, err
		}
		count = int(b)
		cmd.Extended = true
	}
	cmd.Kind = kindForTag(tag)
	cmd.Count = count + 1

	size := cmd.operandSize()
	if d.pos+size > len(d.src) {
		return Command{}, false, fmt.Errorf("reading %d operand bytes of %s at %#x: %w",
			size, cmd.Kind, position, ErrTruncatedStream)
	}
	cmd.Operand = d.src[d.pos : d.pos+size]
	d.pos += size

	return cmd, false, nil
}

func (d *decoder) execute(cmd Command) error {
	switch cmd.Kind {
	case KindRepeatByte:
		for range cmd.Count {
			d.out = append(d.out, cmd.Operand[0])
		}

	case KindRepeatPair:
		for range cmd.Count {
			d.out = append(d.out, cmd.Operand[0], cmd.Operand[1])
		}

	case KindIncrement:
		b := cmd.Operand[0]
		for range cmd.Count {
			d.out = append(d.out, b)
			b++
		}

	case KindCopyForward, KindCopyTable, KindCopyBackward:
		return d.copyBack(cmd)

	default:
		d.out = append(d.out, cmd.Operand...)
	}
	return nil
}

// copyBack appends bytes read from the output produced so far. Reads may hit
// bytes appended earlier by the same command.
func (d *decoder) copyBack(cmd Command) error {
	index := cmd.Start()
	step := 1
	if cmd.Kind == KindCopyBackward {
		step = -1
	}

	for range cmd.Count {
		if index < 0 || index >= len(d.out) {
			return fmt.Errorf("%s at %#x reading output index %#x of %#x: %w",
				cmd.Kind, cmd.Position, index, len(d.out), rom.ErrOutOfRange)
		}

		b := d.out[index]
		if cmd.Kind == KindCopyTable {
			b = d.table[b]
		}
		d.out = append(d.out, b)
		index += step
	}
	return nil
}
