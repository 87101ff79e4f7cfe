package chunk

import (
	"fmt"
	"io"
)

// Disassemble writes a listing of every instruction in c.
func Disassemble(w io.Writer, c *Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < c.Len(); {
		offset = DisassembleInstruction(w, c, offset)
	}
}

// DisassembleInstruction writes the instruction at offset and returns the offset of
// the next one.
func DisassembleInstruction(w io.Writer, c *Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)

	index := c.InstructionIndex(offset)
	line := c.LineFor(index)
	if index > 0 && line == c.LineFor(index-1) {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", line)
	}

	in, err := c.Decode(offset)
	if err != nil {
		fmt.Fprintf(w, "Unknown opcode %d\n", c.Code()[offset])
		return offset + 1
	}

	switch in.Op {
	case OpConstant, OpConstantLong:
		constant, _ := c.Constant(in.Operand)
		fmt.Fprintf(w, "%-16s %4d '%s'\n", in.Op, in.Operand, constant)
	default:
		fmt.Fprintf(w, "%s\n", in.Op)
	}
	return offset + in.Size
}
