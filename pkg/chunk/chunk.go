package chunk

import (
	"errors"
	"fmt"
	"sort"

	"clox/pkg/array"
	"clox/pkg/value"
)

var (
	ErrInvalidOpcode    = errors.New("invalid opcode")
	ErrOperandCount     = errors.New("wrong operand count")
	ErrTruncated        = errors.New("truncated instruction")
	ErrTooManyConstants = errors.New("too many constants in one chunk")
)

// Chunk holds bytecode, its constant pool and a line for every instruction.
type Chunk struct {
	code      array.Array[byte]
	constants array.Array[value.Value]
	lines     LineTable
	starts    array.Array[int] // byte offset of every instruction, ascending
}

// New creates an empty chunk
func New() *Chunk {
	return &Chunk{}
}

// Write appends one instruction and records its line once.
func (c *Chunk) Write(op OpCode, line int, operands ...byte) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidOpcode, byte(op))
	}
	if len(operands) != op.OperandWidth() {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrOperandCount, op, op.OperandWidth(), len(operands))
	}

	c.starts.Append(c.code.Len())
	c.code.Append(byte(op))
	for _, b := range operands {
		c.code.Append(b)
	}
	c.lines.Record(line)
	return nil
}

// AddConstant appends v to the pool and returns its index. Identical values are not
// deduplicated.
func (c *Chunk) AddConstant(v value.Value) int {
	c.constants.Append(v)
	return c.constants.Len() - 1
}

// EmitConstant adds v to the pool and emits the load instruction, switching to the
// long encoding once the index no longer fits a byte.
func (c *Chunk) EmitConstant(v value.Value, line int) (int, error) {
	if c.constants.Len() > MaxLongConstant {
		return -1, ErrTooManyConstants
	}

	index := c.AddConstant(v)
	if index <= MaxShortConstant {
		return index, c.Write(OpConstant, line, byte(index))
	}
	return index, c.Write(OpConstantLong, line, byte(index), byte(index>>8), byte(index>>16))
}

// Code returns the bytecode. Callers must not modify the result.
func (c *Chunk) Code() []byte {
	return c.code.Slice()
}

// Constants returns the constant pool. Callers must not modify the result.
func (c *Chunk) Constants() []value.Value {
	return c.constants.Slice()
}

// Constant returns the constant at index.
func (c *Chunk) Constant(index int) (value.Value, bool) {
	if index < 0 || index >= c.constants.Len() {
		return value.Value{}, false
	}
	return c.constants.At(index), true
}

// Len returns the bytecode length in bytes.
func (c *Chunk) Len() int {
	return c.code.Len()
}

// Count returns the number of instructions.
func (c *Chunk) Count() int {
	return c.starts.Len()
}

// Lines returns the chunk's line table.
func (c *Chunk) Lines() *LineTable {
	return &c.lines
}

// LineFor returns the source line of the instruction at index, or -1.
func (c *Chunk) LineFor(index int) int {
	return c.lines.Lookup(index)
}

// InstructionIndex maps the byte offset of an instruction start to its index, or -1
// when offset does not start an instruction.
func (c *Chunk) InstructionIndex(offset int) int {
	starts := c.starts.Slice()
	i := sort.SearchInts(starts, offset)
	if i < len(starts) && starts[i] == offset {
		return i
	}
	return -1
}

// LineForOffset returns the source line of the instruction starting at offset, or -1.
func (c *Chunk) LineForOffset(offset int) int {
	return c.LineFor(c.InstructionIndex(offset))
}

// Instruction is one decoded instruction.
type Instruction struct {
	Op      OpCode
	Operand int // constant index for the constant loads, zero otherwise
	Offset  int
	Size    int
}

// Decode reads the instruction starting at offset.
func (c *Chunk) Decode(offset int) (Instruction, error) {
	code := c.code.Slice()
	if offset < 0 || offset >= len(code) {
		return Instruction{}, fmt.Errorf("%w: offset %d", ErrTruncated, offset)
	}

	op := OpCode(code[offset])
	if !op.Valid() {
		return Instruction{}, fmt.Errorf("%w: %d at offset %d", ErrInvalidOpcode, byte(op), offset)
	}

	width := op.OperandWidth()
	if offset+1+width > len(code) {
		return Instruction{}, fmt.Errorf("%w: %s at offset %d", ErrTruncated, op, offset)
	}

	in := Instruction{Op: op, Offset: offset, Size: 1 + width}
	for i := width; i > 0; i-- {
		in.Operand = in.Operand<<8 | int(code[offset+i])
	}
	return in, nil
}

// Free releases the chunk's buffers.
func (c *Chunk) Free() {
	c.code.Free()
	c.constants.Free()
	c.lines.Free()
	c.starts.Free()
}
